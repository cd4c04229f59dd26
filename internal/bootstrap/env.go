package bootstrap

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Loadenv reads ENV_FILE (a comma-separated list, default ".env") into the
// process environment. Variables already set win over file values.
func Loadenv() {
	files := []string{".env"}
	if v := os.Getenv("ENV_FILE"); v != "" {
		files = strings.Split(v, ",")
	}
	for _, f := range files {
		f = strings.TrimSpace(f)
		if err := godotenv.Load(f); err != nil {
			log.Printf("env file %s not loaded, using system environment variables", f)
		}
	}
}
