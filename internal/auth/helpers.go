package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const challengePrefix = "reset: "

// HashSecret is a deterministic one-way digest, hex encoded.
func HashSecret(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// challengeHash is the only form in which a verification or reset key is stored.
func challengeHash(rawKey string) string {
	return HashSecret(challengePrefix + rawKey)
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashed), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// dummyHash is compared against when the user does not exist so that both
// failure paths cost one bcrypt comparison.
var dummyHash, _ = HashPassword("not-a-real-password-1!")

func newSessionKey() string {
	return uuid.NewString()
}

func newChallengeKey() string {
	return uuid.NewString()
}

func newCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func tokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
