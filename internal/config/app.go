package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig is the typed view of the process environment.
type AppConfig struct {
	Port              string
	Env               string
	SessionTTL        time.Duration
	CookieSecret      []byte
	InstitutionDomain string
	PublicURL         string

	Location       *time.Location
	WorkDayStart   int
	WorkDayEnd     int
	WorkingDays    []time.Weekday
	ServiceMinutes int

	NotifyInterval time.Duration
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

func NewAppConfig() (*AppConfig, error) {
	return LoadAppConfig(os.Getenv)
}

// LoadAppConfig reads the configuration through getenv so tests can supply a map.
func LoadAppConfig(getenv func(string) string) (*AppConfig, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &AppConfig{
		Port:              env("PORT", "8080"),
		Env:               env("APP_ENV", "production"),
		InstitutionDomain: env("INSTITUTION_DOMAIN", "udst.edu.qa"),
		PublicURL:         strings.TrimRight(env("PUBLIC_URL", "http://localhost:8080"), "/"),
	}

	secret := getenv("COOKIE_SECRET")
	if secret == "" {
		return nil, errors.New("COOKIE_SECRET not set")
	}
	cfg.CookieSecret = []byte(secret)

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(env("SESSION_TTL", "20m")); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if cfg.NotifyInterval, err = time.ParseDuration(env("NOTIFY_INTERVAL", "1m")); err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_INTERVAL: %w", err)
	}
	if cfg.Location, err = time.LoadLocation(env("TIMEZONE", "Asia/Qatar")); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if cfg.WorkDayStart, err = strconv.Atoi(env("WORK_DAY_START", "8")); err != nil {
		return nil, fmt.Errorf("invalid WORK_DAY_START: %w", err)
	}
	if cfg.WorkDayEnd, err = strconv.Atoi(env("WORK_DAY_END", "15")); err != nil {
		return nil, fmt.Errorf("invalid WORK_DAY_END: %w", err)
	}
	if cfg.WorkDayStart < 0 || cfg.WorkDayEnd > 24 || cfg.WorkDayStart >= cfg.WorkDayEnd {
		return nil, fmt.Errorf("working hours %d-%d are not a valid interval", cfg.WorkDayStart, cfg.WorkDayEnd)
	}
	if cfg.ServiceMinutes, err = strconv.Atoi(env("SERVICE_MINUTES", "20")); err != nil || cfg.ServiceMinutes <= 0 {
		return nil, fmt.Errorf("invalid SERVICE_MINUTES %q", getenv("SERVICE_MINUTES"))
	}
	if cfg.WorkingDays, err = parseWeekdays(env("WORKING_DAYS", "Mon,Tue,Wed,Thu,Fri")); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseWeekdays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	seen := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if len(name) > 3 {
			name = name[:3]
		}
		day, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("invalid WORKING_DAYS entry %q", part)
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return nil, errors.New("WORKING_DAYS must name at least one day")
	}
	return days, nil
}

func (c *AppConfig) Development() bool {
	return c.Env == "development"
}
