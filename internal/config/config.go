package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AllowedAnimationSeconds mirrors the caller-facing duration selector:
// 0 means "no induced delay".
var AllowedAnimationSeconds = []int{0, 15, 30, 60, 90}

type Config struct {
	TripFile string
	TripName string

	StopDistanceM float64
	StopDuration  time.Duration
	IncludeStops  bool
	AnimationSecs int

	NATSURL           string
	NATSSubjectPrefix string
	LogNATSSubjects   bool

	DatabaseURL string // empty disables persistence
	MetricsAddr string // empty disables the metrics server
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.TripFile = getenvDefault("TRIP_FILE", "triplog.csv")
	cfg.TripName = os.Getenv("TRIP_NAME")
	if cfg.TripName == "" {
		base := filepath.Base(cfg.TripFile)
		cfg.TripName = strings.TrimSuffix(base, filepath.Ext(base))
	}

	// Stay-point distance threshold (meters)
	if v := os.Getenv("STOP_DISTANCE_M"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return nil, fmt.Errorf("invalid STOP_DISTANCE_M: %q", v)
		}
		cfg.StopDistanceM = f
	} else {
		cfg.StopDistanceM = 50
	}

	// Stay-point minimum duration (seconds)
	if v := os.Getenv("STOP_DURATION_SEC"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec <= 0 {
			return nil, fmt.Errorf("invalid STOP_DURATION_SEC: %q", v)
		}
		cfg.StopDuration = time.Duration(sec) * time.Second
	} else {
		cfg.StopDuration = 120 * time.Second
	}

	cfg.IncludeStops = parseBool(getenvDefault("INCLUDE_STOPS", "true"))

	// Animation duration: one of the selector values, 0 = instantaneous
	if v := os.Getenv("ANIMATION_SECONDS"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || !allowedAnimation(sec) {
			return nil, fmt.Errorf("invalid ANIMATION_SECONDS: %q (allowed: 0, 15, 30, 60, 90)", v)
		}
		cfg.AnimationSecs = sec
	}

	cfg.NATSURL = getenvDefault("NATS_URL", "nats://127.0.0.1:4222")
	cfg.NATSSubjectPrefix = getenvDefault("NATS_SUBJECT_PREFIX", "replay")
	cfg.LogNATSSubjects = parseBool(os.Getenv("LOG_NATS_SUBJECTS"))

	// Database DSN: prefer DATABASE_URL / PG_DSN, else build from PG* vars.
	// All empty means persistence stays off.
	dsn := firstNonEmpty(
		os.Getenv("DATABASE_URL"),
		os.Getenv("PG_DSN"),
	)
	if dsn == "" && os.Getenv("PGDATABASE") != "" {
		host := getenvDefault("PGHOST", "127.0.0.1")
		port := getenvDefault("PGPORT", "5432")
		user := getenvDefault("PGUSER", "postgres")
		pass := os.Getenv("PGPASSWORD")
		db := os.Getenv("PGDATABASE")
		sslmode := getenvDefault("PGSSLMODE", "disable")
		if pass != "" {
			dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", urlEscape(user), urlEscape(pass), host, port, db, sslmode)
		} else {
			dsn = fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", urlEscape(user), host, port, db, sslmode)
		}
	}
	cfg.DatabaseURL = dsn

	// Metrics listen address (e.g., ":9102"). Empty disables the metrics server.
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	return cfg, nil
}

func allowedAnimation(sec int) bool {
	for _, a := range AllowedAnimationSeconds {
		if sec == a {
			return true
		}
	}
	return false
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func urlEscape(s string) string {
	// Minimal escape for DSN user/pass with special chars
	r := strings.NewReplacer("@", "%40", ":", "%3A", "/", "%2F", "?", "%3F", "#", "%23")
	return r.Replace(s)
}
