package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/booknest/internal/library"
)

type Config struct {
	HTTPAddr       string
	DatabaseURL    string
	DBDriver       string
	DBMaxConns     int32
	DBMigrate      bool
	APIKey         string
	RedisAddr      string
	KafkaBrokers   []string
	KafkaTopic     string
	ServiceName    string
	AuditorGroup   string
	AuditorWorkers int
	RequestTimeout time.Duration
}

// Load reads the environment once, after merging a .env file when one
// exists. Missing required values are reported together.
func Load() (Config, error) {
	_ = godotenv.Load()

	var errs []error
	cfg := Config{
		HTTPAddr:     httpAddr(),
		DatabaseURL:  must("DATABASE_URL", &errs),
		DBDriver:     getenv("DB_DRIVER", "pgx"),
		APIKey:       os.Getenv("API_KEY"),
		RedisAddr:    getenv("REDIS_ADDR", ""),
		KafkaBrokers: splitCSV(getenv("KAFKA_BROKERS", "")),
		KafkaTopic:   getenv("KAFKA_TOPIC", library.TopicIssuanceEvents),
		ServiceName:  getenv("SERVICE_NAME", "booknest-api"),
		AuditorGroup: getenv("AUDITOR_GROUP", "booknest-auditor"),
	}

	maxConns, err := strconv.ParseInt(getenv("DB_MAX_CONNS", "8"), 10, 32)
	if err != nil || maxConns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS: want a positive integer"))
	}
	cfg.DBMaxConns = int32(maxConns)

	if cfg.DBMigrate, err = strconv.ParseBool(getenv("DB_MIGRATE", "false")); err != nil {
		errs = append(errs, fmt.Errorf("DB_MIGRATE: %w", err))
	}
	if cfg.AuditorWorkers, err = strconv.Atoi(getenv("AUDITOR_WORKERS", "4")); err != nil {
		errs = append(errs, fmt.Errorf("AUDITOR_WORKERS: %w", err))
	}
	if cfg.RequestTimeout, err = time.ParseDuration(getenv("REQUEST_TIMEOUT", "15s")); err != nil {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT: %w", err))
	}

	switch cfg.DBDriver {
	case "pgx", "postgres", "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DBDriver))
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

// LoadAPI is Load for the HTTP server, which also needs API_KEY.
func LoadAPI() (Config, error) {
	cfg, err := Load()
	if os.Getenv("API_KEY") == "" {
		err = errors.Join(err, errors.New("API_KEY is required"))
	}
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// httpAddr prefers PORT, which most hosting platforms inject.
func httpAddr() string {
	if p := os.Getenv("PORT"); p != "" {
		return ":" + strings.TrimPrefix(p, ":")
	}
	return getenv("HTTP_ADDR", ":3002")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string, errs *[]error) string {
	v := os.Getenv(k)
	if v == "" {
		*errs = append(*errs, fmt.Errorf("%s is required", k))
	}
	return v
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
