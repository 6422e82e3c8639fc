package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	UploadDir string
	ReportDir string

	GeoIPDBPath   string
	DefaultLocale string

	LogFile string

	CleanupMaxAge   time.Duration
	CleanupInterval time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	WorkerPollInterval time.Duration

	AllowedOrigins  []string
	UploadRateLimit int
	UploadRateSpan  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. DATABASE_URL is optional: without it jobs are kept
// in memory, matching the original single-process deployment.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
		ReportDir:          getEnv("REPORT_DIR", "./reports"),
		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		DefaultLocale:      getEnv("DEFAULT_LOCALE", "pt"),
		LogFile:            os.Getenv("LOG_FILE"),
		CleanupMaxAge:      time.Hour * time.Duration(getEnvInt("CLEANUP_MAX_AGE_HOURS", 24)),
		CleanupInterval:    time.Hour * time.Duration(getEnvInt("CLEANUP_INTERVAL_HOURS", 1)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		WorkerPollInterval: time.Second * time.Duration(getEnvInt("WORKER_POLL_INTERVAL_SECONDS", 2)),
		AllowedOrigins:     splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		UploadRateLimit:    getEnvInt("UPLOAD_RATE_LIMIT", 0),
		UploadRateSpan:     time.Second * time.Duration(getEnvInt("UPLOAD_RATE_SPAN_SECONDS", 60)),
	}

	if cfg.UploadDir == cfg.ReportDir {
		return nil, fmt.Errorf("UPLOAD_DIR and REPORT_DIR must differ")
	}

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
