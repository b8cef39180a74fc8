package config

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Settings holds every environment driven option of the api, worker and
// schedule binaries.
type Settings struct {
	Port string

	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBAutoMigrate bool
	MigrationsDir string

	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string

	RedisAddress    string
	RedisPassword   string
	CacheTTLSeconds int

	GCSBucket          string
	GCSCredentialsJSON string

	JWTSecret      string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel  string
	AuditCron string
}

var (
	settings     *Settings
	settingsOnce sync.Once
)

// Load reads the settings once. A .env file in the working directory is
// honoured when present; real environment variables win over it.
func Load() *Settings {
	settingsOnce.Do(func() {
		_ = godotenv.Load()
		settings = FromEnv()
	})
	return settings
}

// FromEnv builds settings from the current environment without caching.
func FromEnv() *Settings {
	return &Settings{
		Port:               stringFromEnv("PORT", "8080"),
		DBHost:             stringFromEnv("DB_HOST", "localhost"),
		DBPort:             stringFromEnv("DB_PORT", "5432"),
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBName:             os.Getenv("DB_NAME"),
		DBSSLMode:          stringFromEnv("DB_SSLMODE", "disable"),
		DBAutoMigrate:      boolFromEnv("DB_AUTO_MIGRATE", true),
		MigrationsDir:      stringFromEnv("MIGRATIONS_DIR", "migrations"),
		RabbitMQHost:       os.Getenv("RABBITMQ_HOST"),
		RabbitMQPort:       stringFromEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:       os.Getenv("RABBITMQ_USER"),
		RabbitMQPassword:   os.Getenv("RABBITMQ_PASSWORD"),
		RedisAddress:       os.Getenv("REDIS_ADDRESS"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		CacheTTLSeconds:    intFromEnv("CACHE_TTL_SECONDS", 300),
		GCSBucket:          os.Getenv("GCS_BUCKET"),
		GCSCredentialsJSON: os.Getenv("GCS_CREDENTIALS_JSON"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AllowedOrigins:     listFromEnv("ALLOWED_ORIGINS"),
		RateLimitRPS:       floatFromEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst:     intFromEnv("RATE_LIMIT_BURST", 40),
		LogLevel:           stringFromEnv("LOG_LEVEL", "info"),
		AuditCron:          stringFromEnv("AUDIT_CRON", "0 0 */6 * * *"),
	}
}

// RabbitMQEnabled reports whether a broker host is configured.
func (s *Settings) RabbitMQEnabled() bool {
	return s.RabbitMQHost != ""
}

// RedisEnabled reports whether a redis address is configured.
func (s *Settings) RedisEnabled() bool {
	return s.RedisAddress != ""
}

func stringFromEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func floatFromEnv(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func boolFromEnv(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "":
		return def
	case "false", "0", "no", "off":
		return false
	default:
		return true
	}
}

// listFromEnv splits a comma-separated variable, e.g. "http://localhost:3000,http://localhost:3001".
func listFromEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
