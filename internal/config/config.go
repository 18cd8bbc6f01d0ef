package config

import (
	"os"
	"time"
)

type Config struct {
	// Collaborator service (client side)
	BaseURL     string
	HTTPTimeout time.Duration
	TokenPath   string

	// Error tracking
	SentryDSN string
	AppEnv    string

	// Simulator database
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Simulator auth
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Simulator server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		BaseURL:     getEnv("HAMDEL_BASE_URL", "http://localhost:8001"),
		HTTPTimeout: parseDuration(getEnv("HAMDEL_TIMEOUT", "15s"), 15*time.Second),
		TokenPath:   getEnv("HAMDEL_TOKEN_PATH", ""),

		SentryDSN: getEnv("SENTRY_DSN", ""),
		AppEnv:    getEnv("APP_ENV", "development"),

		DBDriver:   getEnv("DB_DRIVER", "sqlite"),
		DBPath:     getEnv("DB_PATH", "hamdel_sim.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "hamdel_sim"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "30m"), 30*time.Minute),

		Port:        getEnv("PORT", "8001"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

// DSN builds the PostgreSQL connection string used when DB_DRIVER=postgres.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
