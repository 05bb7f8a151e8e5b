package config

import (
	"os"
	"strconv"
	"time"

	"evently/internal/cache"
	"evently/internal/database"
	"evently/internal/messaging"
	"evently/internal/notify"
	"evently/internal/tickets"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Optional: when false the API authenticates against the database only.
	CacheEnabled bool

	Database database.Config
	NATS     messaging.Config
	Cache    cache.Config
	SMTP     notify.SMTPConfig
	Tickets  tickets.Config
}

// Load загружает конфигурацию из переменных окружения.
// .env.local and .env are read first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		CacheEnabled: getEnvBool("CACHE_ENABLED", true),

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "evently"),
			Password:           getEnv("DB_PASSWORD", "evently"),
			DBName:             getEnv("DB_NAME", "evently"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "evently"),
			ClientID:  getEnv("NATS_CLIENT_ID", "evently-api"),
		},

		Cache: cache.Config{
			Addr:      getEnv("VALKEY_ADDR", "localhost:6379"),
			Password:  getEnv("VALKEY_PASSWORD", ""),
			DB:        getEnvInt("VALKEY_DB", 0),
			KeyPrefix: getEnv("VALKEY_AUTH_KEY_PREFIX", "users:auth"),
			AuthTTL:   time.Duration(getEnvInt("VALKEY_AUTH_TTL_SEC", 300)) * time.Second,
		},

		SMTP: notify.SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnvInt("SMTP_PORT", 1025),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "tickets@evently.local"),
			FromName: getEnv("SMTP_FROM_NAME", "Evently"),
		},

		Tickets: tickets.Config{
			TokenSecret:   getEnv("TICKET_TOKEN_SECRET", "change-me"),
			Issuer:        getEnv("TICKET_TOKEN_ISSUER", "evently"),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8081"),
			QRSize:        getEnvInt("TICKET_QR_SIZE", 256),
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
