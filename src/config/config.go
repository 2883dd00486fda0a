package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything main builds once at startup and hands to the
// components that need it. Nothing reads the environment after Load.
type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	EncryptionKey string

	PlaidClientID string
	PlaidSecret   string
	PlaidEnv      string

	Sync SyncConfig
}

// SyncConfig tunes the per-item pagination loop.
type SyncConfig struct {
	PageSize    int32
	MaxPages    int
	MaxRetries  int
	RetryDelay  time.Duration
	PageTimeout time.Duration
}

func Load() Config {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		PlaidClientID: getEnv("PLAID_CLIENT_ID", ""),
		PlaidSecret:   getEnv("PLAID_SECRET", ""),
		PlaidEnv:      getEnv("PLAID_ENV", "sandbox"),
		Sync: SyncConfig{
			PageSize:    int32(getEnvInt("SYNC_PAGE_SIZE", 500)),
			MaxPages:    getEnvInt("SYNC_MAX_PAGES", 250),
			MaxRetries:  getEnvInt("SYNC_MAX_RETRIES", 3),
			RetryDelay:  getEnvDuration("SYNC_RETRY_DELAY", 2*time.Second),
			PageTimeout: getEnvDuration("SYNC_PAGE_TIMEOUT", 30*time.Second),
		},
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("WARN: Invalid value for %s, using default %d", key, fallback)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("WARN: Invalid value for %s, using default %s", key, fallback)
	}
	return fallback
}
