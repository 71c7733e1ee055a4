package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the foundation backend.
type Config struct {
	Port             string
	Environment      string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	// Khalti ePayment. Sandbox vs production is selected purely by
	// KHALTI_BASE_URL; the code paths are identical.
	KhaltiSecretKey string
	KhaltiBaseURL   string
	KhaltiTimeout   time.Duration

	// Public-facing URLs handed to the gateway at initiation.
	SiteURL       string
	ReturnBaseURL string

	JWTSecret string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string

	EmailBatchSize    int
	EmailMaxAttempts  int
	EmailPollInterval time.Duration
	EmailErrorBackoff time.Duration
	EmailSendTimeout  time.Duration
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Kathmandu"),

		KhaltiSecretKey: os.Getenv("KHALTI_SECRET_KEY"),
		KhaltiBaseURL:   getEnv("KHALTI_BASE_URL", "https://dev.khalti.com/api/v2"),
		KhaltiTimeout:   getDuration("KHALTI_TIMEOUT_SECONDS", 30*time.Second),

		SiteURL:       getEnv("SITE_URL", "http://localhost:3000"),
		ReturnBaseURL: getEnv("RETURN_BASE_URL", "http://localhost:8080"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnv("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),

		EmailBatchSize:    getInt("EMAIL_BATCH_SIZE", 10),
		EmailMaxAttempts:  getInt("EMAIL_MAX_ATTEMPTS", 5),
		EmailPollInterval: getDuration("EMAIL_POLL_SECONDS", 10*time.Second),
		EmailErrorBackoff: getDuration("EMAIL_ERROR_BACKOFF_SECONDS", 30*time.Second),
		EmailSendTimeout:  getDuration("EMAIL_SEND_TIMEOUT_SECONDS", 15*time.Second),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.KhaltiSecretKey == "" {
		return nil, fmt.Errorf("KHALTI_SECRET_KEY is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
