package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// environment variables
const (
	PORT                 = "PORT"
	DBUSER               = "DBUSER"
	DBPASS               = "DBPASS"
	DBHOST               = "DBHOST"
	DBNAME               = "DBNAME"
	JWT_SECRET_KEY       = "JWT_SECRET_KEY"
	JWT_LIFETIME_MINUTES = "JWT_LIFETIME_MINUTES"
	SMTP_HOST            = "SMTP_HOST"
	SMTP_PORT            = "SMTP_PORT"
	SMTP_USER            = "SMTP_USER"
	SMTP_PASS            = "SMTP_PASS"
	EMAIL_FROM           = "EMAIL_FROM"
	CORS_ORIGIN          = "CORS_ORIGIN"
)

// Config carries everything the process needs, built once in main and
// passed to constructors. No component reads the environment after
// startup.
type Config struct {
	Port        string
	DBUser      string
	DBPass      string
	DBHost      string
	DBName      string
	JWTSecret   []byte
	JWTLifetime time.Duration
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
	EmailFrom   string
	CORSOrigin  string
}

// Load reads a .env file if one exists, then assembles the Config from
// the environment. The signing secret is the only hard requirement.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	cfg := Config{
		Port:        getEnv(PORT, "3001"),
		DBUser:      os.Getenv(DBUSER),
		DBPass:      os.Getenv(DBPASS),
		DBHost:      getEnv(DBHOST, "127.0.0.1:3306"),
		DBName:      getEnv(DBNAME, "securelogin"),
		JWTSecret:   []byte(os.Getenv(JWT_SECRET_KEY)),
		JWTLifetime: time.Minute * time.Duration(getEnvInt(JWT_LIFETIME_MINUTES, 60)),
		SMTPHost:    os.Getenv(SMTP_HOST),
		SMTPPort:    getEnvInt(SMTP_PORT, 587),
		SMTPUser:    os.Getenv(SMTP_USER),
		SMTPPass:    os.Getenv(SMTP_PASS),
		EmailFrom:   getEnv(EMAIL_FROM, os.Getenv(SMTP_USER)),
		CORSOrigin:  getEnv(CORS_ORIGIN, "http://localhost:3000"),
	}
	if len(cfg.JWTSecret) == 0 {
		return Config{}, errors.New("JWT_SECRET_KEY is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}
