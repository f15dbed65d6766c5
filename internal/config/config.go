// Package config loads the process configuration from the environment once
// at startup. Services receive the values they need; nothing else reads the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether outgoing mail should go through an SMTP relay.
func (s SMTPConfig) Enabled() bool { return s.Host != "" }

// AdminCredentials is the bootstrap administrator matched literally at login.
type AdminCredentials struct {
	Email    string
	Password string
}

func (a AdminCredentials) Configured() bool { return a.Email != "" && a.Password != "" }

type Config struct {
	Port          string
	StoreDriver   string
	MongoURI      string
	MongoDatabase string

	JWTSecret string
	JWTExpiry time.Duration

	Admin      AdminCredentials
	BcryptCost int

	SMTP SMTPConfig

	CORSOrigins  []string
	CookieSecure bool
	LogLevel     string
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

// Load reads configuration from environment variables or uses default values.
func Load() (*Config, error) {
	var errs []error

	jwtExpiry, err := time.ParseDuration(getEnv("JWT_EXPIRES_IN", "24h"))
	if err != nil || jwtExpiry <= 0 {
		errs = append(errs, fmt.Errorf("JWT_EXPIRES_IN must be a positive duration: %q", os.Getenv("JWT_EXPIRES_IN")))
	}

	bcryptCost, err := strconv.Atoi(getEnv("BCRYPT_COST", "12"))
	if err != nil {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be an integer: %w", err))
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		errs = append(errs, fmt.Errorf("SMTP_PORT must be an integer: %w", err))
	}

	cookieSecure, err := strconv.ParseBool(getEnv("COOKIE_SECURE", "false"))
	if err != nil {
		errs = append(errs, fmt.Errorf("COOKIE_SECURE must be a boolean: %w", err))
	}

	cfg := &Config{
		Port:          getEnv("API_PORT", "8080"),
		StoreDriver:   getEnv("STORE_DRIVER", DriverMongo),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "clinica_dental"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTExpiry:     jwtExpiry,
		Admin: AdminCredentials{
			Email:    strings.ToLower(getEnv("ADMIN_EMAIL", "")),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
		BcryptCost: bcryptCost,
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     smtpPort,
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
		},
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		CookieSecure: cookieSecure,
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
	cfg.SMTP.From = getEnv("MAIL_FROM", cfg.SMTP.Username)

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if cfg.StoreDriver != DriverMongo && cfg.StoreDriver != DriverMemory {
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMongo, DriverMemory, cfg.StoreDriver))
	}
	if (cfg.Admin.Email == "") != (cfg.Admin.Password == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	if cfg.SMTP.Enabled() && cfg.SMTP.From == "" {
		errs = append(errs, errors.New("MAIL_FROM or SMTP_USERNAME is required when SMTP_HOST is set"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
