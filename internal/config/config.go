package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSecretLen = 8

type Config struct {
	AppEnv         string
	Port           string
	LogLevel       string
	AllowedOrigins []string
	RequestTimeout time.Duration

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string
	ReindexSchedule string

	CloudinaryURL string
	UploadBucket  string

	JWTSecret string
	JWTTTL    time.Duration

	RateLimitSolicitud   time.Duration
	RateLimitLoginPerMin int
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryURL: strings.TrimSpace(os.Getenv("CLOUDINARY_URL")),
		UploadBucket:  getEnv("UPLOAD_BUCKET", "profesionales-fotos"),

		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	// An explicitly empty REINDEX_SCHEDULE disables the job.
	cfg.ReindexSchedule = "@every 6h"
	if v, ok := os.LookupEnv("REINDEX_SCHEDULE"); ok {
		cfg.ReindexSchedule = strings.TrimSpace(v)
	}

	for _, o := range strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	var err error
	cfg.RequestTimeout, err = time.ParseDuration(getEnv("REQUEST_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	cfg.RateLimitSolicitud, err = time.ParseDuration(getEnv("RATE_LIMIT_SOLICITUD", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SOLICITUD: %w", err)
	}
	cfg.RateLimitLoginPerMin, err = strconv.Atoi(getEnv("RATE_LIMIT_LOGIN", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_LOGIN: %w", err)
	}
	minutes, err := strconv.Atoi(getEnv("JWT_TTL_MINUTES", "30"))
	if err != nil || minutes <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL_MINUTES: %q", os.Getenv("JWT_TTL_MINUTES"))
	}
	cfg.JWTTTL = time.Duration(minutes) * time.Minute

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the two connection secrets and the signing key.
func (c *Config) Validate() error {
	if err := validateDatabaseURL(c.DatabaseURL); err != nil {
		return err
	}
	if err := validateCloudinaryURL(c.CloudinaryURL); err != nil {
		return err
	}

	if c.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET must be set outside development")
		}
		c.JWTSecret = "dev-only-change-me-please"
	}
	if !c.IsDevelopment() && len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if c.RateLimitLoginPerMin <= 0 {
		return errors.New("RATE_LIMIT_LOGIN must be positive")
	}
	if c.RateLimitSolicitud <= 0 {
		return errors.New("RATE_LIMIT_SOLICITUD must be positive")
	}
	if c.UploadBucket == "" {
		return errors.New("UPLOAD_BUCKET must not be empty")
	}
	return nil
}

func validateDatabaseURL(raw string) error {
	if raw == "" {
		return errors.New("DATABASE_URL must be set")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("DATABASE_URL must use the postgres:// scheme, got %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return errors.New("DATABASE_URL must include a host")
	}
	if u.User == nil || u.User.Username() == "" {
		return errors.New("DATABASE_URL must include credentials")
	}
	return nil
}

func validateCloudinaryURL(raw string) error {
	if raw == "" {
		return errors.New("CLOUDINARY_URL must be set")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("CLOUDINARY_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "cloudinary" {
		return errors.New("CLOUDINARY_URL must look like cloudinary://<key>:<secret>@<cloud>")
	}
	if u.Host == "" {
		return errors.New("CLOUDINARY_URL must include the cloud name")
	}
	key := u.User.Username()
	secret, _ := u.User.Password()
	if len(key) < minSecretLen || len(secret) < minSecretLen {
		return errors.New("CLOUDINARY_URL api key and secret look truncated")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
