package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	BackendSheets = "sheets"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Classifier ClassifierConfig
	Admin      AdminConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port     string
	GinMode  string
	LogDebug bool
}

type StorageConfig struct {
	Backend         string
	SpreadsheetID   string
	CredentialsFile string
	SQLitePath      string
	Timeout         time.Duration
}

type ClassifierConfig struct {
	ModelPath string
	RemoteURL string
	Timeout   time.Duration
}

type AdminConfig struct {
	Username     string
	PasswordHash string
	JWTSecret    string
	TokenExpiry  time.Duration
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// Release reports whether gin runs in release mode.
func (c *Config) Release() bool {
	return c.Server.GinMode == "release"
}

// AdminEnabled reports whether admin routes require a login.
func (c *Config) AdminEnabled() bool {
	return c.Admin.PasswordHash != ""
}

// Load reads the configuration from the environment. Call godotenv.Load
// first to pick up a .env file.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			GinMode:  getEnv("GIN_MODE", "debug"),
			LogDebug: getEnvAsBool("LOG_DEBUG", false),
		},
		Storage: StorageConfig{
			Backend:         getEnv("STORAGE_BACKEND", BackendSheets),
			SpreadsheetID:   getEnv("SPREADSHEET_ID", ""),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			SQLitePath:      getEnv("SQLITE_PATH", "./canteen_feedback.db"),
			Timeout:         getEnvAsDuration("STORAGE_TIMEOUT", 15*time.Second),
		},
		Classifier: ClassifierConfig{
			ModelPath: getEnv("MODEL_PATH", "model/sentiment_model.json"),
			RemoteURL: getEnv("CLASSIFIER_URL", ""),
			Timeout:   getEnvAsDuration("CLASSIFIER_TIMEOUT", 10*time.Second),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:    getEnv("JWT_SECRET_KEY", ""),
			TokenExpiry:  getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 10),
			Burst:     getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendSheets:
		if c.Storage.SpreadsheetID == "" {
			return fmt.Errorf("SPREADSHEET_ID is required for the sheets backend")
		}
		if c.Storage.CredentialsFile == "" {
			return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS is required for the sheets backend")
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	if c.Classifier.RemoteURL == "" && c.Classifier.ModelPath == "" {
		return fmt.Errorf("MODEL_PATH or CLASSIFIER_URL is required")
	}
	if c.AdminEnabled() && c.Admin.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required when ADMIN_PASSWORD_HASH is set")
	}
	if c.RateLimit.PerMinute <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
