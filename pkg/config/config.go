package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Auth     AuthConfig     `json:"auth"`
	Log      LogConfig      `json:"log"`
	Claims   ClaimsConfig   `json:"claims"`
	Sweep    SweepConfig    `json:"sweep"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// AllowedOrigins feeds CORS; "*" allows any origin.
	AllowedOrigins []string `json:"allowed_origins"`
}

type DatabaseConfig struct {
	DataDir string `json:"data_dir"`
}

type AuthConfig struct {
	JWTSecret     string `json:"jwt_secret"`
	TokenTTLHours int    `json:"token_ttl_hours"`
}

type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json or text
}

type ClaimsConfig struct {
	RetryAttempts int `json:"retry_attempts"`
	// Timezone decides which calendar day is "today"; empty means the host's.
	Timezone string `json:"timezone"`
}

type SweepConfig struct {
	// Schedule is a cron spec with a leading seconds field. Empty disables the sweep.
	Schedule string `json:"schedule"`
}

func LoadConfig(path string) (*Config, error) {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "localhost"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: []string{getEnv("CORS_ALLOWED_ORIGIN", "*")},
		},
		Database: DatabaseConfig{
			DataDir: getEnv("DATABASE_DIR", "./data"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenTTLHours: getEnvAsInt("JWT_TTL_HOURS", 24),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Claims: ClaimsConfig{
			RetryAttempts: getEnvAsInt("CLAIM_RETRY_ATTEMPTS", 3),
			Timezone:      getEnv("TRACKER_TIMEZONE", ""),
		},
		Sweep: SweepConfig{
			Schedule: getEnvAllowEmpty("SWEEP_SCHEDULE", "0 0 2 * * *"),
		},
	}

	// If a config file is specified, load it and override env vars
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, err
			}
		} else {
			defer file.Close()
			if err := json.NewDecoder(file).Decode(config); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if !filepath.IsAbs(config.Database.DataDir) {
		config.Database.DataDir, _ = filepath.Abs(config.Database.DataDir)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("token TTL must be positive, got %d", c.Auth.TokenTTLHours)
	}
	if c.Claims.RetryAttempts < 1 {
		return fmt.Errorf("claim retry attempts must be at least 1, got %d", c.Claims.RetryAttempts)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Claims.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Claims.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Claims.Timezone, err)
	}
	return loc, nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty treats a variable that is set but empty as a deliberate value.
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
