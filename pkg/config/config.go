package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment string
	Port        string

	// Database settings
	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration

	// JWT settings
	JWTSecret  string
	JWTExpires time.Duration

	// CORS settings
	AllowedOrigins []string

	// Debug settings
	Debug bool
}

// Load reads configuration from the environment (with optional .env files)
func Load() *Config {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	switch env {
	case "production":
		loadEnvFile(".env.production")
	default:
		loadEnvFile(".env.local")
	}

	config := &Config{
		Environment:   getEnvWithDefault("ENVIRONMENT", "development"),
		Port:          getEnvWithDefault("PORT", "8000"),
		MongoURI:      strings.TrimSpace(getEnvWithDefault("MONGODB_URI", "mongodb://localhost:27017")),
		MongoDatabase: getEnvWithDefault("MONGODB_DATABASE", "optysys"),
		MongoTimeout:  getEnvDuration("MONGODB_TIMEOUT", 10*time.Second),
		JWTSecret:     getEnvWithDefault("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpires:    getEnvDuration("JWT_EXPIRES", 24*time.Hour),
		Debug:         getEnvBool("DEBUG", false),
	}

	allowedOrigins := getEnvWithDefault("ALLOWED_ORIGINS", "*")
	if allowedOrigins == "*" {
		config.AllowedOrigins = []string{"*"}
	} else {
		config.AllowedOrigins = strings.Split(allowedOrigins, ",")
	}

	if config.Environment == "production" {
		config.Debug = false
	}

	return config
}

// Validate checks the configuration for missing required values
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}

	if c.JWTSecret == "" || c.JWTSecret == "your-secret-key-change-in-production" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return nil
}

// IsProduction reports whether the app runs in the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment reports whether the app runs in the development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// getEnvWithDefault returns the env var value or the default when unset
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean env var value or the default when unset
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration env var value or the default when unset
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// loadEnvFile loads KEY=VALUE pairs from a .env file into the environment.
// Existing environment variables take precedence.
func loadEnvFile(filename string) {
	file, err := os.Open(filename)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if len(value) >= 2 {
			if (strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"")) ||
				(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")) {
				value = value[1 : len(value)-1]
			}
		}

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
