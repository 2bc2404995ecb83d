package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath   string
	BrokerageURL   string
	MarketDataURL  string
	AllocationFile string
	LogLevel       string
	LogFile        string
	Port           int
	DevMode        bool

	// Trading behavior
	DryRun   bool   // Report the plan without placing orders
	RunOnce  bool   // Run a single investment cycle and exit
	Schedule string // Cron expression for scheduled cycles

	// Brokerage client rate limit (requests per second)
	BrokerageRPS float64

	// Email notification (optional; disabled when SMTPHost is empty)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string
	EmailTo      string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnvAsInt("PORT", 8010),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		DatabasePath:   getEnv("DATABASE_PATH", "./data/autoinvest.db"),
		BrokerageURL:   getEnv("BROKERAGE_SERVICE_URL", "http://localhost:9001"),
		MarketDataURL:  getEnv("MARKETDATA_SERVICE_URL", "http://localhost:9002"),
		AllocationFile: getEnv("ALLOCATION_FILE", "./allocation.yml"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
		DryRun:         getEnvAsBool("DRY_RUN", true),
		RunOnce:        getEnvAsBool("RUN_ONCE", false),
		Schedule:       getEnv("INVEST_SCHEDULE", "0 0 15 * * MON-FRI"),
		BrokerageRPS:   getEnvAsFloat("BROKERAGE_RPS", 5.0),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		EmailFrom:      getEnv("EMAIL_FROM", ""),
		EmailTo:        getEnv("EMAIL_TO", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}

	if c.AllocationFile == "" {
		return fmt.Errorf("ALLOCATION_FILE is required")
	}

	if c.BrokerageURL == "" {
		return fmt.Errorf("BROKERAGE_SERVICE_URL is required")
	}

	if c.SMTPHost != "" && (c.EmailFrom == "" || c.EmailTo == "") {
		return fmt.Errorf("EMAIL_FROM and EMAIL_TO are required when SMTP_HOST is set")
	}

	return nil
}

// EmailEnabled reports whether the SMTP notifier should be wired up
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
