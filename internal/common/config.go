package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Scan    ScanConfig
	Record  RecordConfig
	Insight InsightConfig
}

// ScanConfig holds inference-service configuration.
type ScanConfig struct {
	BaseURL         string
	SubmitTimeout   time.Duration
	PollTimeout     time.Duration
	PollInterval    time.Duration
	MaxPollAttempts int
	Threshold       float64
}

// RecordConfig holds system-of-record configuration.
type RecordConfig struct {
	BaseURL string
	Timeout time.Duration
}

// InsightConfig holds generative-language configuration.
type InsightConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			BaseURL:         getEnv("SCAN_API_BASE_URL", ""),
			SubmitTimeout:   getEnvAsDuration("SCAN_SUBMIT_TIMEOUT", 30*time.Second),
			PollTimeout:     getEnvAsDuration("SCAN_POLL_TIMEOUT", 150*time.Second),
			PollInterval:    getEnvAsDuration("SCAN_POLL_INTERVAL", 2*time.Second),
			MaxPollAttempts: getEnvAsInt("SCAN_MAX_POLL_ATTEMPTS", 60),
			Threshold:       getEnvAsFloat64("SCAN_CONFIDENCE_THRESHOLD", 0.25),
		},
		Record: RecordConfig{
			BaseURL: getEnv("RECORD_API_BASE_URL", ""),
			Timeout: getEnvAsDuration("RECORD_TIMEOUT", 15*time.Second),
		},
		Insight: InsightConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout: getEnvAsDuration("GEMINI_TIMEOUT", 30*time.Second),
		},
	}
}

// Helper functions for environment variable parsing

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

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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
