package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the emergency report service
type Config struct {
	// Report store configuration
	StoreBackend string // "file" or "mysql"
	StorePath    string // file backend only

	// Database configuration (mysql backend)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// SMS gateway configuration
	SMSGatewayURL string
	SMSGatewayKey string
	SMSSenderID   string

	// Location provider configuration
	GeolocationURL string
	FixedLatitude  float64
	FixedLongitude float64
	FixedAccuracy  float64

	// Manual dispatch queue (compose fallback)
	AMQPURL            string
	DispatchExchange   string
	DispatchRoutingKey string

	// Retention horizon for pruning old reports, in days
	RetentionDays int
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{}

	cfg.StoreBackend = getEnv("STORE_BACKEND", "file")
	cfg.StorePath = getEnv("STORE_PATH", "data/emergency_reports.json")

	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "3306")
	cfg.DBUser = getEnv("DB_USER", "server")
	cfg.DBPassword = getEnv("DB_PASSWORD", "secret")
	cfg.DBName = getEnv("DB_NAME", "emergency")

	cfg.SMSGatewayURL = getEnv("SMS_GATEWAY_URL", "")
	cfg.SMSGatewayKey = getEnv("SMS_GATEWAY_API_KEY", "")
	cfg.SMSSenderID = getEnv("SMS_SENDER_ID", "TEJUS")

	cfg.GeolocationURL = getEnv("GEOLOCATION_URL", "")
	cfg.FixedLatitude = getEnvFloat("FIXED_LATITUDE", 0)
	cfg.FixedLongitude = getEnvFloat("FIXED_LONGITUDE", 0)
	cfg.FixedAccuracy = getEnvFloat("FIXED_ACCURACY", 0)

	cfg.AMQPURL = getEnv("AMQP_URL", "")
	cfg.DispatchExchange = getEnv("DISPATCH_EXCHANGE", "emergency_dispatch")
	cfg.DispatchRoutingKey = getEnv("DISPATCH_ROUTING_KEY", "dispatch.manual")

	cfg.RetentionDays = getEnvInt("RETENTION_DAYS", 30)

	return cfg
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
