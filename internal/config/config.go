package config

import (
	"os"
	"time"
)

type Config struct {
	DB_USERNAME string
	DB_PASSWORD string
	DB_HOST     string
	DB_PORT     string
	DB_NAME     string
	DISABLE_TLS string

	REDIS_ADDR     string
	REDIS_PASSWORD string

	// Cognito identity provider
	COGNITO_DOMAIN        string
	COGNITO_CLIENT_ID     string
	COGNITO_CLIENT_SECRET string
	COGNITO_REGION        string
	COGNITO_USER_POOL_ID  string

	// Public base URL of the application, used for OAuth callbacks and
	// the federated logout redirect.
	APP_URL string

	STATE_SECRET string
	SESSION_TTL  time.Duration

	PORT string

	// Otel
	OTEL_EXPORTER_OTLP_ENDPOINT string
}

func ReadConfig() *Config {
	sessionTTL := 24 * time.Hour
	if ttlStr := os.Getenv("SESSION_TTL"); ttlStr != "" {
		if ttl, err := time.ParseDuration(ttlStr); err == nil {
			sessionTTL = ttl
		}
	}

	return &Config{
		DB_USERNAME: os.Getenv("DB_USERNAME"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_NAME:     os.Getenv("DB_NAME"),
		DISABLE_TLS: os.Getenv("DISABLE_TLS"),

		REDIS_ADDR:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		REDIS_PASSWORD: os.Getenv("REDIS_PASSWORD"),

		COGNITO_DOMAIN:        os.Getenv("COGNITO_DOMAIN"),
		COGNITO_CLIENT_ID:     os.Getenv("COGNITO_CLIENT_ID"),
		COGNITO_CLIENT_SECRET: os.Getenv("COGNITO_CLIENT_SECRET"),
		COGNITO_REGION:        os.Getenv("COGNITO_REGION"),
		COGNITO_USER_POOL_ID:  os.Getenv("COGNITO_USER_POOL_ID"),

		APP_URL: getEnvOrDefault("APP_URL", "http://localhost:6060"),

		STATE_SECRET: os.Getenv("STATE_SECRET"),
		SESSION_TTL:  sessionTTL,

		PORT: getEnvOrDefault("PORT", "6060"),

		OTEL_EXPORTER_OTLP_ENDPOINT: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
