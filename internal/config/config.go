package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Storage
	StoreDriver   string // "postgres", "mongo" or "memory"
	DatabaseURL   string
	RunMigrations bool
	MongoURL      string
	MongoDatabase string
	RedisURL      string // Unique-visit tracking; empty disables unique view counting
	// Authentication
	JWKSURL   string
	JWTIssuer string
	// Lifecycle engine
	SlugMaxAttempts    int
	MaxConflictRetries int
	// Observability
	OTelExporter string // "none", "stdout" or "otlp"
	OTelEndpoint string
	LogDir       string
	LogMaxFiles  int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		// Storage - memory store by default in dev so the server runs without a database
		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", getDefaultStoreDriver(env))),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RunMigrations: getEnv("RUN_MIGRATIONS", "true") == "true",
		MongoURL:      getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "folio"),
		RedisURL:      getEnv("REDIS_URL", ""),
		// Authentication
		JWKSURL:   getEnv("JWKS_URL", ""),
		JWTIssuer: getEnv("JWT_ISSUER", ""),
		// Lifecycle engine
		SlugMaxAttempts:    getEnvInt("SLUG_MAX_ATTEMPTS", DefaultSlugMaxAttempts),
		MaxConflictRetries: getEnvInt("MAX_CONFLICT_RETRIES", DefaultMaxConflictRetries),
		// Observability
		OTelExporter: strings.ToLower(getEnv("OTEL_EXPORTER", "none")),
		OTelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		LogDir:       getEnv("LOG_DIR", ""),
		LogMaxFiles:  getEnvInt("LOG_MAX_FILES", 10),
	}
}

// getDefaultStoreDriver returns the default store driver based on environment
func getDefaultStoreDriver(env string) string {
	if env == "dev" || env == "test" {
		return "memory"
	}
	return "postgres"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}
