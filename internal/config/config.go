package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Store selects the document store backend: "postgres" or "memory"
	Store         string
	DatabaseURL   string
	RunMigrations bool
	DBMaxConns    int32
	DBMinConns    int32
	// Identity provider
	JWKSURL string
	// Image host (S3 compatible)
	S3Bucket        string
	S3Region        string
	S3BaseEndpoint  string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string // Prefix for photo URLs handed to clients
	// Synchronization core
	RemoteTimeout   time.Duration
	MaxWriteRetries int
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		Store:           getEnv("STORE", "postgres"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		RunMigrations:   getEnv("RUN_MIGRATIONS", "true") == "true",
		DBMaxConns:      int32(getEnvInt("DB_MAX_CONNS", 25)),
		DBMinConns:      int32(getEnvInt("DB_MIN_CONNS", 5)),
		JWKSURL:         getEnv("JWKS_URL", ""),
		S3Bucket:        getEnv("S3_BUCKET", "bucketlist-photos"),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3BaseEndpoint:  getEnv("S3_BASE_ENDPOINT", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
		RemoteTimeout:   getEnvDuration("REMOTE_TIMEOUT", DefaultRemoteTimeout),
		MaxWriteRetries: getEnvInt("MAX_WRITE_RETRIES", DefaultMaxWriteRetries),
		LogDir:          getEnv("LOG_DIR", ""),
		LogMaxFiles:     getEnvInt("LOG_MAX_FILES", 10),
	}
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
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
