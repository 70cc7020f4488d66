package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	DBName      string
	Port        string
	GinMode     string
	CORSOrigins []string

	// Gemini
	GeminiAPIKey    string
	GeminiAPIURL    string
	GeminiRPM       int
	EmbeddingsModel string

	// Ingestion
	MaxFileSize          int64
	DefaultChunkStrategy string
	DefaultChunkSize     int

	// Vector store
	VectorDBPath     string
	VectorCollection string

	// Redis
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Telemetry
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/modular_rag"),
		DBName:      getEnv("DB_NAME", "modular_rag"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiAPIURL:    getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"),
		GeminiRPM:       getEnvInt("GEMINI_RPM", 10),
		EmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),

		MaxFileSize:          getEnvInt64("MAX_FILE_SIZE", 20971520), // 20MB: uploads are processed in-request
		DefaultChunkStrategy: getEnv("CHUNK_STRATEGY", "fixed"),
		DefaultChunkSize:     getEnvInt("CHUNK_SIZE", 500),

		VectorDBPath:     getEnv("VECTOR_DB_PATH", "./storage/vectors"),
		VectorCollection: getEnv("VECTOR_COLLECTION", "file_chunks"),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}
	if cfg.DefaultChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
