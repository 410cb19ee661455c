package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	Port string

	// Database (Neon PostgreSQL)
	DatabaseURL string

	// MongoDB (published site store)
	MongoURL string

	// JWT
	JWTSecret string
	JWTExpiry time.Duration

	// AWS S3 (logo and section image uploads)
	AWSAccessKey string
	AWSSecretKey string
	AWSRegion    string
	S3Bucket     string

	// Gemini
	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiImageModel string

	// Token ledger
	InitialTokens int

	// Redis (Upstash - for generation progress pub/sub)
	RedisURL string
}

func Load() *Config {
	jwtExpiry, _ := time.ParseDuration(getEnv("JWT_EXPIRY", "168h")) // 7 days

	initialTokens, _ := strconv.Atoi(getEnv("INITIAL_TOKENS", "100"))

	return &Config{
		// Server
		Port: getEnv("PORT", "8094"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", ""),

		// MongoDB
		MongoURL: getEnv("MONGO_URL", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: jwtExpiry,

		// AWS S3
		AWSAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSRegion:    getEnv("AWS_REGION", "us-west-1"),
		S3Bucket:     getEnv("S3_BUCKET", "aetherbuild-uploads"),

		// Gemini
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiTextModel:  getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),

		// Token ledger
		InitialTokens: initialTokens,

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
