package server

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the card service configuration.
type Config struct {
	Addr        string
	DataDir     string
	JWTSecret   string
	TokenExpiry time.Duration
	BcryptCost  int
	LogLevel    string
}

// LoadConfig reads configuration from environment variables with
// sensible defaults. A .env file is loaded if present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:        getEnv("FLIP_ADDR", ":8089"),
		DataDir:     getEnv("FLIP_DATA_DIR", "./flip-data"),
		JWTSecret:   getEnv("FLIP_JWT_SECRET", "change-this-to-a-secure-random-string"),
		TokenExpiry: time.Duration(getEnvInt("FLIP_TOKEN_EXPIRY_HOURS", 24)) * time.Hour,
		BcryptCost:  getEnvInt("FLIP_BCRYPT_COST", 10),
		LogLevel:    getEnv("FLIP_LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
