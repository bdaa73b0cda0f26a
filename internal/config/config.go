package config

import (
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const insecureDefaultSalt = "dev_salt_change_me"

type Config struct {
	// Server configuration
	ServerPort  string
	Environment string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis configuration
	RedisAddress string

	// Secret salt mixed into device-id hashes
	DeviceSalt string

	// Optional single invite secret shared across all rooms.
	// When set, joins are verified against it instead of the
	// per-room token hash.
	FixedInviteToken string

	FrontendAddress string
}

// Global application configuration
var AppConfig Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	// Find .env file
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		// Try to find .env in parent directories
		envPath = filepath.Join("..", ".env")
		if _, err := os.Stat(envPath); os.IsNotExist(err) {
			envPath = filepath.Join("..", "..", ".env")
		}
	}

	// Load .env file if it exists
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	deviceSalt := os.Getenv("DEVICE_SALT")
	if deviceSalt == "" {
		deviceSalt = insecureDefaultSalt
		log.Println("Warning: DEVICE_SALT not set, using insecure default salt")
	}

	AppConfig = Config{
		ServerPort:       getEnv("PORT", "8080"),
		Environment:      getEnv("ENV", "development"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "postgres"),
		DBName:           getEnv("DB_NAME", "daily_menu"),
		RedisAddress:     getEnv("REDIS_ADDRESS", "localhost:6379"),
		DeviceSalt:       deviceSalt,
		FixedInviteToken: os.Getenv("FIXED_INVITE_TOKEN"),
		FrontendAddress:  getEnv("FRONTEND_ADDRESS", "https://production-frontend.com"),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
