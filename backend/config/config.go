package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	JWTSecret     string
	ServerPort    string
	UploadDir     string
	AdminPassword string
	AIAPIKey      string
	AIBaseURL     string
	AIModel       string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "courseplan"),
		JWTSecret:     getEnv("SECRET_KEY", "secret"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
		AIAPIKey:      getEnv("AI_API_KEY", ""),
		AIBaseURL:     getEnv("AI_BASE_URL", "https://api.openai.com/v1"),
		AIModel:       getEnv("AI_MODEL", "gpt-4o-mini"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
