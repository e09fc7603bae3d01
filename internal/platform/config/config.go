package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	DatabasePath string
}

func LoadConfig() Config {
	godotenv.Load(".env")
	return Config{
		ServerPort:   getEnv("HTTP_SERVER_PORT", "3000"),
		DatabasePath: getEnv("DB_PATH", "txdemo.db"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
