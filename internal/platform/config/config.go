package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBUrl  string
	DBName string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginMaxAttempts int
	LoginLockout     time.Duration

	LogLevel string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return &Config{
		APIPort:          getEnv("API_PORT", "8080"),
		JWTKey:           []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:           time.Duration(getEnvAsInt("JWT_EXPIRATION_MINUTES", 60)) * time.Minute,
		DBUrl:            getEnv("DB_URL", "mongodb://localhost:27017"),
		DBName:           getEnv("DB_NAME", "coaster_catalog"),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		LoginMaxAttempts: getEnvAsInt("LOGIN_MAX_ATTEMPTS", 10),
		LoginLockout:     time.Duration(getEnvAsInt("LOGIN_LOCKOUT_MINUTES", 15)) * time.Minute,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
