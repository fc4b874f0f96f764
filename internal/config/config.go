package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/yukikurage/teamtask/internal/constants"
)

type Config struct {
	Port     string
	GinMode  string
	AppEnv   string
	LogLevel string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	JWTSecret string
	JWTExpiry time.Duration

	OpenAIAPIKey string

	RateLimitPerMinute int
	RateLimitBurst     int
	RedisEnabled       bool
	RedisHost          string
	RedisPort          string
	RedisPassword      string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "1337"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", ""),

		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "taskuser"),
		DBPassword: getEnv("DB_PASSWORD", "taskpassword"),
		DBName:     getEnv("DB_NAME", "task_management"),
		DBPath:     getEnv("DB_PATH", "teamtask.db"),

		JWTSecret: getEnv("JWT_SECRET", "default-secret-key-change-me"),
		JWTExpiry: time.Duration(getEnvInt("JWT_EXPIRY_HOURS", int(constants.DefaultJWTExpiry/time.Hour))) * time.Hour,

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 300),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 50),
		RedisEnabled:       getEnvBool("REDIS_ENABLED", false),
		RedisHost:          getEnv("REDIS_HOST", "localhost"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
	}
}

// IsProduction reports whether the server runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release" || c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
