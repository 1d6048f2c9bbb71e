// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	DatabasePath string
	JWTSecretKey string
	Environment  string

	// External completions API. An empty AIAPIKey is not an error: the
	// service runs in demo mode with canned responses.
	AIAPIKey         string
	AIBaseURL        string
	AIModel          string
	AITimeoutSeconds int
}

// Load reads configuration from environment variables or a .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		DatabasePath:     getEnv("DATABASE_PATH", "genchat.db"),
		JWTSecretKey:     getEnv("JWT_SECRET_KEY", ""),
		Environment:      env,
		AIAPIKey:         getEnv("AI_API_KEY", ""),
		AIBaseURL:        getEnv("AI_BASE_URL", "https://api.euron.one/api/v1/euri"),
		AIModel:          getEnv("AI_MODEL", "gpt-4.1-nano"),
		AITimeoutSeconds: getEnvAsInt("AI_TIMEOUT_SECONDS", 30),
	}

	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}
