package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig
	GitHub GitHubConfig
	Gemini GeminiConfig
	Chat   ChatConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type GitHubConfig struct {
	APIBaseURL       string
	ContributionsURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type ChatConfig struct {
	Model         string
	SessionTTL    int
	SweepInterval int
	MaxSessions   int
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 60),
		},
		GitHub: GitHubConfig{
			APIBaseURL:       getEnv("GITHUB_API_BASE_URL", ""),
			ContributionsURL: getEnv("CONTRIBUTIONS_API_URL", "https://github-contributions-api.jogruber.de/v4"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Chat: ChatConfig{
			Model:         getEnv("CHAT_MODEL", getEnv("GEMINI_MODEL", "gemini-2.0-flash")),
			SessionTTL:    getEnvAsInt("CHAT_SESSION_TTL_MINUTES", 30),
			SweepInterval: getEnvAsInt("CHAT_SWEEP_INTERVAL_MINUTES", 5),
			MaxSessions:   getEnvAsInt("CHAT_MAX_SESSIONS", 1000),
		},
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
