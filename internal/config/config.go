package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Client  ClientConfig
	Logging LoggingConfig
}

// ServerConfig holds game-server related configuration
type ServerConfig struct {
	URL string // base HTTP endpoint; the websocket URL is derived from it
}

// ClientConfig holds client-related configuration
type ClientConfig struct {
	PlayerName     string
	ReconnectDelay time.Duration
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			URL: getEnv("SERVER_URL", "http://localhost:8080"),
		},
		Client: ClientConfig{
			PlayerName:     getEnv("PLAYER_NAME", ""),
			ReconnectDelay: time.Duration(getEnvInt("RECONNECT_DELAY_SECONDS", 1)) * time.Second,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as an integer or a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
