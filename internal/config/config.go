package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server  Server  `mapstructure:"server"`
	Sink    Sink    `mapstructure:"sink"`
	History History `mapstructure:"history"`
	Archive Archive `mapstructure:"archive"`
	Logger  Logger  `mapstructure:"logger"`
}

// Server holds the configuration for the HTTP server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Sink holds the configuration for the external persistence/notification sink.
type Sink struct {
	URL            string  `mapstructure:"url"`
	DefaultChatID  string  `mapstructure:"default_chat_id"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// History holds the configuration for the in-memory signal history.
type History struct {
	Capacity int `mapstructure:"capacity"`
}

// Archive holds the configuration for the local signal archive.
type Archive struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("history.capacity", 50)
	viper.SetDefault("sink.timeout_seconds", 10)
	viper.SetDefault("sink.rate_limit", 5) // requests per second
	viper.SetDefault("sink.rate_limit_burst", 10)
	viper.SetDefault("archive.dsn", "signals.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
