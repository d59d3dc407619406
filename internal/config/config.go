package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	DBDriver        string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	RedisHost       string
	RedisPort       string
	SessionSecret   string
	GinMode         string
	HTTPAddr        string
	OpenAIAPIKey    string
	LogLevel        string
	LogFormat       string
	EventBufferSize int
	EventWorkers    int
}

var defaults = map[string]any{
	"DB_DRIVER":         "mysql",
	"DB_HOST":           "localhost",
	"DB_PORT":           "3306",
	"DB_USER":           "taskuser",
	"DB_PASSWORD":       "taskpassword",
	"DB_NAME":           "hr_tasks",
	"REDIS_HOST":        "localhost",
	"REDIS_PORT":        "6379",
	"SESSION_SECRET":    "default-secret-key-change-me",
	"GIN_MODE":          "debug",
	"HTTP_ADDR":         ":8080",
	"OPENAI_API_KEY":    "",
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "json",
	"EVENT_BUFFER_SIZE": 256,
	"EVENT_WORKERS":     2,
}

// LoadFile reads configuration from an optional file, with environment
// variables taking precedence over file values.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return fromViper(v), nil
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		DBDriver:        v.GetString("DB_DRIVER"),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBUser:          v.GetString("DB_USER"),
		DBPassword:      v.GetString("DB_PASSWORD"),
		DBName:          v.GetString("DB_NAME"),
		RedisHost:       v.GetString("REDIS_HOST"),
		RedisPort:       v.GetString("REDIS_PORT"),
		SessionSecret:   v.GetString("SESSION_SECRET"),
		GinMode:         v.GetString("GIN_MODE"),
		HTTPAddr:        v.GetString("HTTP_ADDR"),
		OpenAIAPIKey:    v.GetString("OPENAI_API_KEY"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		EventBufferSize: v.GetInt("EVENT_BUFFER_SIZE"),
		EventWorkers:    v.GetInt("EVENT_WORKERS"),
	}
}
