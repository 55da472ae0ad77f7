package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr          string        `mapstructure:"HTTP_ADDR"`
	RedisConnString   string        `mapstructure:"REDIS_CONNSTRING"`
	SQLitePath        string        `mapstructure:"SQLITE_PATH"`
	JWTSecret         string        `mapstructure:"JWT_SECRET"`
	TokenTTL          time.Duration `mapstructure:"TOKEN_TTL"`
	OTLPEndpoint      string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName       string        `mapstructure:"SERVICE_NAME"`
	ServiceVersion    string        `mapstructure:"SERVICE_VERSION"`
	ComputerMoveDelay time.Duration `mapstructure:"COMPUTER_MOVE_DELAY"`
	GameTTL           time.Duration `mapstructure:"GAME_TTL"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	StaticDir         string        `mapstructure:"STATIC_DIR"`
}

var defaults = map[string]any{
	"HTTP_ADDR":                   ":8080",
	"REDIS_CONNSTRING":            "localhost:6379",
	"SQLITE_PATH":                 "./master.db",
	"JWT_SECRET":                  "",
	"TOKEN_TTL":                   72 * time.Hour,
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
	"SERVICE_NAME":                "tic-tac-toe",
	"SERVICE_VERSION":             "v0.2.0",
	"COMPUTER_MOVE_DELAY":         600 * time.Millisecond,
	"GAME_TTL":                    24 * time.Hour,
	"LOG_LEVEL":                   "debug",
	"STATIC_DIR":                  "./web",
}

// Load reads configuration from the environment, overlaid on an optional
// config file (.env, yaml, json...). An empty path skips the file.
func Load(cfgPath string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.ComputerMoveDelay < 0 {
		return nil, fmt.Errorf("COMPUTER_MOVE_DELAY must not be negative, got %s", cfg.ComputerMoveDelay)
	}
	return &cfg, nil
}
