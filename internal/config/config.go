package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`

	BotToken    string `mapstructure:"BOT_TOKEN"`
	BotActivity string `mapstructure:"BOT_ACTIVITY"`
	NetworkName string `mapstructure:"NETWORK_NAME"`

	ServersPath   string        `mapstructure:"SERVERS_PATH"`
	StatusTimeout time.Duration `mapstructure:"STATUS_TIMEOUT"`
	QueryTimeout  time.Duration `mapstructure:"QUERY_TIMEOUT"`

	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogsPath    string `mapstructure:"LOGS_PATH"`
	LogTimezone string `mapstructure:"LOG_TIMEZONE"`
	SentryDSN   string `mapstructure:"SENTRY_DSN"`

	APIEnabled     bool     `mapstructure:"API_ENABLED"`
	Port           string   `mapstructure:"PORT"`
	Token          string   `mapstructure:"TOKEN"`
	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`
}

var defaults = map[string]any{
	"ENVIRONMENT":     "development",
	"BOT_TOKEN":       "",
	"BOT_ACTIVITY":    "Gwaff",
	"NETWORK_NAME":    "Spooncraft",
	"SERVERS_PATH":    "servers.toml",
	"STATUS_TIMEOUT":  "3s",
	"QUERY_TIMEOUT":   "3s",
	"LOG_LEVEL":       "info",
	"LOGS_PATH":       "logs/grumbot.log",
	"LOG_TIMEZONE":    "UTC",
	"SENTRY_DSN":      "",
	"API_ENABLED":     true,
	"PORT":            "4000",
	"TOKEN":           "",
	"ALLOWED_ORIGINS": "",
}

// Load reads envFile (usually .env) into the environment, then builds the
// configuration from environment variables and defaults. Variables already
// set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load %s: %w", envFile, err)
			}
			log.Printf("[WARNING]: %s file not found, relying on defaults and system ENV variables.", envFile)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AllowedOrigins = splitOrigins(cfg.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.BotToken == "" {
		return errors.New("config: BOT_TOKEN is required")
	}
	if c.StatusTimeout <= 0 {
		return fmt.Errorf("config: STATUS_TIMEOUT must be positive, got %s", c.StatusTimeout)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("config: QUERY_TIMEOUT must be positive, got %s", c.QueryTimeout)
	}
	if c.APIEnabled && c.Port == "" {
		return errors.New("config: PORT is required when API_ENABLED is set")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitOrigins(in []string) []string {
	var out []string
	for _, s := range in {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
