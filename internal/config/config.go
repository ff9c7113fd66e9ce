// internal/config/config.go
//
// Runtime configuration, resolved from the environment (a .env file is loaded
// by the caller via godotenv) with defaults for local development.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/robalobadob/emojiquest/internal/session"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all configuration for the server and CLI.
type Config struct {
	Port         string `mapstructure:"port"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"` // json | console
	ClientOrigin string `mapstructure:"client_origin"`

	PuzzlesDir string `mapstructure:"puzzles_dir"` // empty: embedded data
	PublicDir  string `mapstructure:"public_dir"`  // empty: no static files

	ProgressBackend string `mapstructure:"progress_backend"`
	RedisAddr       string `mapstructure:"redis_addr"`
	RedisPrefix     string `mapstructure:"redis_prefix"`

	DailySalt string `mapstructure:"daily_salt"`

	SessionTTL time.Duration `mapstructure:"session_ttl"` // idle sessions are dropped after this; 0 keeps them

	MaxWordHints  int `mapstructure:"max_word_hints"`
	CorrectReward int `mapstructure:"correct_reward"`
	HintCost      int `mapstructure:"hint_cost"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("client_origin", "http://localhost:5173")

	v.SetDefault("puzzles_dir", "")
	v.SetDefault("public_dir", "")

	v.SetDefault("progress_backend", BackendMemory)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_prefix", "emojiquest")

	v.SetDefault("daily_salt", "local_dev_salt")
	v.SetDefault("session_ttl", "24h")

	rules := session.DefaultRules()
	v.SetDefault("max_word_hints", rules.MaxWordHints)
	v.SetDefault("correct_reward", rules.CorrectReward)
	v.SetDefault("hint_cost", rules.HintCost)
}

func (c *Config) validate() error {
	c.ProgressBackend = strings.ToLower(strings.TrimSpace(c.ProgressBackend))
	switch c.ProgressBackend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("config: unknown PROGRESS_BACKEND %q", c.ProgressBackend)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("config: SESSION_TTL must not be negative")
	}
	if c.MaxWordHints < 0 || c.CorrectReward < 0 || c.HintCost < 0 {
		return fmt.Errorf("config: game rules must not be negative")
	}
	return nil
}

// Rules returns the configured game rules.
func (c *Config) Rules() session.Rules {
	return session.Rules{
		MaxWordHints:  c.MaxWordHints,
		CorrectReward: c.CorrectReward,
		HintCost:      c.HintCost,
	}
}
