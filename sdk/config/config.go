// Package config reads the multi-board bot's settings from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Environment variable names
const (
	// EnvSeed provides a random seed for deterministic play
	EnvSeed = "MULTIBOARD_SEED"

	// EnvBotID names the bot instance in logs
	EnvBotID = "MULTIBOARD_BOT_ID"

	// EnvRangeTable points at the starting hand CSV (Holes,EVs)
	EnvRangeTable = "MULTIBOARD_RANGE_TABLE"

	// EnvPolicyFile points at an optional HCL policy file
	EnvPolicyFile = "MULTIBOARD_POLICY_FILE"

	// EnvWorkers sets Monte Carlo worker goroutines per estimate
	EnvWorkers = "MULTIBOARD_WORKERS"

	// EnvLogLevel sets the log level (debug, info, warn, error)
	EnvLogLevel = "MULTIBOARD_LOG_LEVEL"
)

// BotConfig holds configuration parsed from environment variables.
type BotConfig struct {
	// Seed is the random seed (0 means derive one from the clock)
	Seed int64 `env:"MULTIBOARD_SEED" env-default:"0" env-description:"random seed, 0 derives one from the clock"`

	BotID string `env:"MULTIBOARD_BOT_ID" env-default:"multiboard" env-description:"bot name used in logs"`

	// RangeTable is required for weighted sampling, optional otherwise
	RangeTable string `env:"MULTIBOARD_RANGE_TABLE" env-description:"starting hand table CSV"`

	PolicyFile string `env:"MULTIBOARD_POLICY_FILE" env-default:"policy.hcl" env-description:"HCL policy file, defaults apply when missing"`

	Workers int `env:"MULTIBOARD_WORKERS" env-default:"1" env-description:"Monte Carlo workers per estimate"`

	LogLevel string `env:"MULTIBOARD_LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
}

// FromEnv parses configuration from environment variables.
func FromEnv() (*BotConfig, error) {
	cfg := &BotConfig{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values cleanenv cannot.
func (c *BotConfig) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%s must be at least 1, got %d", EnvWorkers, c.Workers)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid %s value: %q", EnvLogLevel, c.LogLevel)
	}
	return nil
}

// Usage describes the environment variables for --help output.
func Usage() string {
	var b strings.Builder
	header := "Environment variables:"
	cleanenv.FUsage(&b, &BotConfig{}, &header)()
	return b.String()
}
