// Package config loads CognitCode configuration from file, environment
// variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Default configuration values.
const (
	DefaultServerPort     = "8080"
	DefaultServerMaxInput = "1MB"
	DefaultLLMModel       = "gemini-2.5-flash"
	DefaultLLMBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	DefaultLLMTimeout     = "120s"
)

// Validation errors.
var (
	errInvalidPort    = errors.New("server.port must be a TCP port number")
	errEmptyModel     = errors.New("llm.model must not be empty")
	errEmptyBaseURL   = errors.New("llm.base_url must not be empty")
	errInvalidTimeout = errors.New("llm.timeout must be a duration")
)

const maxTCPPort = 65535

// Config is the top-level configuration struct for cognitcode.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	LLM    LLMConfig    `mapstructure:"llm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     string `mapstructure:"port"`
	MaxInput string `mapstructure:"max_input"`
}

// LLMConfig holds model provider settings. The credential is never read from
// the config file; see ResolveAPIKey.
type LLMConfig struct {
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

// ParsedTimeout returns the request timeout as a duration. Unparseable values
// fall back to the default; Validate rejects them first.
func (l *LLMConfig) ParsedTimeout() time.Duration {
	timeout, err := time.ParseDuration(l.Timeout)
	if err != nil {
		timeout, _ = time.ParseDuration(DefaultLLMTimeout)
	}

	return timeout
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port <= 0 || port > maxTCPPort {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Server.Port)
	}

	if c.LLM.Model == "" {
		return errEmptyModel
	}

	if c.LLM.BaseURL == "" {
		return errEmptyBaseURL
	}

	_, err = time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return fmt.Errorf("%w: %q", errInvalidTimeout, c.LLM.Timeout)
	}

	return nil
}
