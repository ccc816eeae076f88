package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".cognitcode"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for cognitcode settings.
const envPrefix = "COGNITCODE"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Provider credential environment variables. GOOGLE_API_KEY is authoritative;
// GEMINI_API_KEY is the documented fallback alias some environments use.
const (
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
)

// dotEnvFile is the optional per-directory env file honored at load time.
const dotEnvFile = ".env"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("server.port", DefaultServerPort)
	viperCfg.SetDefault("server.max_input", DefaultServerMaxInput)

	viperCfg.SetDefault("llm.model", DefaultLLMModel)
	viperCfg.SetDefault("llm.base_url", DefaultLLMBaseURL)
	viperCfg.SetDefault("llm.timeout", DefaultLLMTimeout)
}

// ResolveAPIKey returns the provider credential. Resolution order: process
// environment (GOOGLE_API_KEY, then GEMINI_API_KEY), then the same keys from
// a .env file in the current directory. Process environment always wins over
// the .env file; an absent credential returns "".
func ResolveAPIKey() string {
	if key := os.Getenv(EnvGoogleAPIKey); key != "" {
		return key
	}

	if key := os.Getenv(EnvGeminiAPIKey); key != "" {
		return key
	}

	return apiKeyFromDotEnv(dotEnvFile)
}

// apiKeyFromDotEnv reads the credential keys from a dotenv file. A missing or
// unreadable file yields "" silently; the process environment is the
// authoritative source and the file is a convenience.
func apiKeyFromDotEnv(path string) string {
	if _, statErr := os.Stat(path); statErr != nil {
		return ""
	}

	envCfg := viper.New()
	envCfg.SetConfigFile(path)
	envCfg.SetConfigType("env")

	readErr := envCfg.ReadInConfig()
	if readErr != nil {
		return ""
	}

	if key := envCfg.GetString(EnvGoogleAPIKey); key != "" {
		return key
	}

	return envCfg.GetString(EnvGeminiAPIKey)
}
