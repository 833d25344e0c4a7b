package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix            = "ZAPLANUJ"
	defaultHTTPAddress   = "0.0.0.0:8080"
	defaultDatabasePath  = "zaplanuj.db"
	defaultLogLevel      = "info"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-3.5-turbo"
)

// AppConfig captures runtime configuration for the API server. OpenAIAPIKey
// may be empty: the suggestion generator then serves static fallbacks only.
type AppConfig struct {
	HTTPAddress   string
	DatabasePath  string
	LogLevel      string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("openai.base_url", defaultOpenAIBaseURL)
	configViper.SetDefault("openai.model", defaultOpenAIModel)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:   configViper.GetString("http.address"),
		DatabasePath:  configViper.GetString("database.path"),
		LogLevel:      configViper.GetString("log.level"),
		OpenAIAPIKey:  configViper.GetString("openai.api_key"),
		OpenAIBaseURL: configViper.GetString("openai.base_url"),
		OpenAIModel:   configViper.GetString("openai.model"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.OpenAIBaseURL) == "" {
		return fmt.Errorf("openai.base_url is required")
	}
	return nil
}
