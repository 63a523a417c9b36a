// Package config loads the service configuration from a YAML file with
// environment-variable overrides for secrets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"listen_addr"`
	// DBPath locates the knowledge-base SQLite file.
	DBPath string `yaml:"db_path"`
	// HistoryWindow bounds retained conversation turns per session.
	HistoryWindow int `yaml:"history_window"`

	Agent    AgentConfig    `yaml:"agent"`
	Provider ProviderConfig `yaml:"provider"`
}

// AgentConfig describes the chat agent served to every session.
type AgentConfig struct {
	Name         string `yaml:"name"`
	Instructions string `yaml:"instructions"`
}

// ProviderConfig selects the remote completion capability. Kind "none"
// (or empty with no API key) leaves the service in local reasoning mode.
type ProviderConfig struct {
	// Kind is one of "openai", "gemini", "none".
	Kind string `yaml:"kind"`
	// Model names the remote model, e.g. "gpt-4o-mini".
	Model string `yaml:"model"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		ListenAddr:    ":8080",
		DBPath:        "data/fieldagent.db",
		HistoryWindow: 20,
		Agent: AgentConfig{
			Name: "fieldagent",
			Instructions: "You are an agentic assistant. You are able to reason, plan, " +
				"gather information, and analyze food security conditions using available tools. " +
				"Think before you act.",
		},
		Provider: ProviderConfig{
			Kind:      "none",
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
	}
}

// Load reads the YAML file at path, layering it over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider.Kind {
	case "", "none", "openai", "gemini":
	default:
		return fmt.Errorf("unknown provider kind %q", c.Provider.Kind)
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("history_window must be >= 0, got %d", c.HistoryWindow)
	}
	return nil
}

// APIKey resolves the provider API key from the environment. Empty means
// the remote capability is not configured.
func (c *Config) APIKey() string {
	if c.Provider.Kind == "none" || c.Provider.Kind == "" {
		return ""
	}
	return os.Getenv(c.Provider.APIKeyEnv)
}
