// Package config loads and validates application configuration from a YAML
// file, with environment variable overrides for credentials so secrets can
// stay out of config files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agentchat/agentchat/llmwire"
)

// Environment variables recognized as overrides.
const (
	EnvProviderKey    = "AGENTCHAT_API_KEY"
	EnvSearchKey      = "AGENTCHAT_SEARCH_API_KEY"
	EnvSearchEngineID = "AGENTCHAT_SEARCH_ENGINE_ID"
	EnvListenAddr     = "AGENTCHAT_LISTEN"
)

// ProviderConfig selects the LLM provider and model.
type ProviderConfig struct {
	ID     string `yaml:"id"`
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key"`
}

// SearchConfig holds Google Custom Search credentials.
type SearchConfig struct {
	APIKey   string `yaml:"api_key"`
	EngineID string `yaml:"engine_id"`
}

// GatewayConfig configures the websocket gateway.
type GatewayConfig struct {
	Listen          string        `yaml:"listen"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoopConfig tunes the reasoning loop.
type LoopConfig struct {
	MaxIterations int `yaml:"max_iterations"`
}

// Config is the root application configuration.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Search   SearchConfig   `yaml:"search"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Loop     LoopConfig     `yaml:"loop"`
}

// Default returns the baseline configuration applied before file and
// environment values.
func Default() *Config {
	return &Config{
		Provider: ProviderConfig{ID: llmwire.ProviderOpenAI},
		Gateway: GatewayConfig{
			Listen:          "127.0.0.1:8089",
			ShutdownTimeout: 5 * time.Second,
		},
		Loop: LoopConfig{MaxIterations: 10},
	}
}

// Load reads configuration from path, applies environment overrides, and
// validates the result. An empty path skips the file and uses defaults plus
// the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvProviderKey); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv(EnvSearchKey); v != "" {
		c.Search.APIKey = v
	}
	if v := os.Getenv(EnvSearchEngineID); v != "" {
		c.Search.EngineID = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.Gateway.Listen = v
	}
}

// Validate checks the provider against the catalog and fills in the default
// model when none is set.
func (c *Config) Validate() error {
	info := llmwire.GetProviderInfo(c.Provider.ID)
	if info == nil {
		return fmt.Errorf("unknown provider %q", c.Provider.ID)
	}
	if c.Provider.Model == "" {
		c.Provider.Model = llmwire.DefaultModelFor(c.Provider.ID)
	} else {
		found := false
		for _, m := range info.Models {
			if m == c.Provider.Model {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("model %q is not offered by provider %q", c.Provider.Model, c.Provider.ID)
		}
	}
	if c.Loop.MaxIterations <= 0 {
		return fmt.Errorf("loop.max_iterations must be positive, got %d", c.Loop.MaxIterations)
	}
	if c.Gateway.Listen == "" {
		return fmt.Errorf("gateway.listen must not be empty")
	}
	return nil
}

// ProviderWire converts the provider section into the adapter configuration.
func (c *Config) ProviderWire() llmwire.ProviderConfig {
	return llmwire.ProviderConfig{
		Provider:   c.Provider.ID,
		Model:      c.Provider.Model,
		Credential: c.Provider.APIKey,
	}
}
