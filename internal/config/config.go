package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all MidnightScout configuration.
type Config struct {
	// Gemini access
	Gemini GeminiConfig `yaml:"gemini"`

	// Map pane
	Map MapConfig `yaml:"map"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Lead export
	Export ExportConfig `yaml:"export"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Network time budgets
	Timeouts TimeoutsConfig `yaml:"timeouts"`
}

// GeminiConfig configures the lead search model.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Theme string `yaml:"theme"` // "dark" or "light"
}

// ExportConfig configures where exported lead sheets are written.
type ExportConfig struct {
	Directory string `yaml:"directory"`
}

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model: DefaultModel,
		},
		Map: DefaultMapConfig(),
		UI: UIConfig{
			Theme: "dark",
		},
		Export: ExportConfig{
			Directory: ".",
		},
		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},
		Timeouts: DefaultTimeouts(),
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
// GEMINI_API_KEY wins over the generic API_KEY.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if model := os.Getenv("SCOUT_MODEL"); model != "" {
		c.Gemini.Model = model
	}
	if os.Getenv("SCOUT_DARK_MODE") == "0" {
		c.UI.Theme = "light"
	}
}

// Validate validates the configuration.
// A missing API key is not an error here; every search checks it instead.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Gemini.Model) == "" {
		return fmt.Errorf("gemini.model must not be empty")
	}
	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("invalid ui.theme: %q (valid: dark, light)", c.UI.Theme)
	}
	if err := c.Map.Validate(); err != nil {
		return err
	}
	return c.Timeouts.Validate()
}

// Redacted returns a copy safe to print, with the API key masked.
func (c *Config) Redacted() *Config {
	cp := *c
	if k := cp.Gemini.APIKey; k != "" {
		if len(k) > 4 {
			cp.Gemini.APIKey = strings.Repeat("*", len(k)-4) + k[len(k)-4:]
		} else {
			cp.Gemini.APIKey = "****"
		}
	}
	return &cp
}
