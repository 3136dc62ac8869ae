package config

import (
	"path/filepath"

	"midnightscout/internal/logging"
)

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`      // debug, info, warn, error
	DebugMode  bool            `yaml:"debug_mode"` // Master toggle - false = warnings and errors only
	Dir        string          `yaml:"dir"`        // defaults to <config dir>/logs
	Categories map[string]bool `yaml:"categories"` // Per-category toggles
}

// LogDir resolves the log directory relative to the config directory.
func (c *LoggingConfig) LogDir(configDir string) string {
	if c.Dir == "" {
		return filepath.Join(configDir, "logs")
	}
	if filepath.IsAbs(c.Dir) {
		return c.Dir
	}
	return filepath.Join(configDir, c.Dir)
}

// Options converts the config into logging options. verbose forces debug
// logging on regardless of the file.
func (c *LoggingConfig) Options(configDir string, verbose bool) logging.Options {
	o := logging.Options{
		Dir:        c.LogDir(configDir),
		DebugMode:  c.DebugMode,
		Level:      c.Level,
		Categories: c.Categories,
	}
	if verbose {
		o.DebugMode = true
		o.Level = "debug"
	}
	return o
}
