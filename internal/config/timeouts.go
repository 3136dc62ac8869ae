package config

import (
	"fmt"
	"time"
)

// TimeoutsConfig holds the time budgets for network work.
//
// The shortest timeout in a chain wins: a search context of 90s cancels the
// model call even if the HTTP client would wait longer.
type TimeoutsConfig struct {
	// Search bounds one GenerateContent call, grounding tools included.
	Search time.Duration `yaml:"search"`

	// Tile bounds a single basemap tile download.
	Tile time.Duration `yaml:"tile"`

	// TileBatch bounds one batch of tile downloads started by a redraw.
	TileBatch time.Duration `yaml:"tile_batch"`
}

// DefaultTimeouts returns the default time budgets.
func DefaultTimeouts() TimeoutsConfig {
	return TimeoutsConfig{
		Search:    90 * time.Second,
		Tile:      15 * time.Second,
		TileBatch: 45 * time.Second,
	}
}

// Validate checks that every budget is positive.
func (t TimeoutsConfig) Validate() error {
	for name, d := range map[string]time.Duration{
		"timeouts.search":     t.Search,
		"timeouts.tile":       t.Tile,
		"timeouts.tile_batch": t.TileBatch,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}
