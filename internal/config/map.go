package config

import "fmt"

// MapConfig configures the map pane and its basemap.
type MapConfig struct {
	Enabled     bool    `yaml:"enabled"`
	TileURL     string  `yaml:"tile_url"`
	Subdomains  string  `yaml:"subdomains"`
	Attribution string  `yaml:"attribution"`
	MaxZoom     int     `yaml:"max_zoom"`
	CenterLat   float64 `yaml:"center_lat"`
	CenterLng   float64 `yaml:"center_lng"`
	Zoom        float64 `yaml:"zoom"`
	PixelScale  float64 `yaml:"pixel_scale"`  // screen pixels represented by one half-block
	ZoomControl string  `yaml:"zoom_control"` // topleft, topright, bottomleft, bottomright
	UserAgent   string  `yaml:"user_agent"`
	Tiles       bool    `yaml:"tiles"` // fetch basemap tiles; false draws markers on a plain background
}

// DefaultMapConfig returns the CARTO dark basemap centred on the contiguous US.
func DefaultMapConfig() MapConfig {
	return MapConfig{
		Enabled:     true,
		TileURL:     "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png",
		Subdomains:  "abcd",
		Attribution: "© OpenStreetMap contributors © CARTO",
		MaxZoom:     20,
		CenterLat:   39.8283,
		CenterLng:   -98.5795,
		Zoom:        4,
		PixelScale:  8,
		ZoomControl: "bottomright",
		UserAgent:   "midnightscout/1.0",
		Tiles:       true,
	}
}

// Validate checks the map settings.
func (m MapConfig) Validate() error {
	if !m.Enabled {
		return nil
	}
	if m.MaxZoom < 1 || m.MaxZoom > 22 {
		return fmt.Errorf("map.max_zoom out of range: %d", m.MaxZoom)
	}
	if m.Zoom < 0 || m.Zoom > float64(m.MaxZoom) {
		return fmt.Errorf("map.zoom out of range: %v", m.Zoom)
	}
	if m.PixelScale <= 0 {
		return fmt.Errorf("map.pixel_scale must be positive")
	}
	switch m.ZoomControl {
	case "topleft", "topright", "bottomleft", "bottomright":
	default:
		return fmt.Errorf("invalid map.zoom_control: %q", m.ZoomControl)
	}
	if m.Tiles && m.TileURL == "" {
		return fmt.Errorf("map.tile_url required when tiles are enabled")
	}
	return nil
}
