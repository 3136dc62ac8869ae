package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"midnightscout/cmd/scout/shell"
	"midnightscout/cmd/scout/ui"
	"midnightscout/internal/cartography"
	"midnightscout/internal/cartography/termmap"
	"midnightscout/internal/config"
	"midnightscout/internal/logging"
	"midnightscout/internal/search"
	"midnightscout/internal/tiles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	industry string
	city     string
	noMap    bool
)

// loadConfig reads and validates the config file.
func loadConfig() (*config.Config, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, path, nil
}

// mapSetup translates the map config into the layer and mount options.
func mapSetup(m config.MapConfig) (tiles.Layer, cartography.Options) {
	layer := tiles.Layer{
		URLTemplate: m.TileURL,
		Subdomains:  m.Subdomains,
		Attribution: m.Attribution,
		MaxZoom:     m.MaxZoom,
	}
	return layer, cartography.Options{
		Center:      cartography.LatLng{Lat: m.CenterLat, Lng: m.CenterLng},
		Zoom:        m.Zoom,
		Layer:       layer,
		ZoomControl: cartography.ControlPosition(m.ZoomControl),
	}
}

// newSearcher builds a Gemini client from cfg. The --api-key flag outranks the
// file, so a reload cannot replace it.
func newSearcher(cfg *config.Config) search.Searcher {
	return search.NewClient(effectiveKey(cfg.Gemini.APIKey), search.WithModel(cfg.Gemini.Model))
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logging.Initialize(cfg.Logging.Options(filepath.Dir(path), verbose)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.CloseAll()
	logging.Boot("scout starting; config %s", path)

	styles := ui.NewStyles(ui.ThemeByName(cfg.UI.Theme))
	layer, mapOpts := mapSetup(cfg.Map)

	opts := shell.Options{
		Searcher:    newSearcher(cfg),
		Rekey:       newSearcher,
		Styles:      styles,
		Map:         mapOpts,
		ExportDir:   cfg.Export.Directory,
		Industry:    industry,
		City:        city,
		TileTimeout: cfg.Timeouts.TileBatch,
	}

	if cfg.Map.Enabled && !noMap {
		palette := termmap.DarkPalette()
		if !styles.Theme.IsDark {
			palette = termmap.LightPalette()
		}
		engineOpts := []termmap.Option{
			termmap.WithPalette(palette),
			termmap.WithPixelScale(cfg.Map.PixelScale),
		}

		var engine *termmap.Engine
		if cfg.Map.Tiles {
			fetcher := tiles.NewFetcher(layer,
				tiles.WithUserAgent(cfg.Map.UserAgent),
				tiles.WithHTTPClient(&http.Client{Timeout: cfg.Timeouts.Tile}),
			)
			engine = termmap.New(fetcher, engineOpts...)
			opts.Tiles = fetcher
		} else {
			engine = termmap.New(nil, engineOpts...)
		}
		opts.Engine = engine
	}

	program := tea.NewProgram(shell.New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		err := config.Watch(ctx, path, func(c *config.Config, err error) {
			if err == nil {
				err = c.Validate()
			}
			if err != nil {
				program.Send(shell.ConfigReloadedMsg{Err: err})
				return
			}
			program.Send(shell.ConfigReloadedMsg{Config: c})
		})
		if err != nil {
			logging.ConfigWarn("config watch stopped: %v", err)
		}
	}()

	_, err = program.Run()
	logging.Boot("scout exiting")
	return err
}
