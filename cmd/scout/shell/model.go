// Package shell is the scout terminal application: a bubbletea model that owns
// the application state and wires the search client, the lead list and the
// map view together.
package shell

import (
	"context"
	"time"

	"midnightscout/cmd/scout/ui"
	"midnightscout/internal/cartography"
	"midnightscout/internal/config"
	"midnightscout/internal/leads"
	"midnightscout/internal/search"
	"midnightscout/internal/state"
	"midnightscout/internal/tiles"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

const (
	frameInterval = 120 * time.Millisecond

	defaultTileTimeout = 45 * time.Second
)

// MapEngine is the drawing side of the map pane. *termmap.Engine implements it.
type MapEngine interface {
	cartography.Engine
	Resize(width, height int)
	Render() string
	Click(col, row int) bool
	Pan(cols, rows int)
	ZoomBy(delta float64)
	ClosePopup()
	Step() bool
	Animating() bool
	NeededTiles() []tiles.Coord
}

// TileFetcher loads basemap tiles. *tiles.Fetcher implements it.
type TileFetcher interface {
	Claim(coords []tiles.Coord) []tiles.Coord
	Fetch(ctx context.Context, coords []tiles.Coord) tiles.Result
}

// Options configures New.
type Options struct {
	Searcher search.Searcher
	// Rekey builds a searcher from a reloaded config. Nil ignores reloads.
	Rekey func(cfg *config.Config) search.Searcher

	Styles ui.Styles
	Engine MapEngine // nil hides the map
	Tiles  TileFetcher
	Map    cartography.Options

	ExportDir   string
	Industry    string
	City        string
	TileTimeout time.Duration
	Now         func() time.Time
}

type focusArea int

const (
	focusIndustry focusArea = iota
	focusCity
	focusList
	focusMap
	focusCount
)

func (f focusArea) String() string {
	switch f {
	case focusIndustry:
		return "industry"
	case focusCity:
		return "city"
	case focusList:
		return "list"
	case focusMap:
		return "map"
	}
	return "unknown"
}

// mapPick receives marker clicks. It is shared by every copy of the Model
// because marker callbacks are bound once, at marker creation.
type mapPick struct {
	business *leads.Business
}

// Model is the bubbletea model for the scout shell.
type Model struct {
	opts   Options
	styles ui.Styles
	keys   keyMap

	app *state.App

	industry textinput.Model
	city     textinput.Model
	spinner  spinner.Model
	list     viewport.Model
	help     help.Model
	helpView viewport.Model

	engine  MapEngine
	mapView *cartography.View
	pick    *mapPick
	tiles   TileFetcher

	layout   ui.LayoutConfig
	width    int
	height   int
	focus    focusArea
	cursor   int
	rendered ui.LeadList

	showHelp bool
	flash    string
	ticking  bool
	popup    cartography.PopupRequest

	searchStarted time.Time
}

// New creates the shell model.
func New(opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TileTimeout <= 0 {
		opts.TileTimeout = defaultTileTimeout
	}
	if opts.Map == (cartography.Options{}) {
		opts.Map = cartography.DefaultOptions()
	}
	if opts.Styles.Theme == (ui.Theme{}) {
		opts.Styles = ui.DefaultStyles()
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	s := opts.Styles

	industry := textinput.New()
	industry.Placeholder = "e.g. Dentist, Plumber"
	industry.Prompt = ""
	industry.CharLimit = 80
	industry.SetValue(opts.Industry)
	industry.Focus()

	city := textinput.New()
	city.Placeholder = "e.g. Austin, TX"
	city.Prompt = ""
	city.CharLimit = 80
	city.SetValue(opts.City)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Spinner))

	app := state.New()
	app.SetIndustry(opts.Industry)
	app.SetCity(opts.City)

	m := Model{
		opts:     opts,
		styles:   s,
		keys:     defaultKeyMap(),
		app:      app,
		industry: industry,
		city:     city,
		spinner:  sp,
		list:     viewport.New(0, 0),
		help:     help.New(),
		helpView: viewport.New(0, 0),
		pick:     &mapPick{},
		tiles:    opts.Tiles,
		focus:    focusIndustry,
	}

	if opts.Engine != nil {
		m.engine = opts.Engine
		pick := m.pick
		m.mapView = cartography.MountWith(opts.Engine, opts.Map, func(b leads.Business) {
			pick.business = &b
		})
	} else {
		m.mapView = cartography.MountWith(nil, opts.Map, nil)
	}
	m.resize(ui.MinimumTerminalWidth, ui.MinimumTerminalHeight)
	return m
}

// App exposes the application state for inspection.
func (m Model) App() *state.App { return m.app }

// hasMap reports whether the map pane is shown.
func (m Model) hasMap() bool {
	return m.engine != nil && m.mapView.Ready() && m.layout.ShowMap
}

// ConfigReloadedMsg delivers a re-read config file to a running shell.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}
