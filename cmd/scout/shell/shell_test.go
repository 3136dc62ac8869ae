package shell

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"midnightscout/cmd/scout/ui"
	"midnightscout/internal/cartography"
	"midnightscout/internal/config"
	"midnightscout/internal/leads"
	"midnightscout/internal/search"
	"midnightscout/internal/state"
	"midnightscout/internal/tiles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeSearcher struct {
	mu      sync.Mutex
	calls   int
	results []leads.Business
	err     error

	deadlined      bool
	industry, city string
}

func (f *fakeSearcher) Search(ctx context.Context, industry, city string) ([]leads.Business, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.industry, f.city = industry, city
	if _, ok := ctx.Deadline(); ok {
		f.deadlined = true
	}
	return f.results, f.err
}

func (f *fakeSearcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type stubEngine struct {
	width, height int
	markers       map[cartography.MarkerID]cartography.Marker
	next          cartography.MarkerID
	opened        []cartography.MarkerID
	flights       int
	zoom          float64
	pans          int
	clickTitle    string
}

func newStubEngine() *stubEngine {
	return &stubEngine{markers: make(map[cartography.MarkerID]cartography.Marker)}
}

func (s *stubEngine) CreateMap(cartography.MapOptions) error { return nil }
func (s *stubEngine) AddTileLayer(tiles.Layer) {}
func (s *stubEngine) AddZoomControl(cartography.ControlPosition) {}
func (s *stubEngine) RemoveMarker(id cartography.MarkerID) { delete(s.markers, id) }
func (s *stubEngine) OpenPopup(id cartography.MarkerID) { s.opened = append(s.opened, id) }
func (s *stubEngine) FitBounds(cartography.Bounds, cartography.FitOptions) {}
func (s *stubEngine) Resize(w, h int) { s.width, s.height = w, h }
func (s *stubEngine) Pan(int, int) { s.pans++ }
func (s *stubEngine) ZoomBy(d float64) { s.zoom += d }
func (s *stubEngine) ClosePopup() {}
func (s *stubEngine) Step() bool { return false }
func (s *stubEngine) Animating() bool { return false }
func (s *stubEngine) NeededTiles() []tiles.Coord { return nil }

func (s *stubEngine) AddMarker(m cartography.Marker) (cartography.MarkerID, error) {
	s.next++
	s.markers[s.next] = m
	return s.next, nil
}

func (s *stubEngine) SetMarkerIcon(id cartography.MarkerID, icon cartography.Icon) {
	m := s.markers[id]
	m.Icon = icon
	s.markers[id] = m
}

func (s *stubEngine) FlyTo(cartography.LatLng, float64, cartography.FlyOptions) { s.flights++ }

func (s *stubEngine) Render() string {
	row := strings.Repeat(" ", s.width)
	rows := make([]string, s.height)
	for i := range rows {
		rows[i] = row
	}
	return strings.Join(rows, "\n")
}

func (s *stubEngine) Click(int, int) bool {
	for _, m := range s.markers {
		if m.Popup.Title == s.clickTitle && m.OnClick != nil {
			m.OnClick()
			return true
		}
	}
	return false
}

func (s *stubEngine) highlighted() []string {
	var out []string
	for _, m := range s.markers {
		if m.Icon.Highlighted {
			out = append(out, m.Popup.Title)
		}
	}
	return out
}

// --- helpers ---

func austinDentists() []leads.Business {
	mk := func(id, name string, rating float64) leads.Business {
		return leads.Business{
			ID:         id,
			Name:       name,
			Address:    id + " Congress Ave, Austin, TX",
			Rating:     rating,
			Website:    "N/A",
			Lat:        30.26 + float64(len(id))*0.001,
			Lng:        -97.74,
			Issues:     []string{"No online booking"},
			SalesPitch: "Let patients book online.",
		}
	}
	return []leads.Business{
		mk("1", "Bright Smiles", 4.8),
		mk("2", "Lone Star Dental", 4.2),
		mk("3", "Capitol Family Dentistry", 3.9),
		mk("4", "Eastside Dental", 4.5),
		mk("5", "Barton Creek Dental", 2.8),
		mk("6", "Mueller Smiles", 4.0),
		mk("7", "Zilker Dental Care", 3.5),
	}
}

func newTestModel(t *testing.T, s search.Searcher, engine MapEngine, mut ...func(*Options)) Model {
	t.Helper()
	opts := Options{
		Searcher:  s,
		Styles:    ui.NewStyles(ui.DarkTheme()),
		Engine:    engine,
		Industry:  "Dentist",
		City:      "Austin",
		ExportDir: t.TempDir(),
		Now:       func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) },
	}
	for _, f := range mut {
		f(&opts)
	}
	m := New(opts)
	return step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

// collect runs cmd and returns the messages it produced, expanding batches.
// Commands that wait on timers longer than the deadline are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(time.Second):
		return nil
	}
}

// step applies msg and feeds back search and export results.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for _, out := range collect(cmd) {
		switch out.(type) {
		case searchResultMsg, exportDoneMsg:
			m = step(t, m, out)
		}
	}
	return m
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

func screen(m Model) string { return ansi.Strip(m.View()) }

func searched(t *testing.T, s *fakeSearcher, engine MapEngine) Model {
	t.Helper()
	m := newTestModel(t, s, engine)
	m = step(t, m, enter)
	require.Len(t, m.App().Businesses, 7)
	return m
}

func focusListPane(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = m.setFocusModel(focusList)
	return m
}

func (m Model) setFocusModel(f focusArea) (Model, tea.Cmd) {
	next, cmd := m.setFocus(f)
	return next.(Model), cmd
}

// --- tests ---

func TestSearchThenFilter_NoRefetch(t *testing.T) {
	s := &fakeSearcher{results: austinDentists()}
	m := searched(t, s, newStubEngine())
	assert.Contains(t, screen(m), "7 leads found")

	m = focusListPane(t, m)
	m = step(t, m, keyRunes("f"))
	require.True(t, m.App().ShowFilters)
	m = step(t, m, keyRunes("3"))

	assert.Equal(t, 4.0, m.App().Filters.MinRating)
	out := screen(m)
	assert.Contains(t, out, "4 leads found")
	assert.Contains(t, out, "Bright Smiles")
	assert.NotContains(t, out, "Barton Creek Dental")
	assert.Equal(t, 1, s.Calls(), "filtering never re-runs the search")
}

func TestFilterPrunesMarkers(t *testing.T) {
	engine := newStubEngine()
	m := searched(t, &fakeSearcher{results: austinDentists()}, engine)
	assert.Len(t, engine.markers, 7)

	m = focusListPane(t, m)
	m = step(t, m, keyRunes("f"))
	step(t, m, keyRunes("4"))
	assert.Len(t, engine.markers, 2, "rating ≥ 4.5 leaves two markers")
}

func TestSubmit_DisabledWithEmptyInputs(t *testing.T) {
	s := &fakeSearcher{results: austinDentists()}
	m := newTestModel(t, s, nil, func(o *Options) { o.City = "" })

	m = step(t, m, enter)
	assert.False(t, m.App().Loading)
	assert.Zero(t, s.Calls())
	assert.Contains(t, screen(m), ui.EmptyListText[:20])
}

func TestSubmit_TypedInputs(t *testing.T) {
	s := &fakeSearcher{results: austinDentists()[:2]}
	m := newTestModel(t, s, nil, func(o *Options) { o.Industry, o.City = "", "" })

	m = step(t, m, keyRunes("Plumber"))
	m = step(t, m, tab)
	m = step(t, m, keyRunes("Denver"))
	assert.Equal(t, "Plumber", m.App().Industry)
	assert.Equal(t, "Denver", m.App().City)

	m = step(t, m, enter)
	assert.Equal(t, 1, s.Calls())
	assert.Contains(t, screen(m), "2 leads found")
}

func TestSearchFailure_ShowsModal(t *testing.T) {
	s := &fakeSearcher{err: errors.New("403 PERMISSION_DENIED")}
	m := newTestModel(t, s, nil)

	m = step(t, m, enter)
	assert.Equal(t, state.FailureNotice, m.App().Notice)
	assert.Empty(t, m.App().Businesses)
	assert.False(t, m.App().Loading)
	assert.Contains(t, screen(m), "Failed to fetch leads")

	m = step(t, m, keyRunes("f"))
	assert.False(t, m.App().ShowFilters, "keys are swallowed while the notice is up")

	m = step(t, m, enter)
	assert.Empty(t, m.App().Notice)
	assert.Contains(t, screen(m), "0 leads found")
}

func TestSearch_NilSearcherReportsFailure(t *testing.T) {
	m := newTestModel(t, nil, nil)
	m = step(t, m, enter)
	assert.Equal(t, state.FailureNotice, m.App().Notice)
	assert.ErrorIs(t, m.App().LastErr, search.ErrMissingCredential)
}

func TestSearch_StaleResultDropped(t *testing.T) {
	m := newTestModel(t, &fakeSearcher{}, nil)

	next, _ := m.Update(enter)
	m = next.(Model)
	require.True(t, m.App().Loading)
	token := m.App().Token()

	m = step(t, m, searchResultMsg{token: token + 7, businesses: austinDentists()})
	assert.True(t, m.App().Loading)
	assert.Empty(t, m.App().Businesses)

	m = step(t, m, searchResultMsg{token: token, businesses: austinDentists()[:3]})
	assert.False(t, m.App().Loading)
	assert.Len(t, m.App().Businesses, 3)
}

func TestSelectFromList_HighlightsOneMarker(t *testing.T) {
	engine := newStubEngine()
	m := searched(t, &fakeSearcher{results: austinDentists()}, engine)
	m = focusListPane(t, m)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = step(t, m, enter)

	require.NotNil(t, m.App().Selected)
	assert.Equal(t, "2", m.App().SelectedID())
	assert.Equal(t, []string{"Lone Star Dental"}, engine.highlighted())
	assert.Equal(t, 1, engine.flights)

	out := screen(m)
	assert.Contains(t, out, ui.DetailsLabel)
	assert.Contains(t, out, "Let patients book online.")

	m = step(t, m, enter)
	assert.Equal(t, 1, engine.flights, "re-selecting the same lead is a no-op")
}

func TestPopup_StaleRequestIgnored(t *testing.T) {
	engine := newStubEngine()
	m := searched(t, &fakeSearcher{results: austinDentists()}, engine)
	visible := m.App().Filtered()

	next, _ := m.selectBusiness(visible[0], "list")
	m = next.(Model)
	first := m.popup
	next, _ = m.selectBusiness(visible[3], "list")
	m = next.(Model)
	second := m.popup
	require.NotEqual(t, first.Token, second.Token)

	m = step(t, m, popupDueMsg{req: first})
	assert.Empty(t, engine.opened, "superseded popup never opens")

	step(t, m, popupDueMsg{req: second})
	require.Len(t, engine.opened, 1)
	assert.Equal(t, "Eastside Dental", engine.markers[engine.opened[0]].Popup.Title)
}

func TestMapClick_SelectsLead(t *testing.T) {
	engine := newStubEngine()
	m := searched(t, &fakeSearcher{results: austinDentists()}, engine)
	engine.clickTitle = "Capitol Family Dentistry"

	m = step(t, m, tea.MouseMsg{
		X:      m.layout.SidebarWidth() + 5,
		Y:      ui.HeaderHeight + 4,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	})
	assert.Equal(t, "3", m.App().SelectedID())
	assert.Equal(t, focusMap, m.focus)
	assert.Equal(t, []string{"Capitol Family Dentistry"}, engine.highlighted())
	assert.Equal(t, 2, m.cursor, "list cursor follows a map selection")
}

func TestListClick_SelectsCard(t *testing.T) {
	engine := newStubEngine()
	m := searched(t, &fakeSearcher{results: austinDentists()}, engine)

	top := ui.HeaderHeight + lipgloss.Height(m.sidebarTop())
	m = step(t, m, tea.MouseMsg{X: 3, Y: top + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Equal(t, "1", m.App().SelectedID())
	assert.Equal(t, focusList, m.focus)
}

func TestMapKeys(t *testing.T) {
	engine := newStubEngine()
	m := searched(t, &fakeSearcher{results: austinDentists()}, engine)
	m, _ = m.setFocusModel(focusMap)

	m = step(t, m, keyRunes("+"))
	m = step(t, m, keyRunes("+"))
	m = step(t, m, keyRunes("-"))
	step(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 1.0, engine.zoom)
	assert.Equal(t, 1, engine.pans)
}

func TestExport_WritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	s := &fakeSearcher{results: austinDentists()}
	m := newTestModel(t, s, nil, func(o *Options) { o.ExportDir = dir })
	m = step(t, m, enter)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	files, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "leads-dentist-austin-20250314-093000.xlsx", filepath.Base(files[0]))
	assert.Contains(t, m.flash, "Exported 7 leads")
}

func TestExport_NothingToExport(t *testing.T) {
	m := newTestModel(t, &fakeSearcher{}, nil)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	assert.Equal(t, errNothingToExport.Error(), m.flash)
}

func TestConfigReload_Rekeys(t *testing.T) {
	old := &fakeSearcher{results: austinDentists()}
	fresh := &fakeSearcher{results: austinDentists()[:1]}
	var got *config.Config
	m := newTestModel(t, old, nil, func(o *Options) {
		o.Rekey = func(cfg *config.Config) search.Searcher {
			got = cfg
			return fresh
		}
	})

	cfg := config.DefaultConfig()
	cfg.Gemini.APIKey = "rotated"
	cfg.Gemini.Model = "gemini-2.5-pro"
	m = step(t, m, ConfigReloadedMsg{Config: cfg})
	require.NotNil(t, got)
	assert.Equal(t, "rotated", got.Gemini.APIKey)
	assert.Equal(t, "gemini-2.5-pro", got.Gemini.Model)
	assert.Equal(t, "Config reloaded", m.flash)

	m = step(t, m, ConfigReloadedMsg{Err: errors.New("bad yaml")})
	m = step(t, m, enter)
	assert.Zero(t, old.Calls())
	assert.Equal(t, 1, fresh.Calls())
	assert.Len(t, m.App().Businesses, 1)
}

func TestSearch_NoDeadline(t *testing.T) {
	s := &fakeSearcher{results: austinDentists()}
	m := newTestModel(t, s, nil)
	m = step(t, m, enter)

	require.Equal(t, 1, s.Calls())
	assert.False(t, s.deadlined, "interactive searches wait for the reply")
	assert.False(t, m.App().Loading)
	assert.Len(t, m.App().Businesses, 7)
}

func TestSubmit_WhitespaceInputsAreBlank(t *testing.T) {
	s := &fakeSearcher{results: austinDentists()}
	m := newTestModel(t, s, nil, func(o *Options) { o.City = "   " })
	m = step(t, m, enter)
	assert.Zero(t, s.Calls(), "whitespace-only city must not search")
	assert.False(t, m.App().Loading)

	m = newTestModel(t, s, nil, func(o *Options) {
		o.Industry = "  Dentist "
		o.City = " Austin  "
	})
	m = step(t, m, enter)
	require.Equal(t, 1, s.Calls())
	assert.Equal(t, "Dentist", s.industry)
	assert.Equal(t, "Austin", s.city)
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, &fakeSearcher{}, nil)
	m = focusListPane(t, m)

	m = step(t, m, keyRunes("?"))
	require.True(t, m.showHelp)
	assert.Contains(t, screen(m), "Keyboard")

	m = step(t, m, keyRunes("?"))
	assert.False(t, m.showHelp)
}

func TestFocusCycle(t *testing.T) {
	m := newTestModel(t, &fakeSearcher{}, newStubEngine())
	var order []focusArea
	for i := 0; i < 4; i++ {
		m = step(t, m, tab)
		order = append(order, m.focus)
	}
	assert.Equal(t, []focusArea{focusCity, focusList, focusMap, focusIndustry}, order)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, focusMap, m.focus)
}

func TestFocusCycle_SkipsHiddenMap(t *testing.T) {
	m := newTestModel(t, &fakeSearcher{}, newStubEngine())
	m = step(t, m, tea.WindowSizeMsg{Width: 50, Height: 30})
	require.False(t, m.layout.ShowMap)

	m, _ = m.setFocusModel(focusList)
	m = step(t, m, tab)
	assert.Equal(t, focusIndustry, m.focus)
	m = step(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, focusList, m.focus)
}

func TestView_MapPaneSized(t *testing.T) {
	engine := newStubEngine()
	m := newTestModel(t, &fakeSearcher{}, engine)
	assert.Equal(t, 75, engine.width)
	assert.Equal(t, 37, engine.height)

	lines := strings.Split(m.View(), "\n")
	assert.Len(t, lines, 40)
	for _, l := range lines {
		assert.LessOrEqual(t, lipgloss.Width(l), 120)
	}
}
