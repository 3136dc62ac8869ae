package shell

import (
	"context"
	"errors"
	"strings"
	"time"

	"midnightscout/internal/cartography"
	"midnightscout/internal/export"
	"midnightscout/internal/leads"
	"midnightscout/internal/logging"
	"midnightscout/internal/search"
	"midnightscout/internal/tiles"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

type searchResultMsg struct {
	token      uint64
	businesses []leads.Business
	err        error
}

type popupDueMsg struct {
	req cartography.PopupRequest
}

type frameTickMsg time.Time

type tilesLoadedMsg struct {
	result tiles.Result
}

type exportDoneMsg struct {
	path  string
	count int
	err   error
}

// searchCmd runs one search off the update loop. The token travels with the
// result so late replies can be told apart.
// searchCmd runs one search without a deadline; the request token discards
// replies that arrive after a newer submit.
func searchCmd(s search.Searcher, token uint64, industry, city string) tea.Cmd {
	return func() tea.Msg {
		if s == nil {
			return searchResultMsg{token: token, err: search.ErrMissingCredential}
		}
		bs, err := s.Search(context.Background(), industry, city)
		return searchResultMsg{token: token, businesses: bs, err: err}
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameTickMsg(t) })
}

// requestTiles claims the tiles the current view needs and fetches them.
func (m Model) requestTiles() tea.Cmd {
	if m.tiles == nil || !m.hasMap() {
		return nil
	}
	coords := m.tiles.Claim(m.engine.NeededTiles())
	if len(coords) == 0 {
		return nil
	}
	fetcher, timeout := m.tiles, m.opts.TileTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return tilesLoadedMsg{result: fetcher.Fetch(ctx, coords)}
	}
}

var errNothingToExport = errors.New("no leads to export")

// export writes the visible leads to a new spreadsheet in the export directory.
func (m Model) export() (tea.Model, tea.Cmd) {
	visible := m.app.Filtered()
	if len(visible) == 0 {
		m.flash = errNothingToExport.Error()
		return m, nil
	}
	path := export.FileName(m.opts.ExportDir, strings.TrimSpace(m.app.Industry), strings.TrimSpace(m.app.City), m.opts.Now())
	m.flash = "Exporting…"
	return m, func() tea.Msg {
		err := export.WriteXLSX(path, visible)
		return exportDoneMsg{path: path, count: len(visible), err: err}
	}
}

func renderHelp(markdown string, dark bool, width int) string {
	style := "light"
	if dark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		logging.UIError("help renderer: %v", err)
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		logging.UIError("help render: %v", err)
		return markdown
	}
	return out
}
