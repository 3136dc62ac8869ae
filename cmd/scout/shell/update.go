package shell

import (
	"fmt"
	"strings"
	"time"

	"midnightscout/cmd/scout/ui"
	"midnightscout/internal/cartography"
	"midnightscout/internal/leads"
	"midnightscout/internal/logging"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.requestTiles())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, m.requestTiles()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case searchResultMsg:
		return m.handleSearchResult(msg)

	case popupDueMsg:
		if m.mapView.OpenPopup(msg.req) {
			logging.MapDebug("popup opened for %s", msg.req.BusinessID)
		}
		return m, nil

	case frameTickMsg:
		return m.handleFrame()

	case tilesLoadedMsg:
		if msg.result.Loaded > 0 {
			logging.TilesDebug("%d tiles ready", msg.result.Loaded)
		}
		return m, nil

	case exportDoneMsg:
		logging.Audit().Export(msg.path, msg.count, msg.err)
		if msg.err != nil {
			logging.ExportError("export failed: %v", msg.err)
			m.flash = "Export failed: " + msg.err.Error()
		} else {
			m.flash = fmt.Sprintf("Exported %d leads to %s", msg.count, msg.path)
		}
		return m, nil

	case ConfigReloadedMsg:
		if msg.Err != nil {
			logging.ConfigWarn("config reload failed: %v", msg.Err)
			return m, nil
		}
		if m.opts.Rekey != nil && msg.Config != nil {
			m.opts.Searcher = m.opts.Rekey(msg.Config)
			logging.Config("config reloaded; next search uses model %s", msg.Config.Gemini.Model)
			m.flash = "Config reloaded"
		}
		return m, nil

	case spinner.TickMsg:
		if !m.app.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusIndustry:
		m.industry, cmd = m.industry.Update(msg)
	case focusCity:
		m.city, cmd = m.city.Update(msg)
	}
	m.app.SetIndustry(m.industry.Value())
	m.app.SetCity(m.city.Value())
	return m, cmd
}

func (m Model) typing() bool {
	return m.focus == focusIndustry || m.focus == focusCity
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// The failure notice is modal.
	if m.app.Notice != "" {
		if key.Matches(msg, m.keys.Dismiss) {
			m.app.DismissNotice()
		}
		return m, nil
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.Type == tea.KeyEsc || msg.String() == "q" {
			m.showHelp = false
			return m, nil
		}
		var cmd tea.Cmd
		m.helpView, cmd = m.helpView.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Focus):
		return m.cycleFocus(1)
	case key.Matches(msg, m.keys.Back):
		return m.cycleFocus(-1)
	case key.Matches(msg, m.keys.Export):
		return m.export()
	}

	if m.typing() {
		if msg.Type == tea.KeyEnter {
			return m.submit()
		}
		return m.updateInputs(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.openHelp()
		return m, nil
	case key.Matches(msg, m.keys.Filter):
		m.app.ToggleFilters()
		m.resize(m.width, m.height)
		return m, nil
	case m.app.ShowFilters && key.Matches(msg, m.keys.Options):
		idx := int(msg.String()[0] - '1')
		return m.setFilter(float64(leads.RatingOptions[idx]))
	}

	switch m.focus {
	case focusList:
		return m.handleListKey(msg)
	case focusMap:
		return m.handleMapKey(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.app.Filtered()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.scrollToCard(m.cursor)
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
		m.scrollToCard(m.cursor)
	case key.Matches(msg, m.keys.Select):
		if m.cursor < len(visible) {
			return m.selectBusiness(visible[m.cursor], "list")
		}
	case m.app.ShowFilters && key.Matches(msg, m.keys.Left):
		return m.cycleFilter(-1)
	case m.app.ShowFilters && key.Matches(msg, m.keys.Right):
		return m.cycleFilter(1)
	default:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleMapKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.hasMap() {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Up):
		m.engine.Pan(0, -2)
	case key.Matches(msg, m.keys.Down):
		m.engine.Pan(0, 2)
	case key.Matches(msg, m.keys.Left):
		m.engine.Pan(-4, 0)
	case key.Matches(msg, m.keys.Right):
		m.engine.Pan(4, 0)
	case key.Matches(msg, m.keys.ZoomIn):
		m.engine.ZoomBy(1)
	case key.Matches(msg, m.keys.ZoomOut):
		m.engine.ZoomBy(-1)
	case msg.Type == tea.KeyEsc:
		m.engine.ClosePopup()
		return m, nil
	default:
		return m, nil
	}
	return m, m.requestTiles()
}

// cycleFocus moves focus by step, skipping the map pane when it is hidden.
func (m Model) cycleFocus(step int) (tea.Model, tea.Cmd) {
	next := func(f focusArea) focusArea {
		return focusArea((int(f) + int(focusCount) + step) % int(focusCount))
	}
	f := next(m.focus)
	if f == focusMap && !m.hasMap() {
		f = next(f)
	}
	return m.setFocus(f)
}

func (m Model) setFocus(f focusArea) (tea.Model, tea.Cmd) {
	m.focus = f
	m.industry.Blur()
	m.city.Blur()
	switch f {
	case focusIndustry:
		return m, m.industry.Focus()
	case focusCity:
		return m, m.city.Focus()
	}
	return m, nil
}

// submit starts a search if the form allows it.
func (m Model) submit() (tea.Model, tea.Cmd) {
	m.app.SetIndustry(m.industry.Value())
	m.app.SetCity(m.city.Value())

	token, ok := m.app.StartSearch()
	if !ok {
		return m, nil
	}
	industry := strings.TrimSpace(m.app.Industry)
	city := strings.TrimSpace(m.app.City)
	logging.UI("search #%d started: %s in %s", token, industry, city)
	logging.Audit().SearchStart(industry, city)

	m.searchStarted = m.opts.Now()
	m.cursor = 0
	m.flash = ""
	m.mapView.SetSelection(nil)
	m.popup = cartography.PopupRequest{}
	m.mapView.SyncMarkers(m.app.Filtered(), nil)
	m.refreshList()

	return m, tea.Batch(
		searchCmd(m.opts.Searcher, token, industry, city),
		m.spinner.Tick,
	)
}

func (m Model) handleSearchResult(msg searchResultMsg) (tea.Model, tea.Cmd) {
	took := m.opts.Now().Sub(m.searchStarted)
	if msg.err != nil {
		if !m.app.SearchFailed(msg.token, msg.err) {
			logging.UIDebug("stale failure for search #%d dropped", msg.token)
			return m, nil
		}
		logging.SearchError("search #%d failed: %v", msg.token, msg.err)
		logging.Audit().SearchError(msg.err, took)
		m.refreshList()
		return m, nil
	}

	if !m.app.SearchSucceeded(msg.token, msg.businesses) {
		logging.UIDebug("stale result for search #%d dropped", msg.token)
		return m, nil
	}
	logging.UI("search #%d returned %d leads", msg.token, len(m.app.Businesses))
	logging.Audit().SearchComplete(len(m.app.Businesses), took)

	m.cursor = 0
	m.mapView.SyncMarkers(m.app.Filtered(), m.app.Selected)
	m.refreshList()
	m.list.GotoTop()
	return m, m.requestTiles()
}

func (m Model) setFilter(minRating float64) (tea.Model, tea.Cmd) {
	if m.app.Filters.MinRating == minRating {
		return m, nil
	}
	m.app.SetFilter(minRating)
	visible := m.app.Filtered()
	logging.Audit().FilterSet(minRating, len(visible))

	if m.cursor >= len(visible) {
		m.cursor = max(len(visible)-1, 0)
	}
	m.mapView.SyncMarkers(visible, m.app.Selected)
	m.refreshList()
	return m, m.requestTiles()
}

func (m Model) cycleFilter(step int) (tea.Model, tea.Cmd) {
	n := len(leads.RatingOptions)
	idx := leads.OptionIndex(m.app.Filters.MinRating)
	if idx < 0 {
		idx = 0
	}
	idx = ((idx+step)%n + n) % n
	return m.setFilter(float64(leads.RatingOptions[idx]))
}

// selectBusiness makes b the selection. Re-selecting the current lead does
// nothing.
func (m Model) selectBusiness(b leads.Business, source string) (tea.Model, tea.Cmd) {
	if m.app.SelectedID() == b.ID && b.ID != "" {
		return m, nil
	}
	m.app.Select(b)
	logging.UIDebug("selected %s from %s", b.ID, source)
	logging.Audit().LeadSelected(b.ID, source)

	for i, v := range m.app.Filtered() {
		if v.ID == b.ID {
			m.cursor = i
			break
		}
	}
	m.refreshList()
	m.scrollToCard(m.cursor)

	req, ok := m.mapView.SetSelection(m.app.Selected)
	if !ok {
		return m, nil
	}
	m.popup = req
	frames := m.startFrames()
	return m, tea.Batch(
		tea.Tick(req.Delay, func(time.Time) tea.Msg { return popupDueMsg{req: req} }),
		frames,
	)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.app.Notice != "" || m.showHelp {
		return m, nil
	}
	row := msg.Y - ui.HeaderHeight
	inSidebar := msg.X < m.layout.SidebarWidth()

	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		if inSidebar {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}
		if m.hasMap() && msg.Action == tea.MouseActionPress {
			if msg.Button == tea.MouseButtonWheelUp {
				m.engine.ZoomBy(1)
			} else {
				m.engine.ZoomBy(-1)
			}
			return m, m.requestTiles()
		}
		return m, nil
	}

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if row < 0 || row >= m.layout.BodyHeight() {
		return m, nil
	}

	if inSidebar {
		top := lipgloss.Height(m.sidebarTop())
		line := row - top
		if line < 0 {
			return m, nil
		}
		idx := m.rendered.CardAt(line + m.list.YOffset)
		visible := m.app.Filtered()
		if idx < 0 || idx >= len(visible) || m.app.Loading {
			return m, nil
		}
		m.focus = focusList
		m.industry.Blur()
		m.city.Blur()
		return m.selectBusiness(visible[idx], "list")
	}

	if !m.hasMap() {
		return m, nil
	}
	m.focus = focusMap
	m.industry.Blur()
	m.city.Blur()
	col := msg.X - m.layout.SidebarWidth()
	m.pick.business = nil
	hit := m.engine.Click(col, row)
	if picked := m.pick.business; picked != nil {
		m.pick.business = nil
		return m.selectBusiness(*picked, "map")
	}
	if hit {
		return m, m.requestTiles()
	}
	return m, nil
}

func (m Model) handleFrame() (tea.Model, tea.Cmd) {
	if !m.hasMap() {
		m.ticking = false
		return m, nil
	}
	wasFlying := m.engine.Animating()
	flying := m.engine.Step()

	var cmds []tea.Cmd
	if wasFlying && !flying {
		cmds = append(cmds, m.requestTiles())
	}
	if flying || m.app.Selected != nil {
		cmds = append(cmds, frameTick())
	} else {
		m.ticking = false
	}
	return m, tea.Batch(cmds...)
}

// startFrames begins the animation tick chain unless one is running.
func (m *Model) startFrames() tea.Cmd {
	if m.ticking || !m.hasMap() {
		return nil
	}
	m.ticking = true
	return frameTick()
}

func (m *Model) refreshList() {
	width := m.layout.SidebarContentWidth()
	m.rendered = ui.RenderLeadList(m.styles, m.app.Filtered(), m.app.SelectedID(), m.app.Loading, width)
	m.list.SetContent(m.rendered.Content)
}

func (m *Model) scrollToCard(i int) {
	start := m.rendered.CardStart(i)
	if start < 0 {
		return
	}
	if start < m.list.YOffset || start >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(start)
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.layout = ui.NewLayoutConfig(width, height, m.engine != nil && m.mapView.Ready())

	side := m.layout.SidebarContentWidth()
	inputWidth := max(side-6, 8)
	m.industry.Width = inputWidth
	m.city.Width = inputWidth
	m.help.Width = width

	m.list.Width = side
	m.list.Height = max(m.layout.BodyHeight()-lipgloss.Height(m.sidebarTop()), 1)
	m.refreshList()

	m.helpView.Width = min(width-4, 90)
	m.helpView.Height = max(m.layout.BodyHeight()-2, 3)

	if m.engine != nil && m.layout.ShowMap {
		m.engine.Resize(m.layout.MapWidth(), m.layout.BodyHeight())
	}
}

func (m *Model) openHelp() {
	m.showHelp = true
	m.helpView.SetContent(renderHelp(helpMarkdown, m.styles.Theme.IsDark, m.helpView.Width))
	m.helpView.GotoTop()
}
