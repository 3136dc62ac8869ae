package shell

import (
	"strings"

	"midnightscout/cmd/scout/ui"
	"midnightscout/internal/leads"

	"github.com/charmbracelet/lipgloss"
)

const (
	buttonLabel  = "Find Leads"
	loadingLabel = "Searching…"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing…"
	}

	if m.app.Notice != "" {
		modal := ui.RenderModal(m.styles, m.app.Notice, m.width)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}
	if m.showHelp {
		box := m.styles.Card.Render(m.helpView.View())
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	header := m.styles.Header.Width(m.width).MaxHeight(ui.HeaderHeight).Render(ui.Logo(m.styles))
	body := m.sidebar()
	if m.layout.ShowMap {
		pane := m.styles.MapPane.Render(m.engine.Render())
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, pane)
	}
	footer := m.styles.Footer.Width(m.width).MaxHeight(ui.FooterHeight).Render(m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.statusLine(), footer)
}

// sidebarTop is the search form above the lead list.
func (m Model) sidebarTop() string {
	s := m.styles
	width := m.layout.SidebarContentWidth()

	input := func(label string, focused bool, view string) string {
		st := s.Input
		if focused {
			st = s.InputFocused
		}
		return s.Label.Render(label) + "\n" + st.Width(max(width-2, 1)).Render(view)
	}

	button := s.Button.Render(buttonLabel)
	if m.app.Loading {
		button = s.ButtonDisabled.Render(loadingLabel)
	} else if !m.app.CanSubmit() {
		button = s.ButtonDisabled.Render(buttonLabel)
	}

	parts := []string{
		input("Industry", m.focus == focusIndustry, m.industry.View()),
		input("City", m.focus == focusCity, m.city.View()),
		button,
	}
	if m.app.ShowFilters {
		parts = append(parts, ui.RenderFilterBar(s, m.app.Filters.MinRating))
	}
	parts = append(parts, s.RenderDivider(width))
	return strings.Join(parts, "\n")
}

func (m Model) sidebar() string {
	content := m.sidebarTop() + "\n" + m.list.View()
	h := m.layout.BodyHeight()
	if !m.layout.ShowMap {
		return lipgloss.NewStyle().Width(m.width).Height(h).MaxHeight(h).Render(content)
	}
	return m.styles.Sidebar.
		Width(m.layout.SidebarContentWidth()).
		Height(h).
		MaxHeight(h).
		Render(content)
}

func (m Model) statusLine() string {
	s := m.styles
	var parts []string
	if m.app.Loading {
		parts = append(parts, m.spinner.View()+" "+s.Status.Render("Searching for leads…"))
	} else {
		parts = append(parts, s.Status.Render(ui.StatusText(len(m.app.Filtered()))))
		if m.app.Filters.MinRating > 0 {
			parts = append(parts, s.Muted.Render("rating ≥ "+leads.FormatRating(m.app.Filters.MinRating)))
		}
	}
	if m.flash != "" {
		parts = append(parts, s.Body.Render(m.flash))
	}
	line := " " + strings.Join(parts, s.Muted.Render(" · "))
	return lipgloss.NewStyle().Width(m.width).MaxWidth(m.width).MaxHeight(ui.StatusBarHeight).Render(line)
}
