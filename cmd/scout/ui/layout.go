package ui

// Layout constants for panel sizing
const (
	// Sidebar
	SidebarRatio    = 0.38
	SidebarMinWidth = 36
	SidebarMaxWidth = 56

	// Vertical chrome
	HeaderHeight    = 1
	StatusBarHeight = 1
	FooterHeight    = 1

	// Panel borders and spacing
	PanelBorderWidth = 1
	PanelPaddingH    = 1
	CardGap          = 1

	// Responsive breakpoints
	MinimumTerminalWidth  = 60
	MinimumTerminalHeight = 20
	MapMinWidth           = 24
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	ShowMap        bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size.
// The map pane is dropped when it would be too narrow or mapEnabled is false.
func NewLayoutConfig(width, height int, mapEnabled bool) LayoutConfig {
	l := LayoutConfig{TerminalWidth: width, TerminalHeight: height}
	_, mapW := l.split()
	l.ShowMap = mapEnabled && mapW >= MapMinWidth
	return l
}

func (l LayoutConfig) split() (sidebar, mapPane int) {
	sidebar = int(float64(l.TerminalWidth) * SidebarRatio)
	if sidebar < SidebarMinWidth {
		sidebar = SidebarMinWidth
	}
	if sidebar > SidebarMaxWidth {
		sidebar = SidebarMaxWidth
	}
	if sidebar > l.TerminalWidth {
		sidebar = l.TerminalWidth
	}
	return sidebar, l.TerminalWidth - sidebar
}

// SidebarWidth returns the sidebar width, including its right border.
func (l LayoutConfig) SidebarWidth() int {
	if !l.ShowMap {
		return l.TerminalWidth
	}
	s, _ := l.split()
	return s
}

// SidebarContentWidth is the sidebar width inside its border.
func (l LayoutConfig) SidebarContentWidth() int {
	if !l.ShowMap {
		return l.TerminalWidth
	}
	return l.SidebarWidth() - PanelBorderWidth
}

// MapWidth returns the map pane width, or 0 when the map is hidden.
func (l LayoutConfig) MapWidth() int {
	if !l.ShowMap {
		return 0
	}
	_, m := l.split()
	return m
}

// BodyHeight is the height below the header and above the status and footer.
func (l LayoutConfig) BodyHeight() int {
	h := l.TerminalHeight - HeaderHeight - StatusBarHeight - FooterHeight
	if h < 1 {
		h = 1
	}
	return h
}

// CardContentWidth returns the text width inside a bordered, padded card.
func CardContentWidth(width int) int {
	w := width - PanelBorderWidth*2 - PanelPaddingH*2
	if w < 1 {
		w = 1
	}
	return w
}
