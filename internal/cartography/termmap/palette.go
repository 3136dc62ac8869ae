package termmap

// Palette holds the hex colors the engine draws with.
type Palette struct {
	Background  string
	Marker      string
	Highlight   string
	Halo        string
	Panel       string
	PanelBorder string
	Text        string
	Muted       string
}

// DarkPalette matches the midnight basemap.
func DarkPalette() Palette {
	return Palette{
		Background:  "#0e1117",
		Marker:      "#94a3b8",
		Highlight:   "#22d3ee",
		Halo:        "#0e7490",
		Panel:       "#1e293b",
		PanelBorder: "#334155",
		Text:        "#f1f5f9",
		Muted:       "#94a3b8",
	}
}

// LightPalette is used with the light UI theme.
func LightPalette() Palette {
	return Palette{
		Background:  "#e2e8f0",
		Marker:      "#475569",
		Highlight:   "#0891b2",
		Halo:        "#67e8f9",
		Panel:       "#f8fafc",
		PanelBorder: "#cbd5e1",
		Text:        "#0f172a",
		Muted:       "#64748b",
	}
}
