package ui

import (
	"strings"

	"midnightscout/internal/leads"
)

// RenderFilterBar draws the minimum-rating options with the active one lit.
func RenderFilterBar(s Styles, minRating float64) string {
	active := leads.OptionIndex(minRating)
	chips := make([]string, 0, len(leads.RatingOptions))
	for i, opt := range leads.RatingOptions {
		st := s.Chip
		if i == active {
			st = s.ChipActive
		}
		chips = append(chips, st.Render(opt.Label()))
	}
	return s.Label.Render("Min rating") + " " + strings.Join(chips, " ")
}

// RenderModal draws a dismissable notice box.
func RenderModal(s Styles, message string, width int) string {
	body := s.Error.Render(message) + "\n\n" + s.Muted.Render("press enter or esc to dismiss")
	w := min(max(width-4, 20), 60)
	return s.Modal.Width(w).Render(body)
}
