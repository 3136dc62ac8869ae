package export

import (
	"encoding/json"
	"io"
	"strconv"

	"midnightscout/internal/leads"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/reflow/truncate"
)

// WriteJSON writes bs as an indented JSON array using the wire field names.
func WriteJSON(w io.Writer, bs []leads.Business) error {
	if bs == nil {
		bs = []leads.Business{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bs)
}

const maxCell = 40

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Table renders bs as a bordered terminal table.
func Table(bs []leads.Business) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Name", "Rating", "Website", "Top issue").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for i, b := range bs {
		issue := ""
		if top := b.TopIssues(); len(top) > 0 {
			issue = top[0]
		}
		t.Row(
			strconv.Itoa(i+1),
			truncate.StringWithTail(b.Name, maxCell, "…"),
			leads.Stars(b.Rating)+" "+b.RatingText(),
			truncate.StringWithTail(b.Website, maxCell, "…"),
			truncate.StringWithTail(issue, maxCell, "…"),
		)
	}
	return t.Render()
}
