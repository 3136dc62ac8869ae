package ui

import (
	"fmt"
	"strings"

	"midnightscout/internal/leads"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
)

// EmptyListText is shown when there is nothing to list.
const EmptyListText = "No results found. Start a search to see leads."

// DetailsLabel closes the expanded panel of the selected card.
const DetailsLabel = "View details →"

// SkeletonCards is the number of placeholder blocks shown while loading.
const SkeletonCards = 3

type cardSpan struct {
	start, end int // lines, end exclusive
	index      int
}

// LeadList is a rendered list plus the line ranges of each card.
type LeadList struct {
	Content string
	Lines   int
	spans   []cardSpan
}

// CardAt returns the index of the business whose card covers line, or -1.
func (l LeadList) CardAt(line int) int {
	for _, s := range l.spans {
		if line >= s.start && line < s.end {
			return s.index
		}
	}
	return -1
}

// CardStart returns the first line of card i, or -1.
func (l LeadList) CardStart(i int) int {
	for _, s := range l.spans {
		if s.index == i {
			return s.start
		}
	}
	return -1
}

// RenderLeadList renders businesses as cards in the given order. Only the
// card whose id equals selectedID is expanded.
func RenderLeadList(s Styles, bs []leads.Business, selectedID string, loading bool, width int) LeadList {
	if loading {
		return renderSkeletons(s, width)
	}
	if len(bs) == 0 {
		text := s.Muted.Render(wordwrap.String(EmptyListText, max(width, 1)))
		return LeadList{Content: text, Lines: lipgloss.Height(text)}
	}

	var (
		b     strings.Builder
		spans []cardSpan
		line  int
	)
	for i, biz := range bs {
		if i > 0 {
			b.WriteString(strings.Repeat("\n", CardGap+1))
			line += CardGap
		}
		card := renderCard(s, biz, selectedID != "" && biz.ID == selectedID, width)
		b.WriteString(card)
		h := lipgloss.Height(card)
		spans = append(spans, cardSpan{start: line, end: line + h, index: i})
		line += h
	}
	return LeadList{Content: b.String(), Lines: line, spans: spans}
}

func renderCard(s Styles, b leads.Business, selected bool, width int) string {
	inner := CardContentWidth(width)

	badge := s.Stars.Render(leads.Stars(b.Rating)) + " " + s.Bold.Render(b.RatingText())
	nameWidth := inner - lipgloss.Width(badge) - 1
	name := s.CardTitle.Render(truncate.StringWithTail(b.Name, uint(max(nameWidth, 1)), "…"))
	gap := strings.Repeat(" ", max(inner-lipgloss.Width(name)-lipgloss.Width(badge), 1))

	lines := []string{name + gap + badge}
	if b.Address != "" {
		lines = append(lines, s.Muted.Render(truncate.StringWithTail(b.Address, uint(inner), "…")))
	}
	for _, issue := range b.TopIssues() {
		lines = append(lines, s.Issue.Render(truncate.StringWithTail("• "+issue, uint(inner), "…")))
	}

	style := s.Card
	if selected {
		style = s.CardSelected
		if b.SalesPitch != "" {
			pitch := wordwrap.String(`"`+b.SalesPitch+`"`, inner)
			lines = append(lines, "", s.Pitch.Render(pitch))
		}
		lines = append(lines, "", s.Details.Render(DetailsLabel))
	}
	return style.Width(width - PanelBorderWidth*2).Render(strings.Join(lines, "\n"))
}

func renderSkeletons(s Styles, width int) LeadList {
	inner := CardContentWidth(width)
	bar := func(frac float64) string {
		return s.Skeleton.Render(strings.Repeat("░", max(int(float64(inner)*frac), 1)))
	}

	var b strings.Builder
	line := 0
	for i := 0; i < SkeletonCards; i++ {
		if i > 0 {
			b.WriteString(strings.Repeat("\n", CardGap+1))
			line += CardGap
		}
		card := s.Card.Width(width - PanelBorderWidth*2).Render(strings.Join([]string{bar(0.6), bar(0.9), bar(0.4)}, "\n"))
		b.WriteString(card)
		line += lipgloss.Height(card)
	}
	return LeadList{Content: b.String(), Lines: line}
}

// StatusText is the result count line.
func StatusText(n int) string {
	return fmt.Sprintf("%d leads found", n)
}
