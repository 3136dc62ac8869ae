// Package leads defines the business records produced by a scout search and
// the rating filter applied to them before display.
package leads

import (
	"fmt"
	"math"
	"strings"
)

// WebsiteUnavailable is the sentinel the model uses when a business has no site.
const WebsiteUnavailable = "N/A"

// MaxDisplayedIssues caps how many issues a card or popup shows.
const MaxDisplayedIssues = 3

// Business is one discovered lead.
// Field names match the JSON array the model is asked to return.
type Business struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Rating      float64  `json:"rating"`
	ReviewCount *int     `json:"reviewCount,omitempty"`
	Website     string   `json:"website"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Issues      []string `json:"issues"`
	SalesPitch  string   `json:"salesPitch"`
	Industry    string   `json:"industry,omitempty"`
}

// HasWebsite reports whether the record carries a usable website value.
func (b Business) HasWebsite() bool {
	w := strings.TrimSpace(b.Website)
	return w != "" && !strings.EqualFold(w, WebsiteUnavailable)
}

// TopIssues returns at most MaxDisplayedIssues issues in their original order.
func (b Business) TopIssues() []string {
	if len(b.Issues) <= MaxDisplayedIssues {
		return b.Issues
	}
	return b.Issues[:MaxDisplayedIssues]
}

// RatingText formats the rating the way the badge and popup show it.
func (b Business) RatingText() string {
	return FormatRating(b.Rating)
}

// FormatRating prints a rating without trailing zeros (4, 4.5, 4.25).
func FormatRating(r float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", r), "0"), ".")
}

// Stars renders round(rating) filled stars followed by empty ones up to five.
func Stars(rating float64) string {
	filled := int(math.Round(rating))
	if filled < 0 {
		filled = 0
	}
	if filled > 5 {
		filled = 5
	}
	return strings.Repeat("★", filled) + strings.Repeat("☆", 5-filled)
}

// FindByID returns the business with the given id, if present.
func FindByID(bs []Business, id string) (Business, bool) {
	if id == "" {
		return Business{}, false
	}
	for _, b := range bs {
		if b.ID == id {
			return b, true
		}
	}
	return Business{}, false
}
