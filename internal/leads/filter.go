package leads

// FilterState holds the user's display filters.
type FilterState struct {
	MinRating float64
}

// Visible reports whether b passes the filter.
func (f FilterState) Visible(b Business) bool {
	return b.Rating >= f.MinRating
}

// RatingOption is one entry of the fixed minimum-rating choice set.
type RatingOption float64

// RatingOptions is the discrete set offered by the filter bar.
var RatingOptions = []RatingOption{0, 3, 4, 4.5}

// Label returns "All" for zero and "<n>+" otherwise.
func (o RatingOption) Label() string {
	if o == 0 {
		return "All"
	}
	return FormatRating(float64(o)) + "+"
}

// OptionIndex returns the index of minRating in RatingOptions, or -1.
func OptionIndex(minRating float64) int {
	for i, o := range RatingOptions {
		if float64(o) == minRating {
			return i
		}
	}
	return -1
}

// Filter returns the businesses that pass f, in their original order.
// The input slice is never modified.
func Filter(bs []Business, f FilterState) []Business {
	out := make([]Business, 0, len(bs))
	for _, b := range bs {
		if f.Visible(b) {
			out = append(out, b)
		}
	}
	return out
}
