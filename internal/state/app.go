// Package state holds the scout application state and the named operations
// that are the only way to change it. The shell drives it from bubbletea's
// Update loop; views read snapshots of it.
package state

import (
	"strings"

	"midnightscout/internal/leads"
)

// FailureNotice is the single user-facing message for every search failure.
const FailureNotice = "Failed to fetch leads. Please check your API key or try again."

// App is the application state.
type App struct {
	Industry    string
	City        string
	Businesses  []leads.Business
	Loading     bool
	Selected    *leads.Business
	Filters     leads.FilterState
	ShowFilters bool

	// Notice is a pending failure message the user has to dismiss.
	Notice string
	// LastErr keeps the detailed cause for the diagnostic log.
	LastErr error

	token uint64
}

// New returns the initial state: no results, no selection, no filter.
func New() *App {
	return &App{Businesses: []leads.Business{}}
}

// SetIndustry updates the industry input.
func (a *App) SetIndustry(s string) { a.Industry = s }

// SetCity updates the city input.
func (a *App) SetCity(s string) { a.City = s }

// CanSubmit reports whether a search may be started now.
func (a *App) CanSubmit() bool {
	return !a.Loading && strings.TrimSpace(a.Industry) != "" && strings.TrimSpace(a.City) != ""
}

// Token returns the token of the most recent search.
func (a *App) Token() uint64 { return a.token }

// StartSearch begins a search. It is a no-op returning ok=false when the inputs
// are empty or a search is already running. On success the previous results
// and selection are cleared before the caller issues the request.
func (a *App) StartSearch() (token uint64, ok bool) {
	if !a.CanSubmit() {
		return 0, false
	}
	a.token++
	a.Loading = true
	a.Businesses = []leads.Business{}
	a.Selected = nil
	a.Notice = ""
	a.LastErr = nil
	return a.token, true
}

// SearchSucceeded applies a search result. Results for any token other than
// the latest are dropped and false is returned.
func (a *App) SearchSucceeded(token uint64, bs []leads.Business) bool {
	if !a.current(token) {
		return false
	}
	if bs == nil {
		bs = []leads.Business{}
	}
	a.Businesses = bs
	a.Loading = false
	return true
}

// SearchFailed records a failed search. Results stay empty and the generic
// notice is raised. Stale tokens are ignored.
func (a *App) SearchFailed(token uint64, err error) bool {
	if !a.current(token) {
		return false
	}
	a.Businesses = []leads.Business{}
	a.Loading = false
	a.Notice = FailureNotice
	a.LastErr = err
	return true
}

func (a *App) current(token uint64) bool {
	return a.Loading && token == a.token
}

// DismissNotice clears the failure notice.
func (a *App) DismissNotice() {
	a.Notice = ""
}

// SetFilter sets the minimum rating. Values outside the option set are accepted.
func (a *App) SetFilter(minRating float64) {
	a.Filters.MinRating = minRating
}

// ToggleFilters shows or hides the filter bar.
func (a *App) ToggleFilters() {
	a.ShowFilters = !a.ShowFilters
}

// Select makes b the current selection.
func (a *App) Select(b leads.Business) {
	sel := b
	a.Selected = &sel
}

// ClearSelection removes the current selection.
func (a *App) ClearSelection() {
	a.Selected = nil
}

// SelectedID returns the selected business id, or "" for none.
func (a *App) SelectedID() string {
	if a.Selected == nil {
		return ""
	}
	return a.Selected.ID
}

// Filtered returns the businesses passing the current filter, in order.
func (a *App) Filtered() []leads.Business {
	return leads.Filter(a.Businesses, a.Filters)
}
