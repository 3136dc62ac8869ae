// Package cartography places scout's leads on a map. View decides which
// markers exist, which one is highlighted, and where the camera goes; an
// Engine does the drawing.
package cartography

import (
	"fmt"
	"time"

	"midnightscout/internal/leads"
	"midnightscout/internal/logging"
	"midnightscout/internal/tiles"
)

// Camera and timing defaults.
const (
	DefaultZoom   = 4.0
	SelectedZoom  = 16.0
	FlyDuration   = 1500 * time.Millisecond
	EaseLinearity = 0.25
	PopupDelay    = 1500 * time.Millisecond
	FitPadding    = 50
	FitMaxZoom    = 14.0
)

// DefaultCenter is the geographic center of the contiguous United States.
var DefaultCenter = LatLng{Lat: 39.8283, Lng: -98.5795}

// DefaultLayer is the CARTO dark basemap.
var DefaultLayer = tiles.Layer{
	URLTemplate: "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png",
	Subdomains:  "abcd",
	Attribution: "© OpenStreetMap contributors © CARTO",
	MaxZoom:     20,
}

// Icons for markers.
var (
	DefaultIcon     = Icon{Size: [2]int{12, 12}, Anchor: [2]int{6, 6}}
	HighlightedIcon = Icon{Highlighted: true, Pulse: true, Size: [2]int{20, 20}, Anchor: [2]int{10, 10}}
)

// Options configures Mount.
type Options struct {
	Center      LatLng
	Zoom        float64
	Layer       tiles.Layer
	ZoomControl ControlPosition
}

// DefaultOptions returns the standard map setup.
func DefaultOptions() Options {
	return Options{
		Center:      DefaultCenter,
		Zoom:        DefaultZoom,
		Layer:       DefaultLayer,
		ZoomControl: BottomRight,
	}
}

// PopupRequest asks the caller to call OpenPopup after Delay. It goes stale
// as soon as the selection changes again.
type PopupRequest struct {
	Token      uint64
	BusinessID string
	Delay      time.Duration
}

type placed struct {
	id         MarkerID
	businessID string
}

// View is the map view controller.
type View struct {
	engine   Engine
	onSelect func(leads.Business)

	markers  []placed
	byID     map[string]MarkerID
	selected string
	token    uint64
}

// Mount creates the map with DefaultOptions. See MountWith.
func Mount(engine Engine, onSelect func(leads.Business)) *View {
	return MountWith(engine, DefaultOptions(), onSelect)
}

// MountWith creates the map, its tile layer and its zoom control. A nil engine
// or a CreateMap failure yields an inert view: every later call is a no-op.
func MountWith(engine Engine, opts Options, onSelect func(leads.Business)) *View {
	v := &View{onSelect: onSelect, byID: make(map[string]MarkerID)}
	if engine == nil {
		logging.MapDebug("no map engine; map view inert")
		return v
	}
	err := engine.CreateMap(MapOptions{
		Center:             opts.Center,
		Zoom:               opts.Zoom,
		ZoomControl:        false,
		AttributionControl: true,
	})
	if err != nil {
		logging.MapWarn("map unavailable: %v", err)
		return v
	}
	engine.AddTileLayer(opts.Layer)
	if opts.ZoomControl != "" {
		engine.AddZoomControl(opts.ZoomControl)
	}
	v.engine = engine
	return v
}

// Ready reports whether the view has a working engine.
func (v *View) Ready() bool { return v.engine != nil }

// SyncMarkers replaces every marker with one per business. The camera is fit
// to the markers unless a business is selected.
func (v *View) SyncMarkers(bs []leads.Business, selected *leads.Business) {
	if v.engine == nil {
		return
	}
	for _, m := range v.markers {
		v.engine.RemoveMarker(m.id)
	}
	v.markers = v.markers[:0]
	v.byID = make(map[string]MarkerID, len(bs))
	if len(bs) == 0 {
		return
	}

	selID := ""
	if selected != nil {
		selID = selected.ID
	}

	var bounds Bounds
	for _, b := range bs {
		b := b
		pos := LatLng{Lat: b.Lat, Lng: b.Lng}
		icon := DefaultIcon
		if b.ID == selID {
			icon = HighlightedIcon
		}
		id, err := v.engine.AddMarker(Marker{
			Position: pos,
			Icon:     icon,
			Popup:    PopupFor(b),
			OnClick: func() {
				if v.onSelect != nil {
					v.onSelect(b)
				}
			},
		})
		if err != nil {
			logging.MapWarn("marker for %q skipped: %v", b.ID, err)
			continue
		}
		v.markers = append(v.markers, placed{id: id, businessID: b.ID})
		v.byID[b.ID] = id
		bounds.Extend(pos)
	}

	logging.MapDebug("placed %d markers", len(v.markers))
	if selected == nil && bounds.IsValid() {
		v.engine.FitBounds(bounds, FitOptions{Padding: [2]int{FitPadding, FitPadding}, MaxZoom: FitMaxZoom})
	}
}

// SetSelection highlights the selected marker and flies to it. When something
// is selected it returns the deferred popup request for that selection. Any
// earlier request becomes stale either way.
func (v *View) SetSelection(selected *leads.Business) (PopupRequest, bool) {
	v.token++
	if selected == nil {
		v.selected = ""
	} else {
		v.selected = selected.ID
	}
	if v.engine == nil {
		return PopupRequest{}, false
	}

	for _, m := range v.markers {
		icon := DefaultIcon
		if m.businessID == v.selected {
			icon = HighlightedIcon
		}
		v.engine.SetMarkerIcon(m.id, icon)
	}
	if selected == nil {
		return PopupRequest{}, false
	}

	v.engine.FlyTo(LatLng{Lat: selected.Lat, Lng: selected.Lng}, SelectedZoom,
		FlyOptions{Duration: FlyDuration, EaseLinearity: EaseLinearity})
	return PopupRequest{Token: v.token, BusinessID: selected.ID, Delay: PopupDelay}, true
}

// OpenPopup opens the popup for req if its selection is still current and the
// business has a marker. It reports whether a popup was opened.
func (v *View) OpenPopup(req PopupRequest) bool {
	if v.engine == nil || req.Token != v.token || req.BusinessID != v.selected {
		return false
	}
	id, ok := v.byID[req.BusinessID]
	if !ok {
		return false
	}
	v.engine.OpenPopup(id)
	return true
}

// MarkerCount returns the number of markers currently placed.
func (v *View) MarkerCount() int { return len(v.markers) }

// PopupFor builds the popup content for b.
func PopupFor(b leads.Business) Popup {
	return Popup{
		Title:       b.Name,
		Stars:       leads.Stars(b.Rating),
		Rating:      fmt.Sprintf("(%s)", b.RatingText()),
		Body:        b.SalesPitch,
		Offset:      [2]int{0, -10},
		CloseButton: false,
	}
}
