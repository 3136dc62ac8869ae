package cartography

import (
	"time"

	"midnightscout/internal/tiles"
)

// ControlPosition anchors a map control to a corner.
type ControlPosition string

const (
	TopLeft     ControlPosition = "topleft"
	TopRight    ControlPosition = "topright"
	BottomLeft  ControlPosition = "bottomleft"
	BottomRight ControlPosition = "bottomright"
)

// MapOptions configures CreateMap.
type MapOptions struct {
	Center             LatLng
	Zoom               float64
	ZoomControl        bool // built-in zoom control chrome
	AttributionControl bool
}

// Icon describes how a marker is drawn.
type Icon struct {
	Highlighted bool // larger glow
	Pulse       bool // pulsing halo
	Size        [2]int
	Anchor      [2]int
}

// Popup is the content bound to a marker.
type Popup struct {
	Title       string
	Stars       string
	Rating      string
	Body        string
	Offset      [2]int
	CloseButton bool
}

// Marker is everything an engine needs to place one marker.
type Marker struct {
	Position LatLng
	Icon     Icon
	Popup    Popup
	OnClick  func()
}

// MarkerID is an engine-assigned handle for a placed marker.
type MarkerID int

// FlyOptions tunes an animated camera move.
type FlyOptions struct {
	Duration      time.Duration
	EaseLinearity float64
}

// FitOptions tunes FitBounds.
type FitOptions struct {
	Padding [2]int // screen pixels
	MaxZoom float64
}

// Engine is the mapping service the map view drives. Implementations own
// rendering; the view owns which markers exist and what is selected.
type Engine interface {
	CreateMap(opts MapOptions) error
	AddTileLayer(layer tiles.Layer)
	AddZoomControl(pos ControlPosition)
	AddMarker(m Marker) (MarkerID, error)
	RemoveMarker(id MarkerID)
	SetMarkerIcon(id MarkerID, icon Icon)
	OpenPopup(id MarkerID)
	FlyTo(target LatLng, zoom float64, opts FlyOptions)
	FitBounds(b Bounds, opts FitOptions)
}
