// Package termmap is a cartography.Engine that draws into a terminal. Each
// character cell holds two raster pixels stacked with a half block, so tiles,
// markers and the popup all share one grid.
package termmap

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"midnightscout/internal/cartography"
	"midnightscout/internal/logging"
	"midnightscout/internal/tiles"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	defaultWidth      = 60
	defaultHeight     = 20
	defaultPixelScale = 8.0
	defaultMaxZoom    = 20.0
	pulsePeriod       = 600 * time.Millisecond
)

var _ cartography.Engine = (*Engine)(nil)

// ErrNotCreated is returned for marker operations before CreateMap.
var ErrNotCreated = errors.New("termmap: map not created")

// TileSource supplies decoded basemap tiles. *tiles.Fetcher implements it.
type TileSource interface {
	Tile(c tiles.Coord) (image.Image, bool)
}

type marker struct {
	cartography.Marker
	at point
}

// Engine renders a slippy map into a fixed-size block of terminal cells. It
// is not safe for concurrent use; the shell drives it from its Update loop.
type Engine struct {
	source     TileSource
	profile    termenv.Profile
	palette    Palette
	pixelScale float64
	now        func() time.Time

	width  int
	height int

	created     bool
	attribution bool
	layer       *tiles.Layer
	control     cartography.ControlPosition

	cam    camera
	flight *flight

	markers map[cartography.MarkerID]*marker
	order   []cartography.MarkerID
	nextID  cartography.MarkerID
	popup   cartography.MarkerID
}

// Option configures an Engine.
type Option func(*Engine)

// WithProfile sets the color profile. Defaults to lipgloss's detected profile.
func WithProfile(p termenv.Profile) Option {
	return func(e *Engine) { e.profile = p }
}

// WithPalette sets the drawing colors.
func WithPalette(p Palette) Option {
	return func(e *Engine) { e.palette = p }
}

// WithPixelScale sets how many screen pixels one raster pixel covers.
func WithPixelScale(s float64) Option {
	return func(e *Engine) {
		if s > 0 {
			e.pixelScale = s
		}
	}
}

// WithClock overrides time.Now for animations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine drawing tiles from source, which may be nil.
func New(source TileSource, opts ...Option) *Engine {
	e := &Engine{
		source:     source,
		profile:    lipgloss.ColorProfile(),
		palette:    DarkPalette(),
		pixelScale: defaultPixelScale,
		now:        time.Now,
		width:      defaultWidth,
		height:     defaultHeight,
		markers:    make(map[cartography.MarkerID]*marker),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resize sets the size of the map pane in cells.
func (e *Engine) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	e.width, e.height = width, height
}

// Size returns the map pane size in cells.
func (e *Engine) Size() (width, height int) { return e.width, e.height }

func (e *Engine) maxZoom() float64 {
	if e.layer != nil && e.layer.MaxZoom > 0 {
		return float64(e.layer.MaxZoom)
	}
	return defaultMaxZoom
}

func (e *Engine) clampZoom(z float64) float64 {
	return math.Max(0, math.Min(e.maxZoom(), z))
}

// CreateMap implements cartography.Engine.
func (e *Engine) CreateMap(opts cartography.MapOptions) error {
	if opts.Zoom < 0 || opts.Zoom > defaultMaxZoom {
		return fmt.Errorf("termmap: zoom %v out of range", opts.Zoom)
	}
	if math.Abs(opts.Center.Lat) > 90 || math.Abs(opts.Center.Lng) > 180 {
		return fmt.Errorf("termmap: center %v out of range", opts.Center)
	}
	e.cam = camera{Center: project(opts.Center), Zoom: opts.Zoom}
	e.attribution = opts.AttributionControl
	if opts.ZoomControl {
		e.control = cartography.TopLeft
	}
	e.created = true
	return nil
}

// AddTileLayer implements cartography.Engine.
func (e *Engine) AddTileLayer(layer tiles.Layer) {
	l := layer
	e.layer = &l
	e.cam.Zoom = e.clampZoom(e.cam.Zoom)
}

// AddZoomControl implements cartography.Engine.
func (e *Engine) AddZoomControl(pos cartography.ControlPosition) {
	e.control = pos
}

// AddMarker implements cartography.Engine.
func (e *Engine) AddMarker(m cartography.Marker) (cartography.MarkerID, error) {
	if !e.created {
		return 0, ErrNotCreated
	}
	e.nextID++
	id := e.nextID
	e.markers[id] = &marker{Marker: m, at: project(m.Position)}
	e.order = append(e.order, id)
	return id, nil
}

// RemoveMarker implements cartography.Engine.
func (e *Engine) RemoveMarker(id cartography.MarkerID) {
	if _, ok := e.markers[id]; !ok {
		return
	}
	delete(e.markers, id)
	for i, o := range e.order {
		if o == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	if e.popup == id {
		e.popup = 0
	}
}

// SetMarkerIcon implements cartography.Engine.
func (e *Engine) SetMarkerIcon(id cartography.MarkerID, icon cartography.Icon) {
	if m, ok := e.markers[id]; ok {
		m.Icon = icon
	}
}

// OpenPopup implements cartography.Engine. At most one popup is open.
func (e *Engine) OpenPopup(id cartography.MarkerID) {
	if _, ok := e.markers[id]; ok {
		e.popup = id
	}
}

// ClosePopup closes the open popup, if any.
func (e *Engine) ClosePopup() { e.popup = 0 }

// PopupMarker returns the marker whose popup is open.
func (e *Engine) PopupMarker() (cartography.MarkerID, bool) {
	return e.popup, e.popup != 0
}

// FlyTo implements cartography.Engine.
func (e *Engine) FlyTo(target cartography.LatLng, zoom float64, opts cartography.FlyOptions) {
	if !e.created {
		return
	}
	from := e.current()
	e.flight = &flight{
		from:      from,
		to:        camera{Center: project(target), Zoom: e.clampZoom(zoom)},
		start:     e.now(),
		duration:  opts.Duration,
		linearity: opts.EaseLinearity,
	}
	logging.MapDebug("fly to %.4f,%.4f z%.0f over %s", target.Lat, target.Lng, zoom, opts.Duration)
}

// FitBounds implements cartography.Engine. The zoom snaps down to a whole
// level so the padded box fits in the pane.
func (e *Engine) FitBounds(b cartography.Bounds, opts cartography.FitOptions) {
	if !e.created || !b.IsValid() {
		return
	}
	sw, ne := project(b.SouthWest), project(b.NorthEast)
	spanX := math.Abs(ne.X-sw.X) * tiles.TileSize
	spanY := math.Abs(sw.Y-ne.Y) * tiles.TileSize

	availW := math.Max(float64(e.width)*e.pixelScale-2*float64(opts.Padding[0]), e.pixelScale)
	availH := math.Max(float64(2*e.height)*e.pixelScale-2*float64(opts.Padding[1]), e.pixelScale)

	zoom := e.maxZoom()
	if opts.MaxZoom > 0 {
		zoom = math.Min(zoom, opts.MaxZoom)
	}
	if spanX > 0 {
		zoom = math.Min(zoom, math.Log2(availW/spanX))
	}
	if spanY > 0 {
		zoom = math.Min(zoom, math.Log2(availH/spanY))
	}

	e.flight = nil
	e.cam = camera{
		Center: point{X: (sw.X + ne.X) / 2, Y: (sw.Y + ne.Y) / 2},
		Zoom:   e.clampZoom(math.Floor(zoom)),
	}
}

// current returns the camera as of now without finishing a flight.
func (e *Engine) current() camera {
	if e.flight == nil {
		return e.cam
	}
	cam, _ := e.flight.at(e.now())
	return cam
}

// Step advances a running flight and reports whether it is still running.
func (e *Engine) Step() bool {
	if e.flight == nil {
		return false
	}
	cam, done := e.flight.at(e.now())
	if done {
		e.cam = cam
		e.flight = nil
		return false
	}
	return true
}

// Animating reports whether a flight is in progress.
func (e *Engine) Animating() bool { return e.flight != nil }

// Center returns the current map center.
func (e *Engine) Center() cartography.LatLng { return unproject(e.current().Center) }

// Zoom returns the current zoom level.
func (e *Engine) Zoom() float64 { return e.current().Zoom }

// ZoomBy changes the zoom immediately, cancelling any flight.
func (e *Engine) ZoomBy(delta float64) {
	e.cam = e.current()
	e.flight = nil
	e.cam.Zoom = e.clampZoom(math.Round(e.cam.Zoom + delta))
}

// Pan moves the view by whole cells, cancelling any flight.
func (e *Engine) Pan(cols, rows int) {
	e.cam = e.current()
	e.flight = nil
	ws := worldSize(e.cam.Zoom)
	e.cam.Center.X = wrapUnit(e.cam.Center.X + float64(cols)*e.pixelScale/ws)
	e.cam.Center.Y = clampUnit(e.cam.Center.Y + float64(2*rows)*e.pixelScale/ws)
}

// tileZoom is the tile pyramid level used for cam.
func (e *Engine) tileZoom(cam camera) int {
	if e.layer == nil {
		return int(math.Round(cam.Zoom))
	}
	return e.layer.ClampZoom(int(math.Round(cam.Zoom)))
}

// NeededTiles lists the tiles covering the pane at the camera's destination.
func (e *Engine) NeededTiles() []tiles.Coord {
	if !e.created || e.layer == nil {
		return nil
	}
	cam := e.cam
	if e.flight != nil {
		cam = e.flight.to
	}
	tz := e.tileZoom(cam)
	ws := worldSize(cam.Zoom)
	f := math.Exp2(float64(tz) - cam.Zoom)

	halfW := float64(e.width) / 2 * e.pixelScale
	halfH := float64(e.height) * e.pixelScale
	cx, cy := cam.Center.X*ws, cam.Center.Y*ws

	x0 := int(math.Floor((cx - halfW) * f / tiles.TileSize))
	x1 := int(math.Floor((cx + halfW) * f / tiles.TileSize))
	y0 := int(math.Floor((cy - halfH) * f / tiles.TileSize))
	y1 := int(math.Floor((cy + halfH) * f / tiles.TileSize))
	n := 1 << tz
	y0 = max(y0, 0)
	y1 = min(y1, n-1)
	if x1-x0 >= n {
		x0, x1 = 0, n-1
	}

	var out []tiles.Coord
	seen := make(map[tiles.Coord]bool)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c := tiles.Coord{Z: tz, X: x, Y: y}.Wrap()
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// cellOf returns the cell a normalized point falls in for cam.
func (e *Engine) cellOf(cam camera, p point) (col, row int) {
	ws := worldSize(cam.Zoom)
	dx := p.X - cam.Center.X
	if dx > 0.5 {
		dx--
	} else if dx < -0.5 {
		dx++
	}
	rx := dx*ws/e.pixelScale + float64(e.width)/2
	ry := (p.Y-cam.Center.Y)*ws/e.pixelScale + float64(e.height)
	return int(math.Floor(rx)), int(math.Floor(ry / 2))
}

func (e *Engine) pulseOn(now time.Time) bool {
	return (now.UnixNano()/int64(pulsePeriod))%2 == 0
}

// Click handles a mouse press at a cell of the pane. It reports whether the
// press hit the zoom control or a marker. A press on bare map closes the
// popup.
func (e *Engine) Click(col, row int) bool {
	if !e.created {
		return false
	}
	if delta, ok := e.controlAt(col, row); ok {
		e.ZoomBy(delta)
		return true
	}
	if m := e.markerAt(col, row); m != nil {
		if m.OnClick != nil {
			m.OnClick()
		}
		return true
	}
	e.popup = 0
	return false
}

// markerAt finds the top-most marker drawn at or next to a cell.
func (e *Engine) markerAt(col, row int) *marker {
	cam := e.current()
	var near *marker
	for i := len(e.order) - 1; i >= 0; i-- {
		m := e.markers[e.order[i]]
		c, r := e.cellOf(cam, m.at)
		if r != row {
			continue
		}
		switch {
		case c == col && m.Icon.Highlighted:
			return m
		case c == col:
			if near == nil || !near.Icon.Highlighted {
				near = m
			}
		case (c == col-1 || c == col+1) && near == nil:
			near = m
		}
	}
	return near
}
