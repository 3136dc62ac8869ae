package termmap

import (
	"image"
	"image/color"
	"math"
	"strings"
	"testing"
	"time"

	"midnightscout/internal/cartography"
	"midnightscout/internal/tiles"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var austin = cartography.LatLng{Lat: 30.27, Lng: -97.74}

type uniformSource struct{ c color.Color }

func (u uniformSource) Tile(tiles.Coord) (image.Image, bool) {
	return image.NewUniform(u.c), true
}

type boundedUniform struct{ c color.Color }

func (u boundedUniform) Tile(tiles.Coord) (image.Image, bool) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, u.c)
		}
	}
	return img, true
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newEngine(t *testing.T, clock *fakeClock, center cartography.LatLng, zoom float64) *Engine {
	t.Helper()
	e := New(nil, WithProfile(termenv.Ascii), WithClock(clock.now))
	e.Resize(40, 12)
	require.NoError(t, e.CreateMap(cartography.MapOptions{Center: center, Zoom: zoom, AttributionControl: true}))
	e.AddTileLayer(cartography.DefaultLayer)
	e.AddZoomControl(cartography.BottomRight)
	return e
}

func lines(e *Engine) [][]rune {
	var out [][]rune
	for _, l := range strings.Split(ansi.Strip(e.Render()), "\n") {
		out = append(out, []rune(l))
	}
	return out
}

func TestProjectionRoundTrip(t *testing.T) {
	for _, ll := range []cartography.LatLng{austin, {Lat: 0, Lng: 0}, {Lat: -33.86, Lng: 151.2}} {
		got := unproject(project(ll))
		assert.InDelta(t, ll.Lat, got.Lat, 1e-9)
		assert.InDelta(t, ll.Lng, got.Lng, 1e-9)
	}
	assert.Equal(t, point{X: 0.5, Y: 0.5}, project(cartography.LatLng{}))
}

func TestEaseOut(t *testing.T) {
	assert.InDelta(t, 0.9375, easeOut(0.5, 0.25), 1e-12)
	assert.InDelta(t, 1-math.Pow(0.5, 5), easeOut(0.5, 0.1), 1e-12, "linearity floors at 0.2")
	assert.Equal(t, 0.0, easeOut(0, 0.25))
	assert.Equal(t, 1.0, easeOut(1, 0.25))
}

func TestCreateMap_RejectsBadOptions(t *testing.T) {
	e := New(nil)
	assert.Error(t, e.CreateMap(cartography.MapOptions{Zoom: 30}))
	assert.Error(t, e.CreateMap(cartography.MapOptions{Center: cartography.LatLng{Lat: 95}}))
	_, err := e.AddMarker(cartography.Marker{})
	assert.ErrorIs(t, err, ErrNotCreated)
}

func TestFitBounds(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	e := newEngine(t, clock, cartography.DefaultCenter, cartography.DefaultZoom)

	b := cartography.BoundsOf(
		cartography.LatLng{Lat: 30.25, Lng: -97.76},
		cartography.LatLng{Lat: 30.31, Lng: -97.70},
	)
	e.FitBounds(b, cartography.FitOptions{Padding: [2]int{50, 50}, MaxZoom: 14})
	z := e.Zoom()
	assert.Equal(t, math.Floor(z), z, "zoom snaps to a whole level")
	assert.GreaterOrEqual(t, z, 9.0)
	assert.LessOrEqual(t, z, 12.0)
	assert.InDelta(t, -97.73, e.Center().Lng, 1e-9)

	e.FitBounds(cartography.BoundsOf(austin), cartography.FitOptions{Padding: [2]int{50, 50}, MaxZoom: 14})
	assert.Equal(t, 14.0, e.Zoom(), "a single point goes to the max zoom")
}

func TestFlyTo(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	e := newEngine(t, clock, cartography.DefaultCenter, 4)

	e.FlyTo(austin, 16, cartography.FlyOptions{Duration: 1500 * time.Millisecond, EaseLinearity: 0.25})
	assert.True(t, e.Animating())
	assert.Equal(t, 4.0, e.Zoom())

	clock.advance(750 * time.Millisecond)
	assert.True(t, e.Step())
	assert.InDelta(t, 4+12*0.9375, e.Zoom(), 1e-9)

	clock.advance(750 * time.Millisecond)
	assert.False(t, e.Step())
	assert.False(t, e.Animating())
	assert.Equal(t, 16.0, e.Zoom())
	assert.InDelta(t, austin.Lat, e.Center().Lat, 1e-9)
	assert.InDelta(t, austin.Lng, e.Center().Lng, 1e-9)
}

func TestZoomAndPanCancelFlight(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	e := newEngine(t, clock, austin, 10)
	e.FlyTo(cartography.DefaultCenter, 4, cartography.FlyOptions{Duration: time.Second})

	e.ZoomBy(1)
	assert.False(t, e.Animating())
	assert.Equal(t, 11.0, e.Zoom())

	e.ZoomBy(-30)
	assert.Equal(t, 0.0, e.Zoom())

	e.ZoomBy(10)
	before := e.Center()
	e.Pan(5, 0)
	assert.Greater(t, e.Center().Lng, before.Lng)
	assert.InDelta(t, before.Lat, e.Center().Lat, 1e-9)
}

func TestRender_MarkersControlAndAttribution(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	e := newEngine(t, clock, austin, 10)
	_, err := e.AddMarker(cartography.Marker{Position: austin, Icon: cartography.DefaultIcon})
	require.NoError(t, err)

	ls := lines(e)
	require.Len(t, ls, 12)
	for _, l := range ls {
		assert.Len(t, l, 40)
	}
	assert.Equal(t, markerGlyph, ls[6][20])
	assert.Equal(t, "[+]", string(ls[9][36:39]))
	assert.Equal(t, "[-]", string(ls[10][36:39]))
	assert.True(t, strings.HasSuffix(string(ls[11]), cartography.DefaultLayer.Attribution))
}

func TestRender_HighlightedMarkerPulses(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	e := newEngine(t, clock, austin, 10)
	id, err := e.AddMarker(cartography.Marker{Position: austin, Icon: cartography.DefaultIcon})
	require.NoError(t, err)
	e.SetMarkerIcon(id, cartography.HighlightedIcon)

	ls := lines(e)
	assert.Equal(t, selectedGlyph, ls[6][20])
	assert.Equal(t, haloGlyph, ls[6][19])
	assert.Equal(t, haloGlyph, ls[6][21])

	clock.advance(pulsePeriod)
	ls = lines(e)
	assert.Equal(t, selectedGlyph, ls[6][20])
	assert.NotEqual(t, haloGlyph, ls[6][19])
}

func TestRender_Popup(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	e := newEngine(t, clock, austin, 10)
	id, err := e.AddMarker(cartography.Marker{
		Position: austin,
		Icon:     cartography.DefaultIcon,
		Popup:    cartography.Popup{Title: "Bright Smiles", Stars: "★★★★★", Rating: "(4.6)", Body: "Add online booking."},
	})
	require.NoError(t, err)

	assert.NotContains(t, ansi.Strip(e.Render()), "Bright Smiles")
	e.OpenPopup(id)
	out := ansi.Strip(e.Render())
	assert.Contains(t, out, "Bright Smiles")
	assert.Contains(t, out, "★★★★★ (4.6)")
	assert.Contains(t, out, "Add online booking.")

	e.RemoveMarker(id)
	_, open := e.PopupMarker()
	assert.False(t, open, "removing a marker closes its popup")
}

func TestClick(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	e := newEngine(t, clock, austin, 10)
	clicks := 0
	id, err := e.AddMarker(cartography.Marker{Position: austin, OnClick: func() { clicks++ }})
	require.NoError(t, err)

	assert.True(t, e.Click(20, 6))
	assert.True(t, e.Click(21, 6), "adjacent cells count as a hit")
	assert.Equal(t, 2, clicks)

	assert.True(t, e.Click(37, 9))
	assert.Equal(t, 11.0, e.Zoom())
	assert.True(t, e.Click(36, 10))
	assert.Equal(t, 10.0, e.Zoom())

	e.OpenPopup(id)
	assert.False(t, e.Click(3, 2))
	_, open := e.PopupMarker()
	assert.False(t, open, "clicking bare map closes the popup")
}

func TestNeededTiles(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	e := newEngine(t, clock, cartography.LatLng{}, 0)
	assert.Equal(t, []tiles.Coord{{Z: 0, X: 0, Y: 0}}, e.NeededTiles())

	e.ZoomBy(2)
	assert.ElementsMatch(t, []tiles.Coord{
		{Z: 2, X: 1, Y: 1}, {Z: 2, X: 2, Y: 1},
		{Z: 2, X: 1, Y: 2}, {Z: 2, X: 2, Y: 2},
	}, e.NeededTiles())

	e.FlyTo(austin, 16, cartography.FlyOptions{Duration: time.Second})
	for _, c := range e.NeededTiles() {
		assert.Equal(t, 16, c.Z, "prefetch targets the flight destination")
	}
}

func TestSamplerUsesTileColors(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	e := newEngine(t, clock, austin, 10)
	e.source = boundedUniform{c: color.RGBA{R: 10, G: 20, B: 30, A: 255}}

	s := e.sampler(e.current())
	assert.Equal(t, "#0a141e", s.color(0, 0))
	assert.Equal(t, "#0a141e", s.color(39, 23))

	e.source = uniformSource{c: color.RGBA{R: 255, A: 255}}
	s = e.sampler(camera{Center: point{X: 0.5, Y: 0.001}, Zoom: 0})
	assert.Equal(t, e.palette.Background, s.color(0, 0), "north of the world edge")
}

func TestRender_NotCreated(t *testing.T) {
	e := New(nil, WithProfile(termenv.Ascii))
	e.Resize(10, 3)
	ls := strings.Split(ansi.Strip(e.Render()), "\n")
	assert.Len(t, ls, 3)
	assert.Equal(t, strings.Repeat(halfBlock, 10), ls[0])
}
