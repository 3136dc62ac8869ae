package cartography

import (
	"errors"
	"testing"

	"midnightscout/internal/leads"
	"midnightscout/internal/tiles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flight struct {
	target LatLng
	zoom   float64
	opts   FlyOptions
}

type stubEngine struct {
	createErr error
	created   MapOptions
	layer     tiles.Layer
	control   ControlPosition

	next    MarkerID
	markers map[MarkerID]Marker
	removed []MarkerID
	popups  []MarkerID
	flights []flight
	fits    []Bounds
}

func newStub() *stubEngine { return &stubEngine{markers: map[MarkerID]Marker{}} }

func (s *stubEngine) CreateMap(o MapOptions) error {
	s.created = o
	return s.createErr
}
func (s *stubEngine) AddTileLayer(l tiles.Layer) { s.layer = l }
func (s *stubEngine) AddZoomControl(pos ControlPosition) { s.control = pos }
func (s *stubEngine) AddMarker(m Marker) (MarkerID, error) {
	s.next++
	s.markers[s.next] = m
	return s.next, nil
}
func (s *stubEngine) RemoveMarker(id MarkerID) {
	delete(s.markers, id)
	s.removed = append(s.removed, id)
}
func (s *stubEngine) SetMarkerIcon(id MarkerID, icon Icon) {
	m := s.markers[id]
	m.Icon = icon
	s.markers[id] = m
}
func (s *stubEngine) OpenPopup(id MarkerID) { s.popups = append(s.popups, id) }
func (s *stubEngine) FlyTo(target LatLng, zoom float64, opts FlyOptions) {
	s.flights = append(s.flights, flight{target, zoom, opts})
}
func (s *stubEngine) FitBounds(b Bounds, _ FitOptions) { s.fits = append(s.fits, b) }

func (s *stubEngine) highlighted() int {
	n := 0
	for _, m := range s.markers {
		if m.Icon.Highlighted {
			n++
		}
	}
	return n
}

func sample() []leads.Business {
	return []leads.Business{
		{ID: "1", Name: "Bright Smiles", Rating: 4.6, Lat: 30.27, Lng: -97.74, SalesPitch: "Add booking."},
		{ID: "2", Name: "Lake Dental", Rating: 3.9, Lat: 30.31, Lng: -97.70},
		{ID: "3", Name: "Capitol Ortho", Rating: 4.1, Lat: 30.25, Lng: -97.76},
	}
}

func TestMount(t *testing.T) {
	s := newStub()
	v := Mount(s, nil)
	require.True(t, v.Ready())
	assert.Equal(t, DefaultCenter, s.created.Center)
	assert.Equal(t, DefaultZoom, s.created.Zoom)
	assert.False(t, s.created.ZoomControl)
	assert.Equal(t, DefaultLayer, s.layer)
	assert.Equal(t, BottomRight, s.control)
}

func TestMount_InertWithoutEngine(t *testing.T) {
	v := Mount(nil, nil)
	assert.False(t, v.Ready())
	v.SyncMarkers(sample(), nil)
	_, ok := v.SetSelection(&sample()[0])
	assert.False(t, ok)
	assert.Zero(t, v.MarkerCount())

	s := newStub()
	s.createErr = errors.New("no terminal")
	v = Mount(s, nil)
	assert.False(t, v.Ready())
	v.SyncMarkers(sample(), nil)
	assert.Empty(t, s.markers)
}

func TestSyncMarkers_FitsWhenNothingSelected(t *testing.T) {
	s := newStub()
	v := Mount(s, nil)

	v.SyncMarkers(sample(), nil)
	assert.Equal(t, 3, v.MarkerCount())
	require.Len(t, s.fits, 1)
	assert.Equal(t, LatLng{Lat: 30.25, Lng: -97.76}, s.fits[0].SouthWest)
	assert.Equal(t, LatLng{Lat: 30.31, Lng: -97.70}, s.fits[0].NorthEast)
	assert.Zero(t, s.highlighted())

	sel := sample()[1]
	v.SyncMarkers(sample(), &sel)
	assert.Len(t, s.markers, 3, "old markers removed")
	assert.Len(t, s.removed, 3)
	assert.Len(t, s.fits, 1, "no fit while a business is selected")
	assert.Equal(t, 1, s.highlighted())
}

func TestSyncMarkers_EmptyClears(t *testing.T) {
	s := newStub()
	v := Mount(s, nil)
	v.SyncMarkers(sample(), nil)
	v.SyncMarkers(nil, nil)
	assert.Empty(t, s.markers)
	assert.Zero(t, v.MarkerCount())
	assert.Len(t, s.fits, 1)
}

func TestMarkerClickSelects(t *testing.T) {
	s := newStub()
	var got []string
	v := Mount(s, func(b leads.Business) { got = append(got, b.ID) })
	v.SyncMarkers(sample(), nil)

	for id := MarkerID(1); id <= 3; id++ {
		s.markers[id].OnClick()
	}
	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestSetSelection_FliesAndHighlightsExactlyOne(t *testing.T) {
	s := newStub()
	v := Mount(s, nil)
	v.SyncMarkers(sample(), nil)

	sel := sample()[2]
	req, ok := v.SetSelection(&sel)
	require.True(t, ok)
	assert.Equal(t, "3", req.BusinessID)
	assert.Equal(t, PopupDelay, req.Delay)
	require.Len(t, s.flights, 1)
	assert.Equal(t, flight{LatLng{30.25, -97.76}, SelectedZoom, FlyOptions{FlyDuration, EaseLinearity}}, s.flights[0])
	assert.Equal(t, 1, s.highlighted())
	assert.True(t, s.markers[3].Icon.Highlighted)

	sel = sample()[0]
	_, ok = v.SetSelection(&sel)
	require.True(t, ok)
	assert.Equal(t, 1, s.highlighted())
	assert.True(t, s.markers[1].Icon.Highlighted)

	_, ok = v.SetSelection(nil)
	assert.False(t, ok)
	assert.Zero(t, s.highlighted())
	assert.Len(t, s.flights, 2)
}

func TestOpenPopup_StaleRequestIgnored(t *testing.T) {
	s := newStub()
	v := Mount(s, nil)
	v.SyncMarkers(sample(), nil)

	first := sample()[0]
	stale, _ := v.SetSelection(&first)
	second := sample()[1]
	fresh, _ := v.SetSelection(&second)

	assert.False(t, v.OpenPopup(stale))
	assert.True(t, v.OpenPopup(fresh))
	assert.Equal(t, []MarkerID{2}, s.popups)

	// Clearing the selection cancels a pending popup too.
	again, _ := v.SetSelection(&first)
	v.SetSelection(nil)
	assert.False(t, v.OpenPopup(again))
}

func TestOpenPopup_FilteredOutSelection(t *testing.T) {
	s := newStub()
	v := Mount(s, nil)
	v.SyncMarkers(sample()[:1], nil)

	outside := sample()[2]
	req, ok := v.SetSelection(&outside)
	require.True(t, ok)
	assert.False(t, v.OpenPopup(req), "no marker, no popup")
	assert.Zero(t, s.highlighted())
}

func TestPopupFor(t *testing.T) {
	p := PopupFor(leads.Business{Name: "Bright Smiles", Rating: 4.5, SalesPitch: "Pitch"})
	assert.Equal(t, "Bright Smiles", p.Title)
	assert.Equal(t, "(4.5)", p.Rating)
	assert.Equal(t, leads.Stars(4.5), p.Stars)
	assert.Equal(t, "Pitch", p.Body)
}

func TestBounds(t *testing.T) {
	var b Bounds
	assert.False(t, b.IsValid())
	b = BoundsOf(LatLng{1, 2}, LatLng{-1, 4})
	assert.True(t, b.IsValid())
	assert.Equal(t, LatLng{0, 3}, b.Center())
}
