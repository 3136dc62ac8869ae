package cartography

import "math"

// LatLng is a WGS 84 coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Bounds is a latitude/longitude bounding box. The zero value is empty.
type Bounds struct {
	SouthWest LatLng
	NorthEast LatLng
	valid     bool
}

// Extend grows the box to include p.
func (b *Bounds) Extend(p LatLng) {
	if !b.valid {
		b.SouthWest, b.NorthEast, b.valid = p, p, true
		return
	}
	b.SouthWest.Lat = math.Min(b.SouthWest.Lat, p.Lat)
	b.SouthWest.Lng = math.Min(b.SouthWest.Lng, p.Lng)
	b.NorthEast.Lat = math.Max(b.NorthEast.Lat, p.Lat)
	b.NorthEast.Lng = math.Max(b.NorthEast.Lng, p.Lng)
}

// IsValid reports whether at least one point was added.
func (b Bounds) IsValid() bool { return b.valid }

// Center returns the midpoint of the box in degrees.
func (b Bounds) Center() LatLng {
	return LatLng{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
	}
}

// BoundsOf returns the bounding box of points.
func BoundsOf(points ...LatLng) Bounds {
	var b Bounds
	for _, p := range points {
		b.Extend(p)
	}
	return b
}
