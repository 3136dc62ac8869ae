package termmap

import (
	"math"

	"midnightscout/internal/cartography"
	"midnightscout/internal/tiles"
)

const maxLatitude = 85.0511287798

// point is a position in normalized Web Mercator space: both axes run 0..1,
// x eastward from the antimeridian, y southward from the north edge.
type point struct {
	X float64
	Y float64
}

func project(ll cartography.LatLng) point {
	lat := math.Max(-maxLatitude, math.Min(maxLatitude, ll.Lat))
	sin := math.Sin(lat * math.Pi / 180)
	return point{
		X: (ll.Lng + 180) / 360,
		Y: 0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi),
	}
}

func unproject(p point) cartography.LatLng {
	return cartography.LatLng{
		Lat: math.Atan(math.Sinh(math.Pi*(1-2*p.Y))) * 180 / math.Pi,
		Lng: p.X*360 - 180,
	}
}

// worldSize is the edge length of the whole map in screen pixels at zoom.
func worldSize(zoom float64) float64 {
	return tiles.TileSize * math.Exp2(zoom)
}

func wrapUnit(x float64) float64 {
	x = math.Mod(x, 1)
	if x < 0 {
		x++
	}
	return x
}

func clampUnit(y float64) float64 {
	return math.Max(0, math.Min(1, y))
}

// camera is where the map looks.
type camera struct {
	Center point
	Zoom   float64
}

// easeOut is the fly-to progress curve for t in [0,1].
func easeOut(t, linearity float64) float64 {
	return 1 - math.Pow(1-t, 1/math.Max(linearity, 0.2))
}
