// Package tiles fetches slippy-map basemap tiles and keeps them in memory for
// the map pane. Only the running session sees the cache.
package tiles

import (
	"fmt"
	"strconv"
	"strings"
)

// TileSize is the edge length in pixels of a standard web map tile.
const TileSize = 256

// Coord addresses one tile by zoom, column and row.
type Coord struct {
	Z, X, Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

// Wrap normalizes X around the antimeridian. Y is left alone.
func (c Coord) Wrap() Coord {
	n := 1 << c.Z
	c.X = ((c.X % n) + n) % n
	return c
}

// Valid reports whether the row exists at this zoom.
func (c Coord) Valid() bool {
	return c.Z >= 0 && c.Y >= 0 && c.Y < 1<<c.Z
}

// Layer describes a tile endpoint addressed by {s}, {z}, {x}, {y} and {r}.
type Layer struct {
	URLTemplate string
	Subdomains  string
	Attribution string
	MaxZoom     int
	Retina      bool
}

// URL expands the template for c. The subdomain is chosen from (x+y) so a
// tile always maps to the same host.
func (l Layer) URL(c Coord) string {
	r := strings.NewReplacer(
		"{s}", l.subdomain(c),
		"{z}", strconv.Itoa(c.Z),
		"{x}", strconv.Itoa(c.X),
		"{y}", strconv.Itoa(c.Y),
		"{r}", l.retinaSuffix(),
	)
	return r.Replace(l.URLTemplate)
}

func (l Layer) subdomain(c Coord) string {
	if l.Subdomains == "" {
		return ""
	}
	i := c.X + c.Y
	if i < 0 {
		i = -i
	}
	return string(l.Subdomains[i%len(l.Subdomains)])
}

func (l Layer) retinaSuffix() string {
	if l.Retina {
		return "@2x"
	}
	return ""
}

// ClampZoom limits z to the layer's zoom range.
func (l Layer) ClampZoom(z int) int {
	if z < 0 {
		return 0
	}
	if l.MaxZoom > 0 && z > l.MaxZoom {
		return l.MaxZoom
	}
	return z
}
