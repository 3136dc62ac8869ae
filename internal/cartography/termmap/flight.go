package termmap

import (
	"time"
)

type flight struct {
	from      camera
	to        camera
	start     time.Time
	duration  time.Duration
	linearity float64
}

// at samples the flight. done is true once the destination is reached.
func (f *flight) at(now time.Time) (cam camera, done bool) {
	if f.duration <= 0 {
		return f.to, true
	}
	p := float64(now.Sub(f.start)) / float64(f.duration)
	if p >= 1 {
		return f.to, true
	}
	if p < 0 {
		p = 0
	}
	k := easeOut(p, f.linearity)

	dx := f.to.Center.X - f.from.Center.X
	if dx > 0.5 {
		dx--
	} else if dx < -0.5 {
		dx++
	}
	return camera{
		Center: point{
			X: wrapUnit(f.from.Center.X + dx*k),
			Y: f.from.Center.Y + (f.to.Center.Y-f.from.Center.Y)*k,
		},
		Zoom: f.from.Zoom + (f.to.Zoom-f.from.Zoom)*k,
	}, false
}
