package motion

import (
	"math"

	"github.com/fogleman/ease"
)

// Spatial models are tuned for perceptual effect rather than geometric
// shape: a linear pass-by for doppler, and a radial zoom toward or away
// from the listener.

// calculateDoppler drives the source along a straight line passing the
// listener at a configured closest-approach distance, at constant speed.
func calculateDoppler(p Params, time, duration float64) Position {
	listener := p.Position("listener", Position{})
	passDistance := p.Float("passDistance", 2)
	span := p.Float("span", 40)
	heading := p.Float("heading", 0)

	t := progress(time, duration)
	// Travel axis rotated by heading in the horizontal plane; the pass
	// offset sits perpendicular to it.
	along := (t - 0.5) * span
	u := along*math.Cos(heading) - passDistance*math.Sin(heading)
	v := along*math.Sin(heading) + passDistance*math.Cos(heading)

	out := Position{X: listener.X + u, Y: listener.Y + v, Z: listener.Z + p.Float("altitude", 0)}
	return sanitize(out, listener)
}

func defaultDoppler(seed Position) Params {
	return Params{
		"listener":     seed,
		"passDistance": 2.0,
		"span":         40.0,
		"heading":      0.0,
		"altitude":     0.0,
	}
}

// calculateZoom eases radial distance between startDistance and endDistance
// while azimuth advances linearly, so the source spirals in (or out) with a
// perceptually smooth approach.
func calculateZoom(p Params, time, duration float64) Position {
	center := p.Position("center", Position{})
	r0 := p.Float("startDistance", 10)
	r1 := p.Float("endDistance", 1)
	azimuth0 := p.Float("startAzimuth", 0)
	rotations := 0.0
	if p.Bool("rotate", false) {
		rotations = p.Float("rotations", 1)
	}

	t := progress(time, duration)
	radius := r0 + (r1-r0)*ease.InOutQuad(t)
	azimuth := azimuth0 + 2*math.Pi*rotations*t

	out := planePoint(center, radius*math.Cos(azimuth), radius*math.Sin(azimuth), p.String("plane", PlaneXY))
	return sanitize(out, center)
}

func defaultZoom(seed Position) Params {
	return Params{
		"center":        seed,
		"startDistance": 10.0,
		"endDistance":   1.0,
		"startAzimuth":  0.0,
		"rotate":        false,
		"plane":         PlaneXY,
	}
}
