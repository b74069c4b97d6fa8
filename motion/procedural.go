package motion

import (
	"math"
	"math/rand"
)

// Procedural models derive motion from seeded randomness. All derived state
// (the noise generator, the waypoint list) is materialized once by the
// model's Prepare hook at animation creation and carried in the parameter
// bag; Calculate never regenerates it per frame.

// Internal parameter keys written by Prepare hooks.
const (
	preparedNoiseKey     = "_noise"
	preparedWaypointsKey = "_waypoints"
)

func prepareNoise(p Params) Params {
	out := p.Clone()
	out[preparedNoiseKey] = NewNoise(SeedFromFloat(p.Float("seed", 1)))
	return out
}

func calculateNoise(p Params, time, duration float64) Position {
	center := p.Position("center", Position{})
	extent := p.Position("extent", Position{X: 5, Y: 5, Z: 1})
	octaves := p.Int("octaves", 3)
	persistence := p.Float("persistence", 0.5)
	speed := p.Float("speed", 0.2)

	gen, ok := p[preparedNoiseKey].(*Noise)
	if !ok {
		// Unprepared bag (library used directly): rebuild deterministically.
		gen = NewNoise(SeedFromFloat(p.Float("seed", 1)))
	}

	s := gen.Sample3(time*speed, octaves, persistence)
	out := Position{
		X: center.X + s.X*extent.X,
		Y: center.Y + s.Y*extent.Y,
		Z: center.Z + s.Z*extent.Z,
	}
	return sanitize(out, center)
}

func defaultNoise(seed Position) Params {
	return Params{
		"center":      seed,
		"extent":      Position{X: 5, Y: 5, Z: 1},
		"octaves":     3,
		"persistence": 0.5,
		"speed":       0.2,
		"seed":        1.0,
	}
}

// prepareRandomWalk generates the fixed waypoint list from the seed. The
// walk starts and ends at the center so looping playback closes the loop.
func prepareRandomWalk(p Params) Params {
	out := p.Clone()
	out[preparedWaypointsKey] = generateWaypoints(p)
	return out
}

func generateWaypoints(p Params) []Position {
	center := p.Position("center", Position{})
	extent := p.Position("extent", Position{X: 5, Y: 5, Z: 1})
	count := p.Int("waypoints", 8)
	if count < 2 {
		count = 2
	}
	rng := rand.New(rand.NewSource(int64(SeedFromFloat(p.Float("seed", 1)))))

	pts := make([]Position, 0, count+2)
	pts = append(pts, center)
	for i := 0; i < count; i++ {
		pts = append(pts, Position{
			X: center.X + (2*rng.Float64()-1)*extent.X,
			Y: center.Y + (2*rng.Float64()-1)*extent.Y,
			Z: center.Z + (2*rng.Float64()-1)*extent.Z,
		})
	}
	pts = append(pts, center)
	return pts
}

// calculateRandomWalk interpolates through the pre-generated waypoints.
// The smoothness control eases each segment's local progress.
func calculateRandomWalk(p Params, time, duration float64) Position {
	pts, ok := p[preparedWaypointsKey].([]Position)
	if !ok {
		pts = generateWaypoints(p)
	}
	if len(pts) < 2 {
		return p.Position("center", Position{})
	}

	t := progress(time, duration)
	segments := len(pts) - 1
	scaled := t * float64(segments)
	seg := int(scaled)
	if seg >= segments {
		seg = segments - 1
	}
	u := scaled - float64(seg)

	u = easeT(p.String("smoothness", EaseInOut), u)
	out := pts[seg].Lerp(pts[seg+1], u)
	return sanitize(out, pts[seg])
}

func defaultRandomWalk(seed Position) Params {
	return Params{
		"center":     seed,
		"extent":     Position{X: 5, Y: 5, Z: 1},
		"waypoints":  8,
		"smoothness": EaseInOut,
		"seed":       1.0,
	}
}

// SeedFromFloat widens the schema's float seed without losing small values.
func SeedFromFloat(v float64) uint64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	return uint64(v)
}
