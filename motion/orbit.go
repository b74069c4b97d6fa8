package motion

import "math"

// Orbit models are trigonometric functions of an angle derived from
// normalized progress. One revolution spans duration/revolutions seconds;
// the plane parameter selects which scene plane the curve lives in, matching
// the downstream device's XY/XZ/YZ convention.

const (
	PlaneXY = "XY"
	PlaneXZ = "XZ"
	PlaneYZ = "YZ"
)

var planeNames = []string{PlaneXY, PlaneXZ, PlaneYZ}

// planePoint places (u, v) plane coordinates around center in the named plane.
func planePoint(center Position, u, v float64, plane string) Position {
	switch plane {
	case PlaneXZ:
		return Position{center.X + u, center.Y, center.Z + v}
	case PlaneYZ:
		return Position{center.X, center.Y + u, center.Z + v}
	default:
		return Position{center.X + u, center.Y + v, center.Z}
	}
}

// orbitAngle is the shared time parameterization of the orbit family. The
// formation engine reuses it so rigid groups rotate in lockstep with their
// members' own orbits.
func orbitAngle(p Params, time, duration float64) float64 {
	revolutions := p.Float("revolutions", 1)
	phase := p.Float("phase", 0)
	return 2*math.Pi*revolutions*progress(time, duration) + phase
}

func calculateCircular(p Params, time, duration float64) Position {
	center := p.Position("center", Position{})
	radius := p.Float("radius", 5)
	angle := orbitAngle(p, time, duration)
	out := planePoint(center, radius*math.Cos(angle), radius*math.Sin(angle), p.String("plane", PlaneXY))
	return sanitize(out, center)
}

func defaultCircular(seed Position) Params {
	return Params{
		"center":      seed,
		"radius":      5.0,
		"revolutions": 1.0,
		"phase":       0.0,
		"plane":       PlaneXY,
	}
}

func calculateElliptical(p Params, time, duration float64) Position {
	center := p.Position("center", Position{})
	a := p.Float("radiusMajor", 8)
	b := p.Float("radiusMinor", 4)
	angle := orbitAngle(p, time, duration)
	out := planePoint(center, a*math.Cos(angle), b*math.Sin(angle), p.String("plane", PlaneXY))
	return sanitize(out, center)
}

func defaultElliptical(seed Position) Params {
	return Params{
		"center":      seed,
		"radiusMajor": 8.0,
		"radiusMinor": 4.0,
		"revolutions": 1.0,
		"phase":       0.0,
		"plane":       PlaneXY,
	}
}

// calculateSpiral sweeps the orbit angle while interpolating radius from
// startRadius to endRadius across the whole duration.
func calculateSpiral(p Params, time, duration float64) Position {
	center := p.Position("center", Position{})
	r0 := p.Float("startRadius", 1)
	r1 := p.Float("endRadius", 8)
	t := progress(time, duration)
	radius := r0 + (r1-r0)*t
	angle := orbitAngle(p, time, duration)
	out := planePoint(center, radius*math.Cos(angle), radius*math.Sin(angle), p.String("plane", PlaneXY))

	// Optional vertical rise turns the flat spiral into a helix.
	out.Z += p.Float("lift", 0) * t
	return sanitize(out, center)
}

func defaultSpiral(seed Position) Params {
	return Params{
		"center":      seed,
		"startRadius": 1.0,
		"endRadius":   8.0,
		"revolutions": 3.0,
		"phase":       0.0,
		"lift":        0.0,
		"plane":       PlaneXY,
	}
}

// calculateRose traces r = R·cos(k·θ), the classic rose curve. Integer k
// gives k petals when odd and 2k petals when even.
func calculateRose(p Params, time, duration float64) Position {
	center := p.Position("center", Position{})
	radius := p.Float("radius", 5)
	k := p.Float("petals", 4)
	angle := orbitAngle(p, time, duration)
	r := radius * math.Cos(k*angle)
	out := planePoint(center, r*math.Cos(angle), r*math.Sin(angle), p.String("plane", PlaneXY))
	return sanitize(out, center)
}

func defaultRose(seed Position) Params {
	return Params{
		"center":      seed,
		"radius":      5.0,
		"petals":      4.0,
		"revolutions": 1.0,
		"phase":       0.0,
		"plane":       PlaneXY,
	}
}

// calculateCycloid traces an epicycloid (rolling circle outside the fixed
// one) or hypocycloid (inside) from the fixed radius R and rolling radius r.
func calculateCycloid(p Params, time, duration float64) Position {
	center := p.Position("center", Position{})
	R := p.Float("fixedRadius", 4)
	r := p.Float("rollingRadius", 1)
	if math.Abs(r) < 1e-9 {
		r = 1e-9
	}
	angle := orbitAngle(p, time, duration)

	var u, v float64
	if p.String("variant", "epi") == "hypo" {
		d := R - r
		u = d*math.Cos(angle) + r*math.Cos(d/r*angle)
		v = d*math.Sin(angle) - r*math.Sin(d/r*angle)
	} else {
		s := R + r
		u = s*math.Cos(angle) - r*math.Cos(s/r*angle)
		v = s*math.Sin(angle) - r*math.Sin(s/r*angle)
	}
	out := planePoint(center, u, v, p.String("plane", PlaneXY))
	return sanitize(out, center)
}

func defaultCycloid(seed Position) Params {
	return Params{
		"center":        seed,
		"fixedRadius":   4.0,
		"rollingRadius": 1.0,
		"variant":       "epi",
		"revolutions":   1.0,
		"phase":         0.0,
		"plane":         PlaneXY,
	}
}

// calculateScan sweeps back and forth across an arc at constant radius, the
// way a mixing engineer pans a source across a fixed sector.
func calculateScan(p Params, time, duration float64) Position {
	center := p.Position("center", Position{})
	radius := p.Float("radius", 5)
	a0 := p.Float("startAngle", -math.Pi/4)
	a1 := p.Float("endAngle", math.Pi/4)
	sweeps := p.Float("sweeps", 1)

	// Triangle wave in [0, 1] so the scan reverses smoothly at each edge.
	t := math.Mod(progress(time, duration)*sweeps, 1)
	tri := 1 - math.Abs(2*t-1)
	angle := a0 + (a1-a0)*tri

	out := planePoint(center, radius*math.Cos(angle), radius*math.Sin(angle), p.String("plane", PlaneXY))
	return sanitize(out, center)
}

func defaultScan(seed Position) Params {
	return Params{
		"center":     seed,
		"radius":     5.0,
		"startAngle": -math.Pi / 4,
		"endAngle":   math.Pi / 4,
		"sweeps":     1.0,
		"plane":      PlaneXY,
	}
}
