package motion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Path models interpolate along authored control points using normalized
// progress t = time/duration, optionally warped by a quadratic easing.

func calculateLinear(p Params, time, duration float64) Position {
	start := p.Position("start", Position{})
	end := p.Position("end", Position{X: 1})
	t := easeT(p.String("easing", EaseNone), progress(time, duration))
	return sanitize(start.Lerp(end, t), start)
}

func defaultLinear(seed Position) Params {
	return Params{
		"start":  seed,
		"end":    seed.Add(Position{X: 10}),
		"easing": EaseNone,
	}
}

func calculateBezier(p Params, time, duration float64) Position {
	pts := p.Positions("points")
	if len(pts) < 4 {
		return p.Position("start", Position{})
	}
	t := easeT(p.String("easing", EaseNone), progress(time, duration))
	v := mgl64.CubicBezierCurve3D(t, pts[0].Vec(), pts[1].Vec(), pts[2].Vec(), pts[3].Vec())
	return sanitize(FromVec(v), pts[0])
}

func defaultBezier(seed Position) Params {
	return Params{
		"points": []Position{
			seed,
			seed.Add(Position{X: 3, Y: 4}),
			seed.Add(Position{X: 7, Y: 4}),
			seed.Add(Position{X: 10}),
		},
		"easing": EaseNone,
	}
}

// calculateCatmullRom runs a centripetal-free (uniform) Catmull-Rom spline
// through every control point, duplicating the endpoints so the curve starts
// and ends exactly on them.
func calculateCatmullRom(p Params, time, duration float64) Position {
	pts := p.Positions("points")
	if len(pts) == 0 {
		return Position{}
	}
	if len(pts) == 1 {
		return pts[0]
	}
	t := easeT(p.String("easing", EaseNone), progress(time, duration))

	segments := len(pts) - 1
	scaled := t * float64(segments)
	seg := int(scaled)
	if seg >= segments {
		seg = segments - 1
	}
	u := scaled - float64(seg)

	at := func(i int) Position {
		if i < 0 {
			return pts[0]
		}
		if i >= len(pts) {
			return pts[len(pts)-1]
		}
		return pts[i]
	}
	p0, p1, p2, p3 := at(seg-1), at(seg), at(seg+1), at(seg+2)

	u2 := u * u
	u3 := u2 * u
	out := Position{
		X: catmull(p0.X, p1.X, p2.X, p3.X, u, u2, u3),
		Y: catmull(p0.Y, p1.Y, p2.Y, p3.Y, u, u2, u3),
		Z: catmull(p0.Z, p1.Z, p2.Z, p3.Z, u, u2, u3),
	}
	return sanitize(out, p1)
}

func catmull(a, b, c, d, u, u2, u3 float64) float64 {
	return 0.5 * ((2 * b) +
		(-a+c)*u +
		(2*a-5*b+4*c-d)*u2 +
		(-a+3*b-3*c+d)*u3)
}

func defaultCatmullRom(seed Position) Params {
	return Params{
		"points": []Position{
			seed,
			seed.Add(Position{X: 3, Y: 2}),
			seed.Add(Position{X: 7, Y: -2}),
			seed.Add(Position{X: 10}),
		},
		"easing": EaseNone,
	}
}

// calculateZigzag advances linearly from start to end while oscillating
// sideways with a triangle wave.
func calculateZigzag(p Params, time, duration float64) Position {
	start := p.Position("start", Position{})
	end := p.Position("end", Position{X: 10})
	count := p.Int("count", 4)
	if count < 1 {
		count = 1
	}
	amplitude := p.Float("amplitude", 1)

	t := easeT(p.String("easing", EaseNone), progress(time, duration))
	base := start.Lerp(end, t)

	// Triangle wave in [-1, 1] completing `count` zigs across the path.
	phase := math.Mod(t*float64(count), 1)
	tri := 4*math.Abs(phase-0.5) - 1

	lateral := perpendicular(end.Sub(start))
	return sanitize(base.Add(lateral.Scale(tri * amplitude)), start)
}

// perpendicular picks a unit vector orthogonal to the travel direction,
// preferring one in the horizontal plane.
func perpendicular(dir Position) Position {
	v := dir.Vec()
	if v.Len() < 1e-12 {
		return Position{Y: 1}
	}
	up := mgl64.Vec3{0, 0, 1}
	if math.Abs(v.Normalize().Dot(up)) > 0.999 {
		up = mgl64.Vec3{0, 1, 0}
	}
	return FromVec(v.Cross(up).Normalize())
}

func defaultZigzag(seed Position) Params {
	return Params{
		"start":     seed,
		"end":       seed.Add(Position{X: 10}),
		"count":     4,
		"amplitude": 1.0,
		"easing":    EaseNone,
	}
}
