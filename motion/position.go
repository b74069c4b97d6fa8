package motion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Position is a point in scene space.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Add returns p + q.
func (p Position) Add(q Position) Position {
	return Position{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns p - q.
func (p Position) Sub(q Position) Position {
	return Position{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Scale returns p scaled by s.
func (p Position) Scale(s float64) Position {
	return Position{p.X * s, p.Y * s, p.Z * s}
}

// Lerp interpolates linearly from p to q.
func (p Position) Lerp(q Position, t float64) Position {
	return Position{
		p.X + (q.X-p.X)*t,
		p.Y + (q.Y-p.Y)*t,
		p.Z + (q.Z-p.Z)*t,
	}
}

// Distance returns the Euclidean distance between p and q.
func (p Position) Distance(q Position) float64 {
	dx, dy, dz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Length returns the magnitude of p treated as a vector.
func (p Position) Length() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Vec converts p to an mgl64 vector.
func (p Position) Vec() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// FromVec converts an mgl64 vector to a Position.
func FromVec(v mgl64.Vec3) Position {
	return Position{v.X(), v.Y(), v.Z()}
}

// IsFinite reports whether all components are finite numbers.
func (p Position) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// sanitize replaces non-finite components with the fallback. Models use it
// to guarantee the never-throw contract for pathological parameter sets.
func sanitize(p, fallback Position) Position {
	if p.IsFinite() {
		return p
	}
	out := p
	if math.IsNaN(out.X) || math.IsInf(out.X, 0) {
		out.X = fallback.X
	}
	if math.IsNaN(out.Y) || math.IsInf(out.Y, 0) {
		out.Y = fallback.Y
	}
	if math.IsNaN(out.Z) || math.IsInf(out.Z, 0) {
		out.Z = fallback.Z
	}
	return out
}
