package motion

import "math"

// Physics models are closed-form or semi-analytic: they evaluate damped
// motion directly from t rather than integrating, so any playback time is
// reachable without history and the result is finite for all t >= 0.

// calculatePendulum swings a bob below a pivot with exponentially decaying
// amplitude: theta(t) = theta0 * exp(-damping*t) * cos(omega*t).
func calculatePendulum(p Params, time, duration float64) Position {
	pivot := p.Position("pivot", Position{Z: 5})
	length := math.Max(p.Float("length", 3), 1e-6)
	theta0 := p.Float("amplitude", math.Pi/6)
	damping := math.Max(p.Float("damping", 0.1), 0)
	gravity := math.Max(p.Float("gravity", 9.81), 1e-6)

	omega := math.Sqrt(gravity / length)
	theta := theta0 * math.Exp(-damping*time) * math.Cos(omega*time)

	out := planePoint(pivot, length*math.Sin(theta), -length*math.Cos(theta), p.String("plane", PlaneXZ))
	return sanitize(out, pivot)
}

func defaultPendulum(seed Position) Params {
	return Params{
		"pivot":     seed.Add(Position{Z: 5}),
		"length":    3.0,
		"amplitude": math.Pi / 6,
		"damping":   0.1,
		"gravity":   9.81,
		"plane":     PlaneXZ,
	}
}

// calculateSpring releases a mass displaced from equilibrium along an axis
// and lets the damped oscillation pull it back. Underdamped systems use the
// x(t) = A * exp(-zeta*omega*t) * cos(omega_d*t) closed form; at or beyond
// critical damping the oscillation collapses to pure exponential decay.
func calculateSpring(p Params, time, duration float64) Position {
	equilibrium := p.Position("equilibrium", Position{})
	displacement := p.Position("displacement", Position{X: 5})
	stiffness := math.Max(p.Float("stiffness", 20), 1e-6)
	mass := math.Max(p.Float("mass", 1), 1e-6)
	zeta := math.Max(p.Float("damping", 0.15), 0)

	omega := math.Sqrt(stiffness / mass)
	var gain float64
	if zeta < 1 {
		omegaD := omega * math.Sqrt(1-zeta*zeta)
		gain = math.Exp(-zeta*omega*time) * math.Cos(omegaD*time)
	} else {
		gain = math.Exp(-omega * time)
	}

	return sanitize(equilibrium.Add(displacement.Scale(gain)), equilibrium)
}

func defaultSpring(seed Position) Params {
	return Params{
		"equilibrium":  seed,
		"displacement": Position{X: 5},
		"stiffness":    20.0,
		"mass":         1.0,
		"damping":      0.15,
	}
}

// calculateBounce drops a source from an initial height and replays the
// ballistic arcs analytically, shrinking each rebound by the restitution
// coefficient until the residual height is negligible and the source rests
// on the floor.
func calculateBounce(p Params, time, duration float64) Position {
	origin := p.Position("origin", Position{})
	height := math.Max(p.Float("height", 5), 0)
	gravity := math.Max(p.Float("gravity", 9.81), 1e-6)
	restitution := clamp01(p.Float("restitution", 0.6))

	h := height
	remaining := time
	firstFall := true
	// First segment is a free fall from rest; every following arc is a full
	// up-and-down flight from floor level.
	flight := math.Sqrt(2 * h / gravity)
	for i := 0; i < 64; i++ {
		if remaining < flight || h < 1e-4 {
			break
		}
		remaining -= flight
		h *= restitution * restitution
		flight = 2 * math.Sqrt(2*h/gravity)
		firstFall = false
	}

	var z float64
	switch {
	case h < 1e-4:
		z = 0
	case firstFall:
		z = h - 0.5*gravity*remaining*remaining
	default:
		// Inside a rebound arc: launch speed v lifts back to height h.
		v := math.Sqrt(2 * gravity * h)
		z = v*remaining - 0.5*gravity*remaining*remaining
	}
	if z < 0 {
		z = 0
	}

	return sanitize(origin.Add(Position{Z: z}), origin)
}

func defaultBounce(seed Position) Params {
	return Params{
		"origin":      seed,
		"height":      5.0,
		"gravity":     9.81,
		"restitution": 0.6,
	}
}
