package stream

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/soundpath/motiontx/motion"
)

// TrackPositions maps one evaluated animation time onto absolute per-track
// positions according to the animation's transform. Animations reaching
// playback always carry a populated transform (see Normalize); a nil one
// falls back to absolute mode on track 0.
func TrackPositions(anim *Animation, res TimeResult) map[int]motion.Position {
	model := motion.MustLookup(anim.MotionType)
	duration := anim.Duration.Seconds()

	tr := anim.Transform
	if tr == nil || len(tr.Tracks) == 0 {
		return map[int]motion.Position{
			0: model.Calculate(anim.Parameters, res.AnimationTime, duration),
		}
	}

	out := make(map[int]motion.Position, len(tr.Tracks))
	switch tr.Mode {
	case ModeRelative:
		for idx, tt := range tr.Tracks {
			t := shiftTime(res.AnimationTime, tt.TimeShift, duration, anim.Loop)
			out[idx] = model.Calculate(anim.Parameters, t, duration).Add(tt.Offset)
		}

	case ModeFormation:
		anchor := model.Calculate(anim.Parameters, res.AnimationTime, duration)
		var rot mgl64.Mat3
		rotate := anim.Rotational()
		if rotate {
			// The group turns as a rigid body: offsets rotate with the same
			// angle parameterization that drives each member's own orbit.
			angle := orbitRotation(anim, res)
			rot = planeRotation(anim.Parameters.String("plane", motion.PlaneXY), angle)
		}
		for idx, tt := range tr.Tracks {
			offset := tt.Offset
			if rotate {
				offset = motion.FromVec(rot.Mul3x1(offset.Vec()))
			}
			out[idx] = anchor.Add(offset)
		}

	default: // absolute
		pos := model.Calculate(anim.Parameters, res.AnimationTime, duration)
		for idx, tt := range tr.Tracks {
			out[idx] = pos.Add(tt.Offset)
		}
	}
	return out
}

// shiftTime applies a per-track time shift, wrapping into the cycle when
// the animation loops and clamping otherwise.
func shiftTime(at, shift, duration float64, loop bool) float64 {
	t := at - shift
	if loop {
		t = math.Mod(t, duration)
		if t < 0 {
			t += duration
		}
		return t
	}
	if t < 0 {
		return 0
	}
	if t > duration {
		return duration
	}
	return t
}

// orbitRotation derives the group rotation angle from the same progress
// parameterization the orbit models use.
func orbitRotation(anim *Animation, res TimeResult) float64 {
	revolutions := anim.Parameters.Float("revolutions", 1)
	return 2 * math.Pi * revolutions * res.Progress
}

// planeRotation builds a rotation about the normal of the orbit plane.
func planeRotation(plane string, angle float64) mgl64.Mat3 {
	switch plane {
	case motion.PlaneXZ:
		return mgl64.Rotate3DY(angle)
	case motion.PlaneYZ:
		return mgl64.Rotate3DX(angle)
	default:
		return mgl64.Rotate3DZ(angle)
	}
}
