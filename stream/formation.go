package stream

import (
	"math"

	"github.com/soundpath/motiontx/motion"
)

// goldenAngle spaces points so no two spiral arms align: pi * (3 - sqrt 5).
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Barycenter returns the mean base position of the tracks.
func Barycenter(tracks []Track) motion.Position {
	if len(tracks) == 0 {
		return motion.Position{}
	}
	var sum motion.Position
	for _, t := range tracks {
		sum = sum.Add(t.Base)
	}
	return sum.Scale(1 / float64(len(tracks)))
}

// RigidOffsets keeps the tracks' existing layout: each offset is the track's
// base position relative to the anchor, computed once at play start.
func RigidOffsets(tracks []Track, anchor motion.Position) map[int]TrackTransform {
	out := make(map[int]TrackTransform, len(tracks))
	for _, t := range tracks {
		out[t.Index] = TrackTransform{Offset: t.Base.Sub(anchor)}
	}
	return out
}

// SphericalOffsets distributes n offsets on a sphere of the given radius
// using a golden-angle spiral, for track sets with no meaningful layout.
// The vertical coordinate is spread linearly across [-1, 1] and converted
// to a polar angle, which keeps point density uniform over the sphere.
func SphericalOffsets(n int, radius float64) []motion.Position {
	out := make([]motion.Position, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[0] = motion.Position{Z: radius}
		return out
	}
	for i := 0; i < n; i++ {
		z := -1 + 2*float64(i)/float64(n-1)
		// Nudge the poles off ±1 so the azimuth stays meaningful.
		z = math.Min(math.Max(z, -1+1e-9), 1-1e-9)
		polar := math.Acos(z)
		azimuth := goldenAngle * float64(i)
		s := math.Sin(polar)
		out[i] = motion.Position{
			X: radius * s * math.Cos(azimuth),
			Y: radius * s * math.Sin(azimuth),
			Z: radius * z,
		}
	}
	return out
}

// Normalize populates a missing or empty transform from the current track
// layout, the load-time adapter contract for legacy records. The input
// animation is not mutated.
func Normalize(anim *Animation, tracks []Track) *Animation {
	out := *anim
	if out.Transform != nil && len(out.Transform.Tracks) > 0 {
		return &out
	}

	tr := &AnimationTransform{Tracks: make(map[int]TrackTransform, len(tracks))}
	switch {
	case out.Transform != nil && out.Transform.Mode != "":
		tr.Mode = out.Transform.Mode
		tr.PhaseOffset = out.Transform.PhaseOffset
		if out.Transform.Formation != nil {
			spec := *out.Transform.Formation
			tr.Formation = &spec
		}
	case len(tracks) <= 1:
		tr.Mode = ModeAbsolute
	default:
		tr.Mode = ModeRelative
	}

	switch tr.Mode {
	case ModeAbsolute:
		for _, t := range tracks {
			tr.Tracks[t.Index] = TrackTransform{}
			break
		}
		if len(tr.Tracks) == 0 {
			tr.Tracks[0] = TrackTransform{}
		}
	case ModeRelative:
		for i, t := range tracks {
			tr.Tracks[t.Index] = TrackTransform{
				Offset:    t.Base,
				TimeShift: float64(i) * tr.PhaseOffset,
			}
		}
	case ModeFormation:
		spec := tr.Formation
		if spec == nil {
			spec = &FormationSpec{Pattern: PatternRigid}
			tr.Formation = spec
		}
		if !spec.Anchored {
			spec.Anchor = Barycenter(tracks)
		}
		switch spec.Pattern {
		case PatternSpherical:
			offsets := SphericalOffsets(len(tracks), spec.Radius)
			for i, t := range tracks {
				tr.Tracks[t.Index] = TrackTransform{Offset: offsets[i]}
			}
		default:
			tr.Tracks = RigidOffsets(tracks, spec.Anchor)
		}
	}

	out.Transform = tr
	return &out
}
