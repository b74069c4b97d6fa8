package stream

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soundpath/motiontx/motion"
)

func resultAt(anim *Animation, at float64) TimeResult {
	d := anim.Duration.Seconds()
	return TimeResult{AnimationTime: at, Progress: at / d}
}

func TestAbsoluteMode(t *testing.T) {
	anim := testAnimation(10*time.Second, false, false)
	anim = Normalize(anim, []Track{{Index: 3, Name: "lead"}})
	require.Equal(t, ModeAbsolute, anim.Transform.Mode)

	positions := TrackPositions(anim, resultAt(anim, 2.5))
	require.Len(t, positions, 1)
	require.InDelta(t, 2.5, positions[3].X, 1e-9)
}

func TestRelativeMode(t *testing.T) {
	tracks := []Track{
		{Index: 0, Base: motion.Position{}},
		{Index: 1, Base: motion.Position{X: 10}},
		{Index: 2, Base: motion.Position{X: 20}},
	}

	t.Run("synchronized tracks ride their own base", func(t *testing.T) {
		anim := testAnimation(10*time.Second, false, false)
		anim.Transform = &AnimationTransform{Mode: ModeRelative}
		anim = Normalize(anim, tracks)

		positions := TrackPositions(anim, resultAt(anim, 2.5))
		model := motion.MustLookup(anim.MotionType)
		raw := model.Calculate(anim.Parameters, 2.5, 10)
		for _, tr := range tracks {
			want := tr.Base.Add(raw)
			require.InDelta(t, want.X, positions[tr.Index].X, 1e-9)
			require.InDelta(t, want.Y, positions[tr.Index].Y, 1e-9)
		}
	})

	t.Run("phase offset staggers playback", func(t *testing.T) {
		const phase = 1.5
		anim := testAnimation(10*time.Second, true, false)
		anim.Transform = &AnimationTransform{Mode: ModeRelative, PhaseOffset: phase}
		// Zero bases isolate the time-shift behaviour.
		zeroed := []Track{{Index: 0}, {Index: 1}, {Index: 2}}
		anim = Normalize(anim, zeroed)

		model := motion.MustLookup(anim.MotionType)
		d := anim.Duration.Seconds()
		for _, at := range []float64{0, 2, 7.25} {
			positions := TrackPositions(anim, resultAt(anim, at))
			for i := 0; i < 3; i++ {
				shifted := math.Mod(at-float64(i)*phase, d)
				if shifted < 0 {
					shifted += d
				}
				want := model.Calculate(anim.Parameters, shifted, d)
				require.InDelta(t, want.X, positions[i].X, 1e-9, "track %d at %v", i, at)
			}
		}
	})
}

func TestFormationRigid(t *testing.T) {
	tracks := []Track{
		{Index: 0, Base: motion.Position{X: -2}},
		{Index: 1, Base: motion.Position{X: 2}},
		{Index: 2, Base: motion.Position{Y: 3}},
	}

	t.Run("anchor defaults to the barycenter", func(t *testing.T) {
		center := Barycenter(tracks)
		require.InDelta(t, 0.0, center.X, 1e-9)
		require.InDelta(t, 1.0, center.Y, 1e-9)
	})

	t.Run("pairwise differences stay constant", func(t *testing.T) {
		anim := testAnimation(10*time.Second, false, false)
		anim.Transform = &AnimationTransform{
			Mode:      ModeFormation,
			Formation: &FormationSpec{Pattern: PatternRigid},
		}
		anim = Normalize(anim, tracks)

		first := TrackPositions(anim, resultAt(anim, 0))
		ref01 := first[0].Sub(first[1])
		ref02 := first[0].Sub(first[2])
		for _, at := range []float64{1, 4.2, 9.9} {
			positions := TrackPositions(anim, resultAt(anim, at))
			d01 := positions[0].Sub(positions[1])
			d02 := positions[0].Sub(positions[2])
			require.InDelta(t, ref01.X, d01.X, 1e-9)
			require.InDelta(t, ref01.Y, d01.Y, 1e-9)
			require.InDelta(t, ref02.X, d02.X, 1e-9)
			require.InDelta(t, ref02.Y, d02.Y, 1e-9)
		}
	})

	t.Run("orbit models rotate the group rigidly", func(t *testing.T) {
		anim, err := NewAnimation("orbit", motion.KindCircular, 10*time.Second, motion.Position{})
		require.NoError(t, err)
		anim.Transform = &AnimationTransform{
			Mode:      ModeFormation,
			Formation: &FormationSpec{Pattern: PatternRigid},
		}
		anim = Normalize(anim, tracks)

		first := TrackPositions(anim, resultAt(anim, 0))
		refDist := first[0].Distance(first[1])
		rotated := false
		for _, at := range []float64{2.5, 5, 7.5} {
			positions := TrackPositions(anim, resultAt(anim, at))
			// Rigid body: distances between members never change.
			require.InDelta(t, refDist, positions[0].Distance(positions[1]), 1e-9)
			diff := positions[0].Sub(positions[1])
			if diff.Sub(first[0].Sub(first[1])).Length() > 1e-6 {
				rotated = true
			}
		}
		require.True(t, rotated, "orientation should follow the orbit")
	})
}

func TestFormationSpherical(t *testing.T) {
	t.Run("all offsets sit on the sphere and are distinct", func(t *testing.T) {
		const n, radius = 1000, 4.5
		offsets := SphericalOffsets(n, radius)
		require.Len(t, offsets, n)
		seen := make(map[motion.Position]struct{}, n)
		for i, off := range offsets {
			require.InDelta(t, radius, off.Length(), 1e-9, "offset %d", i)
			_, dup := seen[off]
			require.False(t, dup, "offset %d duplicated", i)
			seen[off] = struct{}{}
		}
	})

	t.Run("single track lands on the pole", func(t *testing.T) {
		offsets := SphericalOffsets(1, 2)
		require.InDelta(t, 2, offsets[0].Length(), 1e-12)
	})

	t.Run("normalize assigns one offset per track", func(t *testing.T) {
		anim := testAnimation(10*time.Second, false, false)
		anim.Transform = &AnimationTransform{
			Mode:      ModeFormation,
			Formation: &FormationSpec{Pattern: PatternSpherical, Radius: 3},
		}
		tracks := []Track{{Index: 4}, {Index: 7}, {Index: 9}}
		anim = Normalize(anim, tracks)
		require.Len(t, anim.Transform.Tracks, 3)
		for _, tr := range tracks {
			require.InDelta(t, 3, anim.Transform.Tracks[tr.Index].Offset.Length(), 1e-9)
		}
	})
}

func TestNormalize(t *testing.T) {
	tracks := []Track{
		{Index: 0, Base: motion.Position{X: 1}},
		{Index: 1, Base: motion.Position{X: 2}},
	}

	t.Run("populated transform passes through", func(t *testing.T) {
		anim := testAnimation(10*time.Second, false, false)
		anim.Transform = &AnimationTransform{
			Mode:   ModeAbsolute,
			Tracks: map[int]TrackTransform{5: {}},
		}
		out := Normalize(anim, tracks)
		require.Equal(t, anim.Transform, out.Transform)
	})

	t.Run("missing transform defaults to relative for multiple tracks", func(t *testing.T) {
		anim := testAnimation(10*time.Second, false, false)
		out := Normalize(anim, tracks)
		require.Equal(t, ModeRelative, out.Transform.Mode)
		require.Len(t, out.Transform.Tracks, 2)
		require.Equal(t, tracks[1].Base, out.Transform.Tracks[1].Offset)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		anim := testAnimation(10*time.Second, false, false)
		Normalize(anim, tracks)
		require.Nil(t, anim.Transform)
	})

	t.Run("anchored formation keeps the user anchor", func(t *testing.T) {
		anim := testAnimation(10*time.Second, false, false)
		anchor := motion.Position{X: 100}
		anim.Transform = &AnimationTransform{
			Mode:      ModeFormation,
			Formation: &FormationSpec{Pattern: PatternRigid, Anchor: anchor, Anchored: true},
		}
		out := Normalize(anim, tracks)
		require.Equal(t, anchor, out.Transform.Formation.Anchor)
		require.Equal(t, tracks[0].Base.Sub(anchor), out.Transform.Tracks[0].Offset)
	})
}
