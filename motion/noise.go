package motion

import (
	"math"
	"math/rand"
)

// Noise is a deterministic multi-octave value-noise generator. It is an
// explicit value constructed per animation instance: the same (seed, time)
// pair always reproduces the same sample, which lets playback resume
// mid-animation without drift.
type Noise struct {
	seed uint64
	perm [512]uint8
}

// NewNoise builds a generator whose permutation table is derived only from
// the seed.
func NewNoise(seed uint64) *Noise {
	n := &Noise{seed: seed}
	rng := rand.New(rand.NewSource(int64(seed)))
	var base [256]uint8
	for i := range base {
		base[i] = uint8(i)
	}
	rng.Shuffle(len(base), func(i, j int) {
		base[i], base[j] = base[j], base[i]
	})
	copy(n.perm[:256], base[:])
	copy(n.perm[256:], base[:])
	return n
}

// Seed returns the seed the generator was built from.
func (n *Noise) Seed() uint64 { return n.seed }

// lattice hashes an integer lattice coordinate and channel to [0, 1).
func (n *Noise) lattice(i int64, channel int) float64 {
	h := n.perm[uint8(i)]
	h = n.perm[uint8(int(h)+int(i>>8)+channel*59)]
	h = n.perm[uint8(int(h)+int(i>>16))]
	return float64(h) / 255
}

// sample1 is smoothed value noise over one axis channel.
func (n *Noise) sample1(x float64, channel int) float64 {
	i := int64(math.Floor(x))
	f := x - math.Floor(x)
	// Smoothstep fade between lattice values.
	u := f * f * (3 - 2*f)
	a := n.lattice(i, channel)
	b := n.lattice(i+1, channel)
	return a + (b-a)*u
}

// FBm sums octaves of value noise with persistence falloff, normalized to
// [-1, 1].
func (n *Noise) FBm(x float64, channel, octaves int, persistence float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	sum := 0.0
	amplitude := 1.0
	frequency := 1.0
	norm := 0.0
	for o := 0; o < octaves; o++ {
		sum += amplitude * n.sample1(x*frequency+float64(o)*131.7, channel)
		norm += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return 2*(sum/norm) - 1
}

// Sample3 produces a point in [-1, 1]^3 from time, using decorrelated
// channels per axis.
func (n *Noise) Sample3(t float64, octaves int, persistence float64) Position {
	return Position{
		X: n.FBm(t, 0, octaves, persistence),
		Y: n.FBm(t, 1, octaves, persistence),
		Z: n.FBm(t, 2, octaves, persistence),
	}
}
