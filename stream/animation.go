// Package stream turns authored motion definitions into a real-time stream
// of per-track positions and hands them to a rate-limited transport: timing
// state machine, per-track transform resolution, and the adaptive
// transmission scheduler.
package stream

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/soundpath/motiontx/motion"
)

// CoordSystem selects how a position is expressed on the wire.
type CoordSystem string

const (
	// CoordXYZ is scene-space cartesian.
	CoordXYZ CoordSystem = "xyz"
	// CoordAED is azimuth/elevation/distance, the device's polar form.
	CoordAED CoordSystem = "aed"
)

// TransformMode selects how one authored motion maps onto N tracks.
type TransformMode string

const (
	// ModeAbsolute drives a single track with the raw model output.
	ModeAbsolute TransformMode = "absolute"
	// ModeRelative gives each track an independent, offset copy of the
	// motion, optionally phase-staggered.
	ModeRelative TransformMode = "relative"
	// ModeFormation moves all tracks as one group around a shared anchor.
	ModeFormation TransformMode = "formation"
)

// FormationPattern selects how formation offsets are derived.
type FormationPattern string

const (
	// PatternRigid preserves the tracks' existing layout around the anchor.
	PatternRigid FormationPattern = "rigid"
	// PatternSpherical distributes tracks on a sphere when they have no
	// meaningful prior layout.
	PatternSpherical FormationPattern = "spherical"
)

// Track is the minimal track record the persistence layer supplies.
type Track struct {
	Index int             `yaml:"index"`
	Name  string          `yaml:"name"`
	Base  motion.Position `yaml:"base"`
}

// TrackTransform is the per-track placement of one authored motion.
type TrackTransform struct {
	Offset motion.Position
	// TimeShift staggers this track's playback, in seconds.
	TimeShift float64
}

// FormationSpec configures formation mode.
type FormationSpec struct {
	Anchor  motion.Position
	Pattern FormationPattern
	Radius  float64
	// Anchored pins the formation to Anchor instead of the barycenter.
	Anchored bool
}

// AnimationTransform maps one authored motion onto its tracks.
type AnimationTransform struct {
	Mode   TransformMode
	Tracks map[int]TrackTransform
	// PhaseOffset staggers relative-mode tracks, in seconds per index.
	PhaseOffset float64
	Formation   *FormationSpec
}

// Animation is one authored motion definition. The Transform is populated
// at play-start from the current track layout; records loaded without one
// must pass through Normalize before playback.
type Animation struct {
	ID         string
	Name       string
	MotionType motion.Kind
	Duration   time.Duration
	Loop       bool
	PingPong   bool
	Parameters motion.Params
	Transform  *AnimationTransform
}

// NewAnimation builds an animation with default parameters seeded at pos.
func NewAnimation(name string, kind motion.Kind, duration time.Duration, seed motion.Position) (*Animation, error) {
	model, ok := motion.Lookup(kind)
	if !ok {
		return nil, &ConfigError{Field: "motionType", Reason: fmt.Sprintf("unknown model kind %q", kind)}
	}
	return &Animation{
		ID:         uuid.NewString(),
		Name:       name,
		MotionType: kind,
		Duration:   duration,
		Parameters: model.DefaultParams(seed),
	}, nil
}

// ConfigError reports an invalid animation configuration. It is returned
// synchronously to whoever starts playback and is never raised mid-stream.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("animation config: %s: %s", e.Field, e.Reason)
}

// Validate checks everything that must hold before playback starts.
func (a *Animation) Validate() error {
	if a.Duration <= 0 {
		return &ConfigError{Field: "duration", Reason: "must be positive"}
	}
	if a.PingPong && !a.Loop {
		return &ConfigError{Field: "pingPong", Reason: "requires loop"}
	}
	model, ok := motion.Lookup(a.MotionType)
	if !ok {
		return &ConfigError{Field: "motionType", Reason: fmt.Sprintf("unknown model kind %q", a.MotionType)}
	}
	if err := model.Schema.Validate(a.Parameters); err != nil {
		return &ConfigError{Field: "parameters", Reason: err.Error()}
	}
	return nil
}

// Prepare materializes model-derived state (noise tables, waypoint lists)
// into the parameter bag. Seedless procedural animations first get a stable
// seed hashed from the animation ID, so resumed playback reproduces the
// exact same motion.
func (a *Animation) Prepare() {
	if a.Parameters == nil {
		a.Parameters = motion.Params{}
	}
	if _, has := a.Parameters["seed"]; !has {
		a.Parameters["seed"] = float64(xxhash.Sum64String(a.ID)%0xFFFFFFFF + 1)
	}
	if model, ok := motion.Lookup(a.MotionType); ok && model.Prepare != nil {
		a.Parameters = model.Prepare(a.Parameters)
	}
}

// Rotational reports whether the animation's model is in the orbit family.
func (a *Animation) Rotational() bool {
	model, ok := motion.Lookup(a.MotionType)
	return ok && model.Rotational
}
