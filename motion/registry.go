// Package motion is the library of pure position-calculation models that
// drive spatial-audio sources. Every model is a function of its parameter
// bag and the current animation time; the registry below maps a model kind
// to its calculator, default parameters and schema, so adding a model is a
// data addition.
package motion

import (
	"fmt"
	"math"
	"sort"
)

// Kind identifies a motion model.
type Kind string

const (
	KindLinear     Kind = "linear"
	KindBezier     Kind = "bezier"
	KindCatmullRom Kind = "catmullrom"
	KindZigzag     Kind = "zigzag"

	KindCircular   Kind = "circular"
	KindElliptical Kind = "elliptical"
	KindSpiral     Kind = "spiral"
	KindRose       Kind = "rose"
	KindCycloid    Kind = "cycloid"
	KindScan       Kind = "scan"

	KindPendulum Kind = "pendulum"
	KindSpring   Kind = "spring"
	KindBounce   Kind = "bounce"

	KindNoise      Kind = "noise"
	KindRandomWalk Kind = "randomwalk"

	KindDoppler Kind = "doppler"
	KindZoom    Kind = "zoom"
)

// CalculateFunc computes a position from parameters, animation time in
// seconds and total duration in seconds. It never fails: invalid parameter
// combinations are rejected at validation time, and pathological numeric
// results are clamped in-model.
type CalculateFunc func(p Params, time, duration float64) Position

// PrepareFunc materializes derived state (noise tables, waypoint lists)
// into the parameter bag once, at animation creation.
type PrepareFunc func(p Params) Params

// Model bundles everything the pipeline needs to run one motion kind.
type Model struct {
	Calculate     CalculateFunc
	DefaultParams func(seed Position) Params
	Prepare       PrepareFunc
	Schema        Schema
	// Rotational marks the orbit family; formations rotate rigidly with
	// these models instead of letting each member orbit independently.
	Rotational bool
}

var registry = map[Kind]Model{
	KindLinear: {
		Calculate:     calculateLinear,
		DefaultParams: defaultLinear,
		Schema: Schema{
			{Name: "start", Type: FieldPosition, Required: true},
			{Name: "end", Type: FieldPosition, Required: true},
			{Name: "easing", Type: FieldEnum, Enum: easingNames},
		},
	},
	KindBezier: {
		Calculate:     calculateBezier,
		DefaultParams: defaultBezier,
		Schema: Schema{
			{Name: "points", Type: FieldPositions, Required: true, MinLen: 4},
			{Name: "easing", Type: FieldEnum, Enum: easingNames},
		},
	},
	KindCatmullRom: {
		Calculate:     calculateCatmullRom,
		DefaultParams: defaultCatmullRom,
		Schema: Schema{
			{Name: "points", Type: FieldPositions, Required: true, MinLen: 2},
			{Name: "easing", Type: FieldEnum, Enum: easingNames},
		},
	},
	KindZigzag: {
		Calculate:     calculateZigzag,
		DefaultParams: defaultZigzag,
		Schema: Schema{
			{Name: "start", Type: FieldPosition, Required: true},
			{Name: "end", Type: FieldPosition, Required: true},
			{Name: "count", Type: FieldInt, Min: 1, Max: 64},
			{Name: "amplitude", Type: FieldFloat, Min: 0, Max: 100},
			{Name: "easing", Type: FieldEnum, Enum: easingNames},
		},
	},

	KindCircular: {
		Calculate:     calculateCircular,
		DefaultParams: defaultCircular,
		Rotational:    true,
		Schema: Schema{
			{Name: "center", Type: FieldPosition, Required: true},
			{Name: "radius", Type: FieldFloat, Required: true, Min: 0.001, Max: 1000},
			{Name: "revolutions", Type: FieldFloat, Min: 0.001, Max: 1000},
			{Name: "phase", Type: FieldFloat, Min: -2 * math.Pi, Max: 2 * math.Pi},
			{Name: "plane", Type: FieldEnum, Enum: planeNames},
		},
	},
	KindElliptical: {
		Calculate:     calculateElliptical,
		DefaultParams: defaultElliptical,
		Rotational:    true,
		Schema: Schema{
			{Name: "center", Type: FieldPosition, Required: true},
			{Name: "radiusMajor", Type: FieldFloat, Required: true, Min: 0.001, Max: 1000},
			{Name: "radiusMinor", Type: FieldFloat, Required: true, Min: 0.001, Max: 1000},
			{Name: "revolutions", Type: FieldFloat, Min: 0.001, Max: 1000},
			{Name: "phase", Type: FieldFloat, Min: -2 * math.Pi, Max: 2 * math.Pi},
			{Name: "plane", Type: FieldEnum, Enum: planeNames},
		},
	},
	KindSpiral: {
		Calculate:     calculateSpiral,
		DefaultParams: defaultSpiral,
		Rotational:    true,
		Schema: Schema{
			{Name: "center", Type: FieldPosition, Required: true},
			{Name: "startRadius", Type: FieldFloat, Min: 0, Max: 1000},
			{Name: "endRadius", Type: FieldFloat, Min: 0, Max: 1000},
			{Name: "revolutions", Type: FieldFloat, Min: 0.001, Max: 1000},
			{Name: "lift", Type: FieldFloat, Min: -1000, Max: 1000},
			{Name: "plane", Type: FieldEnum, Enum: planeNames},
		},
	},
	KindRose: {
		Calculate:     calculateRose,
		DefaultParams: defaultRose,
		Rotational:    true,
		Schema: Schema{
			{Name: "center", Type: FieldPosition, Required: true},
			{Name: "radius", Type: FieldFloat, Required: true, Min: 0.001, Max: 1000},
			{Name: "petals", Type: FieldFloat, Min: 1, Max: 32},
			{Name: "revolutions", Type: FieldFloat, Min: 0.001, Max: 1000},
			{Name: "plane", Type: FieldEnum, Enum: planeNames},
		},
	},
	KindCycloid: {
		Calculate:     calculateCycloid,
		DefaultParams: defaultCycloid,
		Rotational:    true,
		Schema: Schema{
			{Name: "center", Type: FieldPosition, Required: true},
			{Name: "fixedRadius", Type: FieldFloat, Required: true, Min: 0.001, Max: 1000},
			{Name: "rollingRadius", Type: FieldFloat, Required: true, Min: 0.001, Max: 1000},
			{Name: "variant", Type: FieldEnum, Enum: []string{"epi", "hypo"}},
			{Name: "revolutions", Type: FieldFloat, Min: 0.001, Max: 1000},
			{Name: "plane", Type: FieldEnum, Enum: planeNames},
		},
	},
	KindScan: {
		Calculate:     calculateScan,
		DefaultParams: defaultScan,
		Schema: Schema{
			{Name: "center", Type: FieldPosition, Required: true},
			{Name: "radius", Type: FieldFloat, Required: true, Min: 0.001, Max: 1000},
			{Name: "startAngle", Type: FieldFloat, Min: -2 * math.Pi, Max: 2 * math.Pi},
			{Name: "endAngle", Type: FieldFloat, Min: -2 * math.Pi, Max: 2 * math.Pi},
			{Name: "sweeps", Type: FieldFloat, Min: 0.001, Max: 100},
			{Name: "plane", Type: FieldEnum, Enum: planeNames},
		},
	},

	KindPendulum: {
		Calculate:     calculatePendulum,
		DefaultParams: defaultPendulum,
		Schema: Schema{
			{Name: "pivot", Type: FieldPosition, Required: true},
			{Name: "length", Type: FieldFloat, Required: true, Min: 0.001, Max: 100},
			{Name: "amplitude", Type: FieldFloat, Min: -math.Pi / 2, Max: math.Pi / 2},
			{Name: "damping", Type: FieldFloat, Min: 0, Max: 10},
			{Name: "gravity", Type: FieldFloat, Min: 0.001, Max: 100},
			{Name: "plane", Type: FieldEnum, Enum: planeNames},
		},
	},
	KindSpring: {
		Calculate:     calculateSpring,
		DefaultParams: defaultSpring,
		Schema: Schema{
			{Name: "equilibrium", Type: FieldPosition, Required: true},
			{Name: "displacement", Type: FieldPosition, Required: true},
			{Name: "stiffness", Type: FieldFloat, Min: 0.001, Max: 1000},
			{Name: "mass", Type: FieldFloat, Min: 0.001, Max: 1000},
			{Name: "damping", Type: FieldFloat, Min: 0, Max: 10},
		},
	},
	KindBounce: {
		Calculate:     calculateBounce,
		DefaultParams: defaultBounce,
		Schema: Schema{
			{Name: "origin", Type: FieldPosition, Required: true},
			{Name: "height", Type: FieldFloat, Required: true, Min: 0, Max: 1000},
			{Name: "gravity", Type: FieldFloat, Min: 0.001, Max: 100},
			{Name: "restitution", Type: FieldFloat, Min: 0, Max: 1},
		},
	},

	KindNoise: {
		Calculate:     calculateNoise,
		DefaultParams: defaultNoise,
		Prepare:       prepareNoise,
		Schema: Schema{
			{Name: "center", Type: FieldPosition, Required: true},
			{Name: "extent", Type: FieldPosition, Required: true},
			{Name: "octaves", Type: FieldInt, Min: 1, Max: 8},
			{Name: "persistence", Type: FieldFloat, Min: 0.01, Max: 1},
			{Name: "speed", Type: FieldFloat, Min: 0.001, Max: 100},
			{Name: "seed", Type: FieldFloat, Min: 1, Max: math.MaxUint32},
		},
	},
	KindRandomWalk: {
		Calculate:     calculateRandomWalk,
		DefaultParams: defaultRandomWalk,
		Prepare:       prepareRandomWalk,
		Schema: Schema{
			{Name: "center", Type: FieldPosition, Required: true},
			{Name: "extent", Type: FieldPosition, Required: true},
			{Name: "waypoints", Type: FieldInt, Min: 2, Max: 256},
			{Name: "smoothness", Type: FieldEnum, Enum: easingNames},
			{Name: "seed", Type: FieldFloat, Min: 1, Max: math.MaxUint32},
		},
	},

	KindDoppler: {
		Calculate:     calculateDoppler,
		DefaultParams: defaultDoppler,
		Schema: Schema{
			{Name: "listener", Type: FieldPosition, Required: true},
			{Name: "passDistance", Type: FieldFloat, Min: 0, Max: 1000},
			{Name: "span", Type: FieldFloat, Required: true, Min: 0.001, Max: 10000},
			{Name: "heading", Type: FieldFloat, Min: -2 * math.Pi, Max: 2 * math.Pi},
			{Name: "altitude", Type: FieldFloat, Min: -1000, Max: 1000},
		},
	},
	KindZoom: {
		Calculate:     calculateZoom,
		DefaultParams: defaultZoom,
		Schema: Schema{
			{Name: "center", Type: FieldPosition, Required: true},
			{Name: "startDistance", Type: FieldFloat, Required: true, Min: 0.001, Max: 1000},
			{Name: "endDistance", Type: FieldFloat, Required: true, Min: 0.001, Max: 1000},
			{Name: "startAzimuth", Type: FieldFloat, Min: -2 * math.Pi, Max: 2 * math.Pi},
			{Name: "rotate", Type: FieldBool},
			{Name: "rotations", Type: FieldFloat, Requires: "rotate", Min: 0.001, Max: 100},
			{Name: "plane", Type: FieldEnum, Enum: planeNames},
		},
	},
}

// Lookup returns the model registered for kind.
func Lookup(kind Kind) (Model, bool) {
	m, ok := registry[kind]
	return m, ok
}

// MustLookup is Lookup for kinds already validated.
func MustLookup(kind Kind) Model {
	m, ok := registry[kind]
	if !ok {
		panic(fmt.Sprintf("motion: unknown model kind %q", kind))
	}
	return m
}

// Kinds lists all registered model kinds in stable order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
