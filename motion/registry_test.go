package motion

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Every registered model must produce defaults that pass its own schema and
// stay finite across the whole playback range.
func TestRegistryContracts(t *testing.T) {
	seed := Position{X: 1, Y: -2, Z: 0.5}
	const duration = 10.0

	for _, kind := range Kinds() {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			model, ok := Lookup(kind)
			require.True(t, ok)
			require.NotNil(t, model.Calculate)
			require.NotNil(t, model.DefaultParams)

			params := model.DefaultParams(seed)
			require.NoError(t, model.Schema.Validate(params))

			if model.Prepare != nil {
				params = model.Prepare(params)
			}

			for i := 0; i <= 100; i++ {
				at := float64(i) / 100 * duration
				pos := model.Calculate(params, at, duration)
				require.True(t, pos.IsFinite(), "kind %s at t=%v", kind, at)
			}

			// Out-of-range times must stay finite too.
			require.True(t, model.Calculate(params, -1, duration).IsFinite())
			require.True(t, model.Calculate(params, duration*100, duration).IsFinite())
		})
	}
}

func TestLookupUnknownKind(t *testing.T) {
	_, ok := Lookup("wobble")
	require.False(t, ok)
	require.Panics(t, func() { MustLookup("wobble") })
}

func TestSchemaValidation(t *testing.T) {
	model := MustLookup(KindCircular)

	t.Run("missing required field", func(t *testing.T) {
		err := model.Schema.Validate(Params{"radius": 5.0})
		require.Error(t, err)
		require.Contains(t, err.Error(), "center")
	})

	t.Run("out of range", func(t *testing.T) {
		p := model.DefaultParams(Position{})
		p["radius"] = -3.0
		require.Error(t, model.Schema.Validate(p))
	})

	t.Run("bad enum", func(t *testing.T) {
		p := model.DefaultParams(Position{})
		p["plane"] = "WZ"
		require.Error(t, model.Schema.Validate(p))
	})

	t.Run("dependent parameter needs its gate", func(t *testing.T) {
		zoom := MustLookup(KindZoom)
		p := zoom.DefaultParams(Position{})
		p["rotations"] = 2.0
		require.Error(t, zoom.Schema.Validate(p))

		p["rotate"] = true
		require.NoError(t, zoom.Schema.Validate(p))
	})

	t.Run("array length", func(t *testing.T) {
		bezier := MustLookup(KindBezier)
		p := bezier.DefaultParams(Position{})
		p["points"] = p.Positions("points")[:2]
		require.Error(t, bezier.Schema.Validate(p))
	})
}
