package motion

// Params is the parameter bag an authored animation carries. Values are
// written by the editor and read by Calculate functions through the typed
// accessors below; missing or mistyped keys fall back to the given default
// so calculation never fails mid-playback.
type Params map[string]interface{}

// Float returns a numeric parameter.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// Int returns an integer parameter.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Bool returns a boolean parameter.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// String returns a string parameter.
func (p Params) String(key string, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Position returns a point parameter.
func (p Params) Position(key string, def Position) Position {
	if v, ok := p[key].(Position); ok {
		return v
	}
	return def
}

// Positions returns a control-point list parameter.
func (p Params) Positions(key string) []Position {
	if v, ok := p[key].([]Position); ok {
		return v
	}
	return nil
}

// Clone returns a shallow copy. Prepare hooks write derived state into the
// copy so the authored record is never mutated.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
