package motion

import (
	"fmt"
	"math"
)

// FieldType describes how a parameter is rendered and validated.
type FieldType string

const (
	FieldFloat     FieldType = "float"
	FieldInt       FieldType = "int"
	FieldBool      FieldType = "bool"
	FieldEnum      FieldType = "enum"
	FieldPosition  FieldType = "position"
	FieldPositions FieldType = "positions"
)

// Field is one entry of a model's parameter schema. The schema drives the
// editor's parameter forms and the pre-playback validation pass; Calculate
// functions never consult it.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Min      float64
	Max      float64
	Enum     []string
	MinLen   int
	// Requires names a boolean parameter that must be true for this field
	// to be accepted, e.g. a rotation rate only valid with rotation on.
	Requires string
}

// Schema is the ordered parameter schema of one motion model.
type Schema []Field

// Validate checks p against the schema. It reports the first violation so
// the editor can point at a single offending field.
func (s Schema) Validate(p Params) error {
	for _, f := range s {
		v, present := p[f.Name]
		if !present {
			if f.Required {
				return fmt.Errorf("parameter %q is required", f.Name)
			}
			continue
		}
		if f.Requires != "" && !p.Bool(f.Requires, false) {
			return fmt.Errorf("parameter %q requires %q to be enabled", f.Name, f.Requires)
		}
		switch f.Type {
		case FieldFloat, FieldInt:
			x := p.Float(f.Name, math.NaN())
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("parameter %q must be numeric", f.Name)
			}
			if f.Min != 0 || f.Max != 0 {
				if x < f.Min || x > f.Max {
					return fmt.Errorf("parameter %q = %v out of range [%v, %v]", f.Name, x, f.Min, f.Max)
				}
			}
		case FieldBool:
			if _, ok := v.(bool); !ok {
				return fmt.Errorf("parameter %q must be a boolean", f.Name)
			}
		case FieldEnum:
			sv, ok := v.(string)
			if !ok {
				return fmt.Errorf("parameter %q must be a string", f.Name)
			}
			if !containsString(f.Enum, sv) {
				return fmt.Errorf("parameter %q = %q not one of %v", f.Name, sv, f.Enum)
			}
		case FieldPosition:
			pos, ok := v.(Position)
			if !ok {
				return fmt.Errorf("parameter %q must be a position", f.Name)
			}
			if !pos.IsFinite() {
				return fmt.Errorf("parameter %q must be finite", f.Name)
			}
		case FieldPositions:
			pts, ok := v.([]Position)
			if !ok {
				return fmt.Errorf("parameter %q must be a list of positions", f.Name)
			}
			if len(pts) < f.MinLen {
				return fmt.Errorf("parameter %q needs at least %d points, got %d", f.Name, f.MinLen, len(pts))
			}
			for i, pt := range pts {
				if !pt.IsFinite() {
					return fmt.Errorf("parameter %q point %d must be finite", f.Name, i)
				}
			}
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
