// Package value implements the small closed set of scalar types a Fact
// field can hold, and the equality/ordering rules the Alpha network's
// constraint evaluator (spec.md §4.3) needs.
package value

import "fmt"

// Kind tags which branch of Value is populated.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Ordered reports whether values of this kind support lt/lte/gt/gte.
func (k Kind) Ordered() bool {
	return k == KindString || k == KindInt || k == KindFloat
}

// Value is a typed scalar: exactly one of the fields below is meaningful,
// selected by Kind.
type Value struct {
	Kind Kind
	S    string
	I    int64
	F    float64
	B    bool
}

func String(s string) Value { return Value{Kind: KindString, S: s} }
func Int(i int64) Value     { return Value{Kind: KindInt, I: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, F: f} }
func Bool(b bool) Value     { return Value{Kind: KindBool, B: b} }

// Of infers a Value from a plain Go scalar. It panics on unsupported types.
// It is called on literals baked into compiled patterns and on the field
// values passed to Engine.Declare; Declare's validation rejects a declared
// field of an unsupported type first, but a value under a field name the
// fact type does not declare reaches Of unchecked.
func Of(v interface{}) Value {
	switch t := v.(type) {
	case string:
		return String(t)
	case int:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case bool:
		return Bool(t)
	default:
		panic(fmt.Sprintf("value: unsupported scalar type %T", v))
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.S
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindFloat:
		return fmt.Sprintf("%g", v.F)
	case KindBool:
		return fmt.Sprintf("%t", v.B)
	default:
		return "<invalid>"
	}
}

// Equal compares two values of the same Kind. Values of differing Kind are
// never equal.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.S == other.S
	case KindInt:
		return v.I == other.I
	case KindFloat:
		return v.F == other.F
	case KindBool:
		return v.B == other.B
	}
	return false
}

// Less reports v < other. Both operands must be Ordered() and of the same
// Kind; callers (the pattern compiler) are responsible for rejecting
// unordered or mixed-kind comparisons before this is ever invoked.
func (v Value) Less(other Value) bool {
	switch v.Kind {
	case KindString:
		return v.S < other.S
	case KindInt:
		return v.I < other.I
	case KindFloat:
		return v.F < other.F
	default:
		return false
	}
}
