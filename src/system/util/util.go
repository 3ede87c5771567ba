// Package util holds small helpers shared across the system packages, the
// way the teacher's own util package backs its observer and mapper without
// being domain logic itself.
package util

import ikvalue "github.com/kalluancartoon/ikin-expert/src/system/value"

// CopyFields returns a shallow copy of a fact's field map, so the engine
// never aliases a caller-owned map into working memory (facts are supposed
// to be immutable once declared).
func CopyFields(fields map[string]ikvalue.Value) map[string]ikvalue.Value {
	out := make(map[string]ikvalue.Value, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// ToValueMap converts a plain Go scalar map (the shape a caller most
// naturally hands to Declare) into the typed map the fact registry stores.
func ToValueMap(fields map[string]interface{}) map[string]ikvalue.Value {
	out := make(map[string]ikvalue.Value, len(fields))
	for k, v := range fields {
		out[k] = ikvalue.Of(v)
	}
	return out
}
