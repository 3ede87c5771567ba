// Package fact implements the Fact Registry & WME layer (spec.md §4.1):
// stable id assignment, working-memory storage, and reset.
package fact

import (
	ikvalue "github.com/kalluancartoon/ikin-expert/src/system/value"

	"github.com/kalluancartoon/ikin-expert/src/system/util"
)

// Fact is an immutable structured record of a declared fact type. Identity
// within the engine is by the id the Registry assigns on Declare, not by
// value — two Facts with identical Type/Fields declared separately receive
// distinct ids (spec.md §3 bag semantics, R2).
type Fact struct {
	Type   string
	Fields map[string]ikvalue.Value
}

// Get returns the value bound to field, and whether the field is present.
func (f Fact) Get(field string) (ikvalue.Value, bool) {
	v, ok := f.Fields[field]
	return v, ok
}

// WME is a Working Memory Element: an asserted Fact together with the id
// the registry assigned it.
type WME struct {
	ID   int64
	Fact Fact
}

// Registry owns working memory: the id -> Fact table and the monotonic id
// counter. A fact id, once issued, is not reused until the next Reset
// (spec.md §3 invariant); Reset restarts the counter, so ids issued after
// it begin again at 1.
type Registry struct {
	nextID int64
	facts  map[int64]Fact
}

// NewRegistry returns an empty fact registry with id counting starting at 1.
func NewRegistry() *Registry {
	return &Registry{
		nextID: 1,
		facts:  make(map[int64]Fact),
	}
}

// Declare assigns the next id to f, stores it, and returns the id. Callers
// (the engine facade) are responsible for pushing the new WME into the
// alpha network afterward.
func (r *Registry) Declare(f Fact) int64 {
	id := r.nextID
	r.nextID++
	f.Fields = util.CopyFields(f.Fields)
	r.facts[id] = f
	return id
}

// Retract removes id from working memory. It reports false if id was not
// present, letting the caller surface an UnknownFactError.
func (r *Registry) Retract(id int64) (Fact, bool) {
	f, ok := r.facts[id]
	if !ok {
		return Fact{}, false
	}
	delete(r.facts, id)
	return f, true
}

// Get looks up a fact by id in O(1), per spec.md §4.1.
func (r *Registry) Get(id int64) (Fact, bool) {
	f, ok := r.facts[id]
	return f, ok
}

// Len returns the number of facts currently in working memory.
func (r *Registry) Len() int {
	return len(r.facts)
}

// Reset empties working memory and restarts the id counter. Per spec.md
// §4.1, reset(); declare*; reset() must produce an empty engine regardless
// of history (I4) — resetting the counter here is what makes that hold: a
// fresh Reset always begins issuing ids from 1 again.
func (r *Registry) Reset() {
	r.nextID = 1
	r.facts = make(map[int64]Fact)
}
