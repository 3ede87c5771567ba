package cerebrum

import (
	"strings"

	"github.com/kalluancartoon/ikin-expert/src/system/fact"
	"github.com/kalluancartoon/ikin-expert/src/system/pattern"
	ikvalue "github.com/kalluancartoon/ikin-expert/src/system/value"
)

// AlphaMemory holds the set of fact ids currently satisfying one
// (fact-type, canonical-constraint-set) combination, shared across every
// rule whose pattern canonicalizes to the same key (spec.md §3/§4.2/§4.3).
type AlphaMemory struct {
	key     string
	pattern pattern.Pattern
	ids     map[int64]bool

	// joins is the set of join nodes subscribed to this memory as their
	// right input, across every rule that uses this canonical filter.
	joins []*JoinNode
	// indexes holds, per subscribing join node, a hash index keyed by that
	// join's key-variable composite (spec.md §4.3: "per outgoing join node,
	// a hash index whose key fields are that join node's join key").
	indexes map[*JoinNode]map[string][]int64
}

func newAlphaMemory(key string, p pattern.Pattern) *AlphaMemory {
	return &AlphaMemory{
		key:     key,
		pattern: p,
		ids:     make(map[int64]bool),
		indexes: make(map[*JoinNode]map[string][]int64),
	}
}

// Contains reports whether id currently passes this memory's filter.
func (am *AlphaMemory) Contains(id int64) bool { return am.ids[id] }

// Ids returns every fact id currently in this memory, in no particular
// order (spec.md §4.4: match discovery order is unspecified).
func (am *AlphaMemory) Ids() []int64 {
	out := make([]int64, 0, len(am.ids))
	for id := range am.ids {
		out = append(out, id)
	}
	return out
}

func (am *AlphaMemory) subscribe(j *JoinNode) {
	am.joins = append(am.joins, j)
	am.indexes[j] = make(map[string][]int64)
}

func (am *AlphaMemory) indexKeyFor(j *JoinNode, get func(field string) (ikvalue.Value, bool)) (string, bool) {
	if len(j.joinKeyVars) == 0 {
		return "", true // empty join key: everything shares one bucket (Cartesian, spec.md §4.4)
	}
	parts := make([]string, len(j.joinKeyVars))
	for i, v := range j.joinKeyVars {
		field, ok := am.pattern.FieldForVar(v)
		if !ok {
			return "", false
		}
		val, ok := get(field)
		if !ok {
			return "", false
		}
		parts[i] = val.String()
	}
	return strings.Join(parts, "\x1f"), true
}

// assert inserts a passing fact id and updates every subscriber's index.
func (am *AlphaMemory) assert(id int64, f fact.Fact) {
	am.ids[id] = true
	for _, j := range am.joins {
		key, ok := am.indexKeyFor(j, f.Get)
		if !ok {
			continue
		}
		am.indexes[j][key] = append(am.indexes[j][key], id)
	}
}

// lookup returns the ids indexed under key for join node j.
func (am *AlphaMemory) lookup(j *JoinNode, key string) []int64 {
	return am.indexes[j][key]
}

// retract removes id and its index entries.
func (am *AlphaMemory) retract(id int64) {
	delete(am.ids, id)
	for j, idx := range am.indexes {
		for key, ids := range idx {
			filtered := ids[:0]
			for _, existing := range ids {
				if existing != id {
					filtered = append(filtered, existing)
				}
			}
			if len(filtered) == 0 {
				delete(idx, key)
			} else {
				idx[key] = filtered
			}
		}
		_ = j
	}
}

// AlphaNetwork owns every AlphaMemory, keyed by canonical filter and
// grouped by fact type for dispatch on assert/retract (spec.md §4.3).
type AlphaNetwork struct {
	memories map[string]*AlphaMemory
	byType   map[string][]*AlphaMemory
}

func newAlphaNetwork() *AlphaNetwork {
	return &AlphaNetwork{
		memories: make(map[string]*AlphaMemory),
		byType:   make(map[string][]*AlphaMemory),
	}
}

// getOrCreate returns the shared AlphaMemory for p's canonical key,
// creating and registering it as a subscriber of p.FactType if it did not
// already exist (spec.md §4.2 step 2). The bool result reports whether a
// new memory was created.
func (an *AlphaNetwork) getOrCreate(p pattern.Pattern) (*AlphaMemory, bool) {
	key := p.CanonicalKey()
	if am, ok := an.memories[key]; ok {
		return am, false
	}
	am := newAlphaMemory(key, p)
	an.memories[key] = am
	an.byType[p.FactType] = append(an.byType[p.FactType], am)
	return am, true
}

// Assert filters an asserted fact against every alpha memory subscribed to
// its type, inserting into (and indexing within) each that matches, then
// notifying every join node subscribed to that memory.
func (an *AlphaNetwork) Assert(id int64, f fact.Fact, notify func(j *JoinNode, id int64)) {
	for _, am := range an.byType[f.Type] {
		if !am.pattern.Satisfies(f.Get) {
			continue
		}
		am.assert(id, f)
		for _, j := range am.joins {
			notify(j, id)
		}
	}
}

// Retract removes id from every alpha memory containing it, notifying every
// subscribed join node to withdraw dependent tokens.
func (an *AlphaNetwork) Retract(id int64, f fact.Fact, notify func(j *JoinNode, id int64)) {
	for _, am := range an.byType[f.Type] {
		if !am.Contains(id) {
			continue
		}
		am.retract(id)
		for _, j := range am.joins {
			notify(j, id)
		}
	}
}
