// Package pattern implements the Pattern IR (spec.md §3/§4.2): one pattern's
// fact-type, intra-fact constraints and variable bindings, plus the
// canonicalization that lets semantically-equal filters share one alpha
// memory.
package pattern

import (
	"fmt"
	"sort"
	"strings"

	ikvalue "github.com/kalluancartoon/ikin-expert/src/system/value"
)

// Op is one of the intra-fact constraint operators spec.md §3 defines.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLte
	OpGt
	OpGte
	OpIn
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpNe:
		return "ne"
	case OpLt:
		return "lt"
	case OpLte:
		return "lte"
	case OpGt:
		return "gt"
	case OpGte:
		return "gte"
	case OpIn:
		return "in"
	default:
		return "unknown"
	}
}

// Ordered reports whether o requires an Ordered() Value kind.
func (o Op) Ordered() bool {
	switch o {
	case OpLt, OpLte, OpGt, OpGte:
		return true
	default:
		return false
	}
}

// Constraint is an intra-fact filter: (field, op, literal), with Literals
// populated instead of Literal when Op == OpIn.
type Constraint struct {
	Field    string
	Op       Op
	Literal  ikvalue.Value
	Literals []ikvalue.Value
}

// canonicalString renders a Constraint deterministically, for sorting and
// for the alpha-memory sharing key.
func (c Constraint) canonicalString() string {
	if c.Op == OpIn {
		parts := make([]string, len(c.Literals))
		for i, l := range c.Literals {
			parts[i] = l.String()
		}
		sort.Strings(parts)
		return fmt.Sprintf("%s %s [%s]", c.Field, c.Op, strings.Join(parts, ","))
	}
	return fmt.Sprintf("%s %s %s", c.Field, c.Op, c.Literal)
}

// Binding says "the value of Field on the matching fact is bound to
// Variable" (spec.md §3).
type Binding struct {
	Field    string
	Variable string
}

// Pattern is the compiled IR for one pattern of a rule.
type Pattern struct {
	FactType    string
	Constraints []Constraint
	Bindings    []Binding
}

// Vars returns the set of variable names this pattern binds.
func (p Pattern) Vars() map[string]bool {
	out := make(map[string]bool, len(p.Bindings))
	for _, b := range p.Bindings {
		out[b.Variable] = true
	}
	return out
}

// FieldForVar returns the field this pattern binds Variable to, if any.
func (p Pattern) FieldForVar(variable string) (string, bool) {
	for _, b := range p.Bindings {
		if b.Variable == variable {
			return b.Field, true
		}
	}
	return "", false
}

// CanonicalKey returns the alpha-memory sharing key for this pattern:
// fact-type plus constraints sorted by (field, op, literal), per spec.md
// §4.2 step 1. Two patterns on the same fact type with the same constraint
// set (independent of authoring order) produce the same key and therefore
// share one alpha memory; bindings do not participate in the key, since
// they don't filter anything.
func (p Pattern) CanonicalKey() string {
	cs := make([]Constraint, len(p.Constraints))
	copy(cs, p.Constraints)
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Field != cs[j].Field {
			return cs[i].Field < cs[j].Field
		}
		if cs[i].Op != cs[j].Op {
			return cs[i].Op < cs[j].Op
		}
		return cs[i].canonicalString() < cs[j].canonicalString()
	})
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.canonicalString()
	}
	return p.FactType + "|" + strings.Join(parts, "&")
}

// Satisfies evaluates every constraint of p against a fact's field values.
// It is the alpha network's filter test (spec.md §4.3). get must already
// have resolved fields the caller knows exist; Satisfies returns false (not
// an error) for a missing field, since that case is rejected at compile
// time (SchemaError) long before any fact is asserted.
func (p Pattern) Satisfies(get func(field string) (ikvalue.Value, bool)) bool {
	for _, c := range p.Constraints {
		v, ok := get(c.Field)
		if !ok {
			return false
		}
		if !evalConstraint(c, v) {
			return false
		}
	}
	return true
}

func evalConstraint(c Constraint, v ikvalue.Value) bool {
	switch c.Op {
	case OpEq:
		return v.Equal(c.Literal)
	case OpNe:
		return !v.Equal(c.Literal)
	case OpLt:
		return v.Less(c.Literal)
	case OpLte:
		return v.Less(c.Literal) || v.Equal(c.Literal)
	case OpGt:
		return c.Literal.Less(v)
	case OpGte:
		return c.Literal.Less(v) || v.Equal(c.Literal)
	case OpIn:
		for _, l := range c.Literals {
			if v.Equal(l) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
