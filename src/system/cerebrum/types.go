package cerebrum

import (
	"strconv"
	"strings"

	"github.com/kalluancartoon/ikin-expert/src/system/fact"
	"github.com/kalluancartoon/ikin-expert/src/system/pattern"
)

// ActionFunc is the callable a compiled rule fires: one positional Fact per
// pattern, in pattern order (spec.md §6.3 boundary contract).
type ActionFunc func(facts []fact.Fact) error

// RuleSpec is what the authoring surface (rulebuilder) hands to
// RegisterRule: an uncompiled rule.
type RuleSpec struct {
	Name     string
	Salience int32
	Patterns []pattern.Pattern
	Action   ActionFunc
}

// VarBinding records, for one binding variable shared across a rule's
// patterns, where in a Token to find its value: which pattern index
// contributed the fact, and which field of that fact holds the value.
type VarBinding struct {
	Variable     string
	PatternIndex int
	Field        string
}

// Token is an ordered tuple of fact ids representing a partial or complete
// match of the first k patterns of a rule (spec.md §3). Tokens are
// value-equal iff their id-tuples are equal.
type Token struct {
	FactIDs []int64
}

// Key renders a Token's identity for use as a map key.
func (t *Token) Key() string {
	if t == nil || len(t.FactIDs) == 0 {
		return ""
	}
	parts := make([]string, len(t.FactIDs))
	for i, id := range t.FactIDs {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// extend returns a new Token with id appended; the receiver is left
// unmodified, since the same left token may be extended by several
// matching right facts independently.
func (t *Token) extend(id int64) *Token {
	ids := make([]int64, len(t.FactIDs)+1)
	copy(ids, t.FactIDs)
	ids[len(t.FactIDs)] = id
	return &Token{FactIDs: ids}
}

// Activation is a (rule, token) pair eligible to fire (spec.md §3).
type Activation struct {
	Rule     *CompiledRule
	Token    *Token
	Salience int32
	Sequence uint64

	// The heap position is tracked by the agenda package's heapItem
	// wrapper; Activation itself carries no heap state.
}

// Key identifies an activation by its owning rule and token, used by the
// terminal layer and the agenda's secondary index to enforce "at most one
// live activation per (rule, token)" (spec.md §3).
func (a *Activation) Key() string {
	return a.Rule.ID + "\x00" + a.Token.Key()
}

// AgendaKey, AgendaSalience and AgendaSequence implement agenda.Entry.
func (a *Activation) AgendaKey() string        { return a.Key() }
func (a *Activation) AgendaSalience() int32    { return a.Salience }
func (a *Activation) AgendaSequence() uint64   { return a.Sequence }
