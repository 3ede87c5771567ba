// Package rulebuilder is the fluent authoring surface standing in for the
// out-of-scope §6.3 rule-authoring layer: it turns a sequence of
// Pattern/Bind/Salience/Action calls into a pattern.Pattern slice and a
// cerebrum.RuleSpec, the way the teacher's configBuilder.ConfigBuilder turns
// a sequence of SetName/AddDependency calls into a transport.TransportEntity.
package rulebuilder

import (
	"github.com/kalluancartoon/ikin-expert/src/system/cerebrum"
	"github.com/kalluancartoon/ikin-expert/src/system/pattern"
	ikvalue "github.com/kalluancartoon/ikin-expert/src/system/value"
)

// Builder assembles one rule: its name, salience, ordered patterns and
// action. Zero value is not usable; construct with New.
type Builder struct {
	name     string
	salience int32
	patterns []*patternBuilder
	action   cerebrum.ActionFunc
}

// New starts a rule named name, with salience defaulting to 0.
func New(name string) *Builder {
	return &Builder{name: name}
}

// Salience sets the rule's conflict-resolution priority.
func (b *Builder) Salience(s int32) *Builder {
	b.salience = s
	return b
}

// Pattern opens a new pattern matching facts of factType. Constraints and
// bindings for it are added via the returned patternBuilder's own chain
// before moving on to the next Pattern call.
func (b *Builder) Pattern(factType string) *patternBuilder {
	pb := &patternBuilder{rule: b, factType: factType}
	b.patterns = append(b.patterns, pb)
	return pb
}

// Action sets the callable to invoke, one positional fact per pattern in
// declaration order. Build renders the finished rule.
func (b *Builder) Action(fn cerebrum.ActionFunc) *Builder {
	b.action = fn
	return b
}

// Build renders the accumulated calls into a cerebrum.RuleSpec.
func (b *Builder) Build() cerebrum.RuleSpec {
	patterns := make([]pattern.Pattern, len(b.patterns))
	for i, pb := range b.patterns {
		patterns[i] = pb.build()
	}
	return cerebrum.RuleSpec{
		Name:     b.name,
		Salience: b.salience,
		Patterns: patterns,
		Action:   b.action,
	}
}

// patternBuilder accumulates one pattern's constraints and bindings, then
// returns to the parent Builder via Pattern/Action/Salience so calls chain
// naturally across pattern boundaries.
type patternBuilder struct {
	rule        *Builder
	factType    string
	constraints []pattern.Constraint
	bindings    []pattern.Binding
}

// Eq adds an equality constraint against a literal Go scalar.
func (pb *patternBuilder) Eq(field string, literal interface{}) *patternBuilder {
	pb.constraints = append(pb.constraints, pattern.Constraint{Field: field, Op: pattern.OpEq, Literal: ikvalue.Of(literal)})
	return pb
}

// Ne adds an inequality constraint.
func (pb *patternBuilder) Ne(field string, literal interface{}) *patternBuilder {
	pb.constraints = append(pb.constraints, pattern.Constraint{Field: field, Op: pattern.OpNe, Literal: ikvalue.Of(literal)})
	return pb
}

// Lt/Lte/Gt/Gte add ordered comparison constraints.
func (pb *patternBuilder) Lt(field string, literal interface{}) *patternBuilder {
	pb.constraints = append(pb.constraints, pattern.Constraint{Field: field, Op: pattern.OpLt, Literal: ikvalue.Of(literal)})
	return pb
}

func (pb *patternBuilder) Lte(field string, literal interface{}) *patternBuilder {
	pb.constraints = append(pb.constraints, pattern.Constraint{Field: field, Op: pattern.OpLte, Literal: ikvalue.Of(literal)})
	return pb
}

func (pb *patternBuilder) Gt(field string, literal interface{}) *patternBuilder {
	pb.constraints = append(pb.constraints, pattern.Constraint{Field: field, Op: pattern.OpGt, Literal: ikvalue.Of(literal)})
	return pb
}

func (pb *patternBuilder) Gte(field string, literal interface{}) *patternBuilder {
	pb.constraints = append(pb.constraints, pattern.Constraint{Field: field, Op: pattern.OpGte, Literal: ikvalue.Of(literal)})
	return pb
}

// In adds a set-membership constraint.
func (pb *patternBuilder) In(field string, literals ...interface{}) *patternBuilder {
	vals := make([]ikvalue.Value, len(literals))
	for i, l := range literals {
		vals[i] = ikvalue.Of(l)
	}
	pb.constraints = append(pb.constraints, pattern.Constraint{Field: field, Op: pattern.OpIn, Literals: vals})
	return pb
}

// Bind binds field's value to variable for use as a join key or in the
// action's resolved facts.
func (pb *patternBuilder) Bind(field, variable string) *patternBuilder {
	pb.bindings = append(pb.bindings, pattern.Binding{Field: field, Variable: variable})
	return pb
}

// Pattern, Salience and Action delegate back to the parent Builder, so a
// call chain can move fluently between pattern-level and rule-level calls.
func (pb *patternBuilder) Pattern(factType string) *patternBuilder { return pb.rule.Pattern(factType) }
func (pb *patternBuilder) Salience(s int32) *Builder               { return pb.rule.Salience(s) }
func (pb *patternBuilder) Action(fn cerebrum.ActionFunc) *Builder  { return pb.rule.Action(fn) }
func (pb *patternBuilder) Build() cerebrum.RuleSpec                { return pb.rule.Build() }

func (pb *patternBuilder) build() pattern.Pattern {
	return pattern.Pattern{
		FactType:    pb.factType,
		Constraints: pb.constraints,
		Bindings:    pb.bindings,
	}
}
