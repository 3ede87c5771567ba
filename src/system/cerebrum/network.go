// Package cerebrum implements the Rete network proper: the alpha network
// (alpha.go), the beta join chain (beta.go), the terminal/activation layer
// (terminal.go), and the compiler that wires a RuleSpec into all three
// (this file). It is the engine's core, named for the teacher's own
// network-and-scheduling package.
package cerebrum

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/kalluancartoon/ikin-expert/src/system/agenda"
	"github.com/kalluancartoon/ikin-expert/src/system/archivist"
	"github.com/kalluancartoon/ikin-expert/src/system/fact"
	"github.com/kalluancartoon/ikin-expert/src/system/pattern"
	"github.com/kalluancartoon/ikin-expert/src/system/schema"
	ikvalue "github.com/kalluancartoon/ikin-expert/src/system/value"
)

// CompiledRule is a RuleSpec after compilation: its beta chain is already
// wired into the shared alpha network and its terminal into the agenda.
type CompiledRule struct {
	ID       string
	Name     string
	Salience int32
	Patterns []pattern.Pattern
	Action   ActionFunc

	joins    []*JoinNode
	terminal *TerminalNode
}

// Network owns the whole compiled Rete graph: the shared alpha network,
// every compiled rule's beta chain, and the shared agenda their terminals
// feed. It is constructed once per engine instance.
type Network struct {
	alpha    *AlphaNetwork
	registry *fact.Registry
	schema   *schema.Registry
	agenda   *agenda.Agenda
	log      *archivist.Archivist

	seq   uint64
	rules map[string]*CompiledRule
}

// NewNetwork returns an empty network bound to the given fact registry,
// schema registry and agenda. All three are owned by the caller (the
// engine facade); the fact and schema registries outlive the network across
// Reset calls, while Reset hands each new network a fresh agenda.
func NewNetwork(registry *fact.Registry, schemaReg *schema.Registry, ag *agenda.Agenda, log *archivist.Archivist) *Network {
	return &Network{
		alpha:    newAlphaNetwork(),
		registry: registry,
		schema:   schemaReg,
		agenda:   ag,
		log:      log,
		rules:    make(map[string]*CompiledRule),
	}
}

func (n *Network) nextSeq() uint64 {
	n.seq++
	return n.seq
}

// CompileRule implements spec.md §4.2's compilation algorithm: canonicalize
// each pattern's constraints, get-or-create its shared alpha memory, derive
// each join's key as Vars(i-1) ∩ Vars(i), build the dummy-top-rooted beta
// chain, and attach a terminal node. Facts already in working memory that
// match are backfilled into the new rule's beta chain immediately, so
// RegisterRule after Declare behaves as if the rule had always existed.
func (n *Network) CompileRule(spec RuleSpec) (*CompiledRule, error) {
	if len(spec.Patterns) == 0 {
		return nil, &SchemaError{Rule: spec.Name, Pattern: 0, Reason: "rule has no patterns"}
	}

	for pi, p := range spec.Patterns {
		if _, ok := n.schema.Lookup(p.FactType); !ok {
			return nil, &SchemaError{Rule: spec.Name, Pattern: pi, Reason: fmt.Sprintf("unknown fact type %q", p.FactType)}
		}
		for _, c := range p.Constraints {
			kind, ok := n.schema.FieldKind(p.FactType, c.Field)
			if !ok {
				return nil, &SchemaError{Rule: spec.Name, Pattern: pi, Reason: fmt.Sprintf("unknown field %q on fact type %q", c.Field, p.FactType)}
			}
			if c.Op.Ordered() && !kind.Ordered() {
				return nil, &SchemaError{Rule: spec.Name, Pattern: pi, Reason: fmt.Sprintf("ordering operator %q on non-ordered field %q (%s)", c.Op, c.Field, kind)}
			}
			if c.Op == pattern.OpIn {
				for _, lit := range c.Literals {
					if lit.Kind != kind {
						return nil, &SchemaError{Rule: spec.Name, Pattern: pi, Reason: fmt.Sprintf("literal kind %s does not match field %q (%s)", lit.Kind, c.Field, kind)}
					}
				}
			} else if c.Literal.Kind != kind {
				return nil, &SchemaError{Rule: spec.Name, Pattern: pi, Reason: fmt.Sprintf("literal kind %s does not match field %q (%s)", c.Literal.Kind, c.Field, kind)}
			}
		}
		for _, b := range p.Bindings {
			if _, ok := n.schema.FieldKind(p.FactType, b.Field); !ok {
				return nil, &SchemaError{Rule: spec.Name, Pattern: pi, Reason: fmt.Sprintf("binding to unknown field %q on fact type %q", b.Field, p.FactType)}
			}
		}
	}

	varBindings := make(map[string]VarBinding)
	order := make([]string, 0)
	for pi, p := range spec.Patterns {
		for _, b := range p.Bindings {
			kind, _ := n.schema.FieldKind(p.FactType, b.Field)
			if existing, ok := varBindings[b.Variable]; ok {
				existingKind, _ := n.schema.FieldKind(spec.Patterns[existing.PatternIndex].FactType, existing.Field)
				if existingKind != kind {
					return nil, &SchemaError{Rule: spec.Name, Pattern: pi, Reason: fmt.Sprintf("variable %q bound to incompatible types (%s vs %s)", b.Variable, existingKind, kind)}
				}
				continue
			}
			varBindings[b.Variable] = VarBinding{Variable: b.Variable, PatternIndex: pi, Field: b.Field}
			order = append(order, b.Variable)
		}
	}

	resolve := func(t *Token, variable string) (ikvalue.Value, bool) {
		vb, ok := varBindings[variable]
		if !ok || vb.PatternIndex >= len(t.FactIDs) {
			return ikvalue.Value{}, false
		}
		f, ok := n.registry.Get(t.FactIDs[vb.PatternIndex])
		if !ok {
			return ikvalue.Value{}, false
		}
		return f.Get(vb.Field)
	}

	joinKeys := make([][]string, len(spec.Patterns))
	cum := make(map[string]bool)
	for i, p := range spec.Patterns {
		pv := p.Vars()
		var jk []string
		for v := range cum {
			if pv[v] {
				jk = append(jk, v)
			}
		}
		sort.Strings(jk)
		joinKeys[i] = jk
		for v := range pv {
			cum[v] = true
		}
	}

	rule := &CompiledRule{
		ID:       uuid.NewString(),
		Name:     spec.Name,
		Salience: spec.Salience,
		Patterns: spec.Patterns,
		Action:   spec.Action,
	}

	dummy := newBetaMemory(nil, resolve)
	emptyTok := &Token{}
	dummy.tokens[emptyTok.Key()] = emptyTok
	dummy.index[""] = []*Token{emptyTok}

	leftSource := dummy
	joins := make([]*JoinNode, 0, len(spec.Patterns))
	for i, p := range spec.Patterns {
		am, created := n.alpha.getOrCreate(p)
		if created {
			// A new memory starts out holding every fact already in working
			// memory that passes its filter. Live ids all lie below the next
			// id to be issued, so the scan stops once all of them are seen.
			for id, seen := int64(1), 0; seen < n.registry.Len(); id++ {
				f, ok := n.registry.Get(id)
				if !ok {
					continue
				}
				seen++
				if f.Type == p.FactType && p.Satisfies(f.Get) {
					am.ids[id] = true
				}
			}
		}
		j := &JoinNode{
			patternIndex: i,
			joinKeyVars:  joinKeys[i],
			alpha:        am,
			leftSource:   leftSource,
		}
		am.subscribe(j)
		leftSource.consumer = j

		var outputKeyVars []string
		if i+1 < len(spec.Patterns) {
			outputKeyVars = joinKeys[i+1]
		}
		j.output = newBetaMemory(outputKeyVars, resolve)
		joins = append(joins, j)
		leftSource = j.output
	}

	terminal := &TerminalNode{
		rule:        rule,
		agenda:      n.agenda,
		activations: make(map[string]*Activation),
		nextSeq:     n.nextSeq,
	}
	leftSource.consumer = terminal

	rule.joins = joins
	rule.terminal = terminal
	n.rules[rule.ID] = rule

	// Prime new alpha subscriptions' indexes with facts already in working
	// memory, then replay pattern-0 matches through the chain so a rule
	// registered after some Declare calls behaves as if it always existed.
	for _, j := range joins {
		if len(j.alpha.ids) == 0 {
			continue
		}
		idx := make(map[string][]int64)
		for id := range j.alpha.ids {
			f, ok := n.registry.Get(id)
			if !ok {
				continue
			}
			if key, ok := j.alpha.indexKeyFor(j, f.Get); ok {
				idx[key] = append(idx[key], id)
			}
		}
		j.alpha.indexes[j] = idx
	}
	if len(joins) > 0 {
		j0 := joins[0]
		for id := range j0.alpha.ids {
			f, ok := n.registry.Get(id)
			if !ok {
				continue
			}
			j0.onRightActivate(id, f)
		}
	}

	return rule, nil
}

// Declare propagates a newly-registered WME through the alpha network and
// every subscribed join's right activation.
func (n *Network) Declare(id int64, f fact.Fact) {
	n.alpha.Assert(id, f, func(j *JoinNode, id int64) {
		j.onRightActivate(id, f)
	})
}

// Retract propagates a withdrawn WME through the alpha network and every
// subscribed join's right deactivation, cascading token removal down each
// affected rule's beta chain and out of the agenda.
func (n *Network) Retract(id int64, f fact.Fact) {
	n.alpha.Retract(id, f, func(j *JoinNode, id int64) {
		j.onRightDeactivate(id)
	})
}

// Rules returns every currently compiled rule, for introspection.
func (n *Network) Rules() []*CompiledRule {
	out := make([]*CompiledRule, 0, len(n.rules))
	for _, r := range n.rules {
		out = append(out, r)
	}
	return out
}
