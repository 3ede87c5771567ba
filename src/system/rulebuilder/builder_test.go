package rulebuilder

import (
	"testing"

	"github.com/kalluancartoon/ikin-expert/src/system/fact"
	"github.com/kalluancartoon/ikin-expert/src/system/pattern"
)

func Test_Build_SinglePattern(t *testing.T) {
	spec := New("urgent-heartbeat").
		Salience(100).
		Pattern("Patient").Gt("heartbeat", 120).
		Action(func(facts []fact.Fact) error { return nil }).
		Build()

	if spec.Name != "urgent-heartbeat" || spec.Salience != 100 {
		t.Fatalf("unexpected name/salience: %+v", spec)
	}
	if len(spec.Patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(spec.Patterns))
	}
	p := spec.Patterns[0]
	if p.FactType != "Patient" || len(p.Constraints) != 1 || p.Constraints[0].Op != pattern.OpGt {
		t.Fatalf("unexpected compiled pattern: %+v", p)
	}
	if spec.Action == nil {
		t.Fatalf("expected action to be set")
	}
}

func Test_Build_MultiPatternWithBinding(t *testing.T) {
	spec := New("vip-large-txn").
		Pattern("Client").Eq("status", "VIP").Bind("id", "v").
		Pattern("Txn").Gt("amount", 5000).Bind("client_id", "v").
		Action(func(facts []fact.Fact) error { return nil }).
		Build()

	if len(spec.Patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(spec.Patterns))
	}
	if !spec.Patterns[0].Vars()["v"] {
		t.Fatalf("expected pattern 0 to bind v")
	}
	if !spec.Patterns[1].Vars()["v"] {
		t.Fatalf("expected pattern 1 to bind v")
	}
	field, ok := spec.Patterns[1].FieldForVar("v")
	if !ok || field != "client_id" {
		t.Fatalf("expected pattern 1's v bound to client_id, got (%q, %v)", field, ok)
	}
}

func Test_Build_InConstraint(t *testing.T) {
	spec := New("vip-or-gold").
		Pattern("Client").In("status", "VIP", "Gold").
		Action(func(facts []fact.Fact) error { return nil }).
		Build()

	c := spec.Patterns[0].Constraints[0]
	if c.Op != pattern.OpIn || len(c.Literals) != 2 {
		t.Fatalf("unexpected in-constraint: %+v", c)
	}
}

func Test_Build_DefaultSalienceIsZero(t *testing.T) {
	spec := New("no-salience").
		Pattern("A").
		Action(func(facts []fact.Fact) error { return nil }).
		Build()
	if spec.Salience != 0 {
		t.Fatalf("expected default salience 0, got %d", spec.Salience)
	}
}
