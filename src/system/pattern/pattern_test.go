package pattern

import (
	"testing"

	ikvalue "github.com/kalluancartoon/ikin-expert/src/system/value"
)

func Test_CanonicalKey_OrderIndependent(t *testing.T) {
	a := Pattern{
		FactType: "Patient",
		Constraints: []Constraint{
			{Field: "heartbeat", Op: OpGt, Literal: ikvalue.Int(120)},
			{Field: "name", Op: OpEq, Literal: ikvalue.String("A")},
		},
	}
	b := Pattern{
		FactType: "Patient",
		Constraints: []Constraint{
			{Field: "name", Op: OpEq, Literal: ikvalue.String("A")},
			{Field: "heartbeat", Op: OpGt, Literal: ikvalue.Int(120)},
		},
	}
	if a.CanonicalKey() != b.CanonicalKey() {
		t.Fatalf("canonical keys should match regardless of authoring order: %q vs %q", a.CanonicalKey(), b.CanonicalKey())
	}
}

func Test_CanonicalKey_DiffersOnConstraint(t *testing.T) {
	a := Pattern{FactType: "Patient", Constraints: []Constraint{{Field: "heartbeat", Op: OpGt, Literal: ikvalue.Int(120)}}}
	b := Pattern{FactType: "Patient", Constraints: []Constraint{{Field: "heartbeat", Op: OpGt, Literal: ikvalue.Int(100)}}}
	if a.CanonicalKey() == b.CanonicalKey() {
		t.Fatalf("patterns with different literals must not share a canonical key")
	}
}

func Test_Satisfies(t *testing.T) {
	p := Pattern{
		FactType:    "Patient",
		Constraints: []Constraint{{Field: "heartbeat", Op: OpGt, Literal: ikvalue.Int(120)}},
	}
	get := func(field string) (ikvalue.Value, bool) {
		if field == "heartbeat" {
			return ikvalue.Int(145), true
		}
		return ikvalue.Value{}, false
	}
	if !p.Satisfies(get) {
		t.Fatalf("expected pattern to be satisfied by heartbeat 145")
	}
	getLow := func(field string) (ikvalue.Value, bool) { return ikvalue.Int(80), true }
	if p.Satisfies(getLow) {
		t.Fatalf("expected pattern not to be satisfied by heartbeat 80")
	}
}

func Test_Satisfies_MissingFieldFails(t *testing.T) {
	p := Pattern{FactType: "Patient", Constraints: []Constraint{{Field: "heartbeat", Op: OpEq, Literal: ikvalue.Int(1)}}}
	get := func(field string) (ikvalue.Value, bool) { return ikvalue.Value{}, false }
	if p.Satisfies(get) {
		t.Fatalf("a missing field must fail Satisfies")
	}
}

func Test_Vars_And_FieldForVar(t *testing.T) {
	p := Pattern{
		FactType: "Client",
		Bindings: []Binding{{Field: "id", Variable: "v"}},
	}
	if !p.Vars()["v"] {
		t.Fatalf("expected v to be a bound variable")
	}
	field, ok := p.FieldForVar("v")
	if !ok || field != "id" {
		t.Fatalf("FieldForVar(v) = (%q, %v), want (id, true)", field, ok)
	}
	if _, ok := p.FieldForVar("missing"); ok {
		t.Fatalf("FieldForVar should report false for an unbound variable")
	}
}

func Test_In_Constraint(t *testing.T) {
	p := Pattern{
		FactType: "Client",
		Constraints: []Constraint{
			{Field: "status", Op: OpIn, Literals: []ikvalue.Value{ikvalue.String("VIP"), ikvalue.String("Gold")}},
		},
	}
	get := func(field string) (ikvalue.Value, bool) { return ikvalue.String("VIP"), true }
	if !p.Satisfies(get) {
		t.Fatalf("expected VIP to satisfy the in-constraint")
	}
	getOther := func(field string) (ikvalue.Value, bool) { return ikvalue.String("Common"), true }
	if p.Satisfies(getOther) {
		t.Fatalf("expected Common not to satisfy the in-constraint")
	}
}
