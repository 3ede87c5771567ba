package expert

import (
	"errors"
	"testing"

	"github.com/kalluancartoon/ikin-expert/src/system/fact"
	"github.com/kalluancartoon/ikin-expert/src/system/rulebuilder"
	ikvalue "github.com/kalluancartoon/ikin-expert/src/system/value"
)

func newTestEngine() *Engine {
	e := New(Settings{Ident: "test"})
	e.RegisterFactType("Patient", []FieldSpec{
		{Name: "name", Kind: ikvalue.KindString},
		{Name: "heartbeat", Kind: ikvalue.KindInt},
	})
	e.RegisterFactType("Client", []FieldSpec{
		{Name: "id", Kind: ikvalue.KindString},
		{Name: "status", Kind: ikvalue.KindString},
		{Name: "active", Kind: ikvalue.KindBool},
	})
	e.RegisterFactType("Txn", []FieldSpec{
		{Name: "client_id", Kind: ikvalue.KindString},
		{Name: "amount", Kind: ikvalue.KindInt},
	})
	e.RegisterFactType("A", nil)
	e.RegisterFactType("B", nil)
	return e
}

// S1/S2: a single-pattern rule fires exactly for facts matching its
// constraint, and does not fire for facts that don't.
func Test_SinglePatternRule_FiresOnMatchOnly(t *testing.T) {
	e := newTestEngine()
	var fired []string
	spec := rulebuilder.New("urgent-heartbeat").
		Salience(100).
		Pattern("Patient").Gt("heartbeat", int64(120)).
		Action(func(facts []fact.Fact) error {
			name, _ := facts[0].Get("name")
			fired = append(fired, name.String())
			return nil
		}).
		Build()
	if _, err := e.RegisterRule(spec); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	if _, err := e.Declare("Patient", map[string]interface{}{"name": "A", "heartbeat": int64(145)}); err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	if _, err := e.Declare("Patient", map[string]interface{}{"name": "B", "heartbeat": int64(80)}); err != nil {
		t.Fatalf("declare failed: %v", err)
	}

	if n, err := e.Run(0); err != nil || n != 1 {
		t.Fatalf("Run() = (%d, %v), want (1, nil)", n, err)
	}
	if len(fired) != 1 || fired[0] != "A" {
		t.Fatalf("expected only Patient A to fire, got %v", fired)
	}
}

// S3/S4: a two-pattern join rule fires only for the (Client, Txn) pairs
// that share the bound variable and satisfy both patterns' constraints.
func Test_JoinRule_FiresOnlyOnMatchingPairs(t *testing.T) {
	e := newTestEngine()
	var fired [][2]string
	spec := rulebuilder.New("vip-large-txn").
		Pattern("Client").Eq("status", "VIP").Bind("id", "v").
		Pattern("Txn").Gt("amount", int64(5000)).Bind("client_id", "v").
		Action(func(facts []fact.Fact) error {
			id, _ := facts[0].Get("id")
			amount, _ := facts[1].Get("amount")
			fired = append(fired, [2]string{id.String(), amount.String()})
			return nil
		}).
		Build()
	if _, err := e.RegisterRule(spec); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	mustDeclare(t, e, "Client", map[string]interface{}{"id": "c1", "status": "VIP"})
	mustDeclare(t, e, "Client", map[string]interface{}{"id": "c2", "status": "Common"})
	mustDeclare(t, e, "Txn", map[string]interface{}{"client_id": "c1", "amount": int64(9000)})
	mustDeclare(t, e, "Txn", map[string]interface{}{"client_id": "c1", "amount": int64(10)})
	mustDeclare(t, e, "Txn", map[string]interface{}{"client_id": "c2", "amount": int64(9000)})

	if n, err := e.Run(0); err != nil || n != 1 {
		t.Fatalf("Run() = (%d, %v), want (1, nil)", n, err)
	}
	if len(fired) != 1 || fired[0][0] != "c1" {
		t.Fatalf("expected exactly one activation for c1's large txn, got %v", fired)
	}
}

// S3/S4 backfill: registering the join rule after the matching facts already
// exist in working memory must still produce the activation.
func Test_JoinRule_BackfillsExistingFacts(t *testing.T) {
	e := newTestEngine()
	mustDeclare(t, e, "Client", map[string]interface{}{"id": "c1", "status": "VIP"})
	mustDeclare(t, e, "Txn", map[string]interface{}{"client_id": "c1", "amount": int64(9000)})

	fireCount := 0
	spec := rulebuilder.New("vip-large-txn").
		Pattern("Client").Eq("status", "VIP").Bind("id", "v").
		Pattern("Txn").Gt("amount", int64(5000)).Bind("client_id", "v").
		Action(func(facts []fact.Fact) error {
			fireCount++
			return nil
		}).
		Build()
	if _, err := e.RegisterRule(spec); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	if n, err := e.Run(0); err != nil || n != 1 {
		t.Fatalf("Run() = (%d, %v), want (1, nil)", n, err)
	}
	if fireCount != 1 {
		t.Fatalf("expected the backfilled rule to fire once, got %d", fireCount)
	}
}

// S6: two patterns sharing no variables perform a full Cartesian join.
func Test_CartesianRule_JoinsAllPairs(t *testing.T) {
	e := newTestEngine()
	fireCount := 0
	spec := rulebuilder.New("a-times-b").
		Pattern("A").
		Pattern("B").
		Action(func(facts []fact.Fact) error {
			fireCount++
			return nil
		}).
		Build()
	if _, err := e.RegisterRule(spec); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}

	mustDeclare(t, e, "A", nil)
	mustDeclare(t, e, "A", nil)
	mustDeclare(t, e, "B", nil)
	mustDeclare(t, e, "B", nil)
	mustDeclare(t, e, "B", nil)

	if n, err := e.Run(0); err != nil || n != 6 {
		t.Fatalf("Run() = (%d, %v), want (6, nil): 2 A's x 3 B's", n, err)
	}
}

// I5/B: higher salience fires before lower salience regardless of
// declaration order.
func Test_Agenda_OrdersBySalience(t *testing.T) {
	e := newTestEngine()
	var order []string
	high := rulebuilder.New("high").Salience(100).Pattern("A").
		Action(func(facts []fact.Fact) error { order = append(order, "high"); return nil }).Build()
	low := rulebuilder.New("low").Salience(1).Pattern("A").
		Action(func(facts []fact.Fact) error { order = append(order, "low"); return nil }).Build()
	if _, err := e.RegisterRule(low); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if _, err := e.RegisterRule(high); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	mustDeclare(t, e, "A", nil)

	if n, err := e.Run(0); err != nil || n != 2 {
		t.Fatalf("Run() = (%d, %v), want (2, nil)", n, err)
	}
	if len(order) != 2 || order[0] != "high" || order[1] != "low" {
		t.Fatalf("expected high-salience rule to fire first, got %v", order)
	}
}

// R1: declaring then retracting a fact withdraws its activation before Run.
func Test_Retract_WithdrawsPendingActivation(t *testing.T) {
	e := newTestEngine()
	fireCount := 0
	spec := rulebuilder.New("any-a").Pattern("A").
		Action(func(facts []fact.Fact) error { fireCount++; return nil }).Build()
	if _, err := e.RegisterRule(spec); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	id, err := e.Declare("A", nil)
	if err != nil {
		t.Fatalf("declare failed: %v", err)
	}
	if e.AgendaLen() != 1 {
		t.Fatalf("expected 1 pending activation, got %d", e.AgendaLen())
	}
	if err := e.Retract(id); err != nil {
		t.Fatalf("retract failed: %v", err)
	}
	if e.AgendaLen() != 0 {
		t.Fatalf("expected the activation to be withdrawn, got agenda len %d", e.AgendaLen())
	}
	if n, err := e.Run(0); err != nil || n != 0 {
		t.Fatalf("Run() = (%d, %v), want (0, nil)", n, err)
	}
	if fireCount != 0 {
		t.Fatalf("expected the retracted fact's rule never to fire")
	}
}

func Test_Retract_UnknownIdReturnsError(t *testing.T) {
	e := newTestEngine()
	err := e.Retract(999)
	var unknown *UnknownFactError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownFactError, got %v", err)
	}
}

// I4: reset(); declare*; reset() produces an empty, quiescent engine with
// its registered rules still active.
func Test_Reset_PreservesRulesButClearsWorkingMemory(t *testing.T) {
	e := newTestEngine()
	fireCount := 0
	spec := rulebuilder.New("any-a").Pattern("A").
		Action(func(facts []fact.Fact) error { fireCount++; return nil }).Build()
	if _, err := e.RegisterRule(spec); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	mustDeclare(t, e, "A", nil)
	e.Reset()
	if e.AgendaLen() != 0 {
		t.Fatalf("expected empty agenda after reset, got %d", e.AgendaLen())
	}
	id, err := e.Declare("A", nil)
	if err != nil {
		t.Fatalf("declare after reset failed: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected fact ids to restart at 1 after reset, got %d", id)
	}
	if n, err := e.Run(0); err != nil || n != 1 {
		t.Fatalf("expected the preserved rule to still fire after reset, got (%d, %v)", n, err)
	}
}

// SchemaError cases from spec.md §7.
func Test_RegisterRule_RejectsUnknownFactType(t *testing.T) {
	e := newTestEngine()
	spec := rulebuilder.New("bad").Pattern("Ghost").
		Action(func(facts []fact.Fact) error { return nil }).Build()
	_, err := e.RegisterRule(spec)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError for unknown fact type, got %v", err)
	}
}

func Test_RegisterRule_RejectsOrderingOnNonOrderedField(t *testing.T) {
	e := newTestEngine()
	spec := rulebuilder.New("bad").Pattern("Client").Gt("active", true).
		Action(func(facts []fact.Fact) error { return nil }).Build()
	_, err := e.RegisterRule(spec)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError for ordering on a non-ordered (bool) field, got %v", err)
	}
}

func Test_RegisterRule_RejectsLiteralKindMismatch(t *testing.T) {
	// Ordering operators are legal on an int field (heartbeat is Ordered()),
	// but the literal itself must still share the field's kind: a string
	// literal must not silently compare against an int fact value at
	// runtime.
	e := newTestEngine()
	spec := rulebuilder.New("bad").Pattern("Patient").Gt("heartbeat", "not-a-number").
		Action(func(facts []fact.Fact) error { return nil }).Build()
	_, err := e.RegisterRule(spec)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError for a literal kind mismatch, got %v", err)
	}
}

func Test_RegisterRule_RejectsInLiteralKindMismatch(t *testing.T) {
	e := newTestEngine()
	spec := rulebuilder.New("bad").Pattern("Client").In("status", "VIP", int64(1)).
		Action(func(facts []fact.Fact) error { return nil }).Build()
	_, err := e.RegisterRule(spec)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError for an in-constraint literal kind mismatch, got %v", err)
	}
}

func Test_RegisterRule_RejectsIncompatibleVariableTypes(t *testing.T) {
	e := newTestEngine()
	spec := rulebuilder.New("bad").
		Pattern("Client").Bind("id", "v").
		Pattern("Txn").Bind("amount", "v").
		Action(func(facts []fact.Fact) error { return nil }).Build()
	_, err := e.RegisterRule(spec)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError for a variable bound to incompatible types, got %v", err)
	}
}

// spec.md §6.1 validation boundary: Declare rejects fields that fail the
// registered validator tags before the fact ever reaches working memory.
func Test_Declare_RejectsInvalidField(t *testing.T) {
	e := New(Settings{Ident: "test"})
	e.RegisterFactType("Patient", []FieldSpec{
		{Name: "heartbeat", Kind: ikvalue.KindInt, Tag: "required"},
	})
	_, err := e.Declare("Patient", map[string]interface{}{})
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError for a missing required field, got %v", err)
	}
}

// ReentrancyError: Run may not be called from within an action already
// running inside Run.
func Test_Run_RejectsReentrantCall(t *testing.T) {
	e := newTestEngine()
	var reentrantErr error
	spec := rulebuilder.New("reentrant").Pattern("A").
		Action(func(facts []fact.Fact) error {
			_, reentrantErr = e.Run(0)
			return nil
		}).Build()
	if _, err := e.RegisterRule(spec); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	mustDeclare(t, e, "A", nil)
	if _, err := e.Run(0); err != nil {
		t.Fatalf("unexpected outer Run error: %v", err)
	}
	var reentrancy *ReentrancyError
	if !errors.As(reentrantErr, &reentrancy) {
		t.Fatalf("expected ReentrancyError from the nested Run call, got %v", reentrantErr)
	}
}

// ActionError: a failing action stops Run and surfaces the wrapped cause.
func Test_Run_WrapsActionError(t *testing.T) {
	e := newTestEngine()
	cause := errors.New("boom")
	spec := rulebuilder.New("failing").Pattern("A").
		Action(func(facts []fact.Fact) error { return cause }).Build()
	if _, err := e.RegisterRule(spec); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	mustDeclare(t, e, "A", nil)
	_, err := e.Run(0)
	var actionErr *ActionError
	if !errors.As(err, &actionErr) {
		t.Fatalf("expected ActionError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected ActionError to unwrap to the original cause")
	}
}

// BusyError: RegisterRule is rejected while the engine is running.
func Test_RegisterRule_RejectsWhileRunning(t *testing.T) {
	e := newTestEngine()
	var busyErr error
	spec := rulebuilder.New("registers-mid-run").Pattern("A").
		Action(func(facts []fact.Fact) error {
			_, busyErr = e.RegisterRule(rulebuilder.New("late").Pattern("A").
				Action(func(facts []fact.Fact) error { return nil }).Build())
			return nil
		}).Build()
	if _, err := e.RegisterRule(spec); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	mustDeclare(t, e, "A", nil)
	if _, err := e.Run(0); err != nil {
		t.Fatalf("unexpected outer Run error: %v", err)
	}
	var busy *BusyError
	if !errors.As(busyErr, &busy) {
		t.Fatalf("expected BusyError for RegisterRule called mid-run, got %v", busyErr)
	}
}

// R2: declaring the same fact value twice produces two independent
// activations (bag semantics), not one.
func Test_Declare_BagSemanticsProducesTwoActivations(t *testing.T) {
	e := newTestEngine()
	fireCount := 0
	spec := rulebuilder.New("any-a").Pattern("A").
		Action(func(facts []fact.Fact) error { fireCount++; return nil }).Build()
	if _, err := e.RegisterRule(spec); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	mustDeclare(t, e, "A", nil)
	mustDeclare(t, e, "A", nil)
	if n, err := e.Run(0); err != nil || n != 2 {
		t.Fatalf("Run() = (%d, %v), want (2, nil)", n, err)
	}
}

// Halt: calling Halt from within an action stops the loop after that action
// returns, leaving remaining activations pending.
func Test_Halt_StopsRunAfterCurrentAction(t *testing.T) {
	e := newTestEngine()
	fireCount := 0
	spec := rulebuilder.New("halts-self").Pattern("A").
		Action(func(facts []fact.Fact) error {
			fireCount++
			e.Halt()
			return nil
		}).Build()
	if _, err := e.RegisterRule(spec); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	mustDeclare(t, e, "A", nil)
	mustDeclare(t, e, "A", nil)
	n, err := e.Run(0)
	if err != nil {
		t.Fatalf("unexpected Run error: %v", err)
	}
	if n != 1 || fireCount != 1 {
		t.Fatalf("expected Run to stop after the halting action, got fired=%d count=%d", n, fireCount)
	}
	if e.AgendaLen() != 1 {
		t.Fatalf("expected the second activation to remain pending, got agenda len %d", e.AgendaLen())
	}
}

// B3: an action that retracts one of its own matched facts must not cause
// that activation to be rescheduled or fired again.
func Test_Run_ActionRetractingOwnFact_DoesNotRefire(t *testing.T) {
	e := newTestEngine()
	fireCount := 0
	var id int64
	var retractErr error
	spec := rulebuilder.New("self-retracting").Pattern("A").
		Action(func(facts []fact.Fact) error {
			fireCount++
			retractErr = e.Retract(id)
			return nil
		}).Build()
	if _, err := e.RegisterRule(spec); err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	id = mustDeclare(t, e, "A", nil)

	n, err := e.Run(0)
	if err != nil {
		t.Fatalf("unexpected Run error: %v", err)
	}
	if n != 1 || fireCount != 1 {
		t.Fatalf("expected exactly one fire, got n=%d fireCount=%d", n, fireCount)
	}
	if retractErr != nil {
		t.Fatalf("unexpected retract error from within the action: %v", retractErr)
	}
	if e.AgendaLen() != 0 {
		t.Fatalf("expected no residual or rescheduled activation, got agenda len %d", e.AgendaLen())
	}
}

func mustDeclare(t *testing.T, e *Engine, factType string, fields map[string]interface{}) int64 {
	t.Helper()
	id, err := e.Declare(factType, fields)
	if err != nil {
		t.Fatalf("declare(%s) failed: %v", factType, err)
	}
	return id
}
