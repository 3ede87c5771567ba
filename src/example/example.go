// Package example provides the fact types and rules the cmd/expertdemo
// program registers, working through the scenarios spec.md §8 describes
// (S1-S6), the way the teacher's own src/example package supplied the
// resolveIPFromDomain action for cmd/example.
package example

import (
	"fmt"

	expert "github.com/kalluancartoon/ikin-expert"
	"github.com/kalluancartoon/ikin-expert/src/system/fact"
	"github.com/kalluancartoon/ikin-expert/src/system/rulebuilder"
	ikvalue "github.com/kalluancartoon/ikin-expert/src/system/value"
)

// RegisterFactTypes declares every fact type the demo rules reference.
func RegisterFactTypes(e *expert.Engine) {
	e.RegisterFactType("Patient", []expert.FieldSpec{
		{Name: "name", Kind: ikvalue.KindString, Tag: "required"},
		{Name: "heartbeat", Kind: ikvalue.KindInt, Tag: "required"},
	})
	e.RegisterFactType("Client", []expert.FieldSpec{
		{Name: "id", Kind: ikvalue.KindInt, Tag: "required"},
		{Name: "status", Kind: ikvalue.KindString, Tag: "required"},
	})
	e.RegisterFactType("Txn", []expert.FieldSpec{
		{Name: "client_id", Kind: ikvalue.KindInt, Tag: "required"},
		{Name: "amount", Kind: ikvalue.KindInt, Tag: "required"},
	})
	e.RegisterFactType("A", nil)
	e.RegisterFactType("B", nil)
}

// RegisterVitalsRules registers the two salience-ordered single-pattern
// rules of S1/S2: high-heartbeat patients get flagged urgent, everyone else
// gets a routine note, and R1 always outranks R2.
func RegisterVitalsRules(e *expert.Engine) error {
	urgent := rulebuilder.New("urgent-heartbeat").
		Salience(100).
		Pattern("Patient").Gt("heartbeat", int64(120)).Bind("name", "n").Bind("heartbeat", "h").
		Action(func(facts []fact.Fact) error {
			n, _ := facts[0].Get("name")
			h, _ := facts[0].Get("heartbeat")
			fmt.Printf("URGENT: %s heartbeat %s\n", n.String(), h.String())
			return nil
		}).Build()

	routine := rulebuilder.New("routine-heartbeat").
		Salience(10).
		Pattern("Patient").Lte("heartbeat", int64(120)).Bind("name", "n").
		Action(func(facts []fact.Fact) error {
			n, _ := facts[0].Get("name")
			fmt.Printf("routine: %s\n", n.String())
			return nil
		}).Build()

	if _, err := e.RegisterRule(urgent); err != nil {
		return err
	}
	if _, err := e.RegisterRule(routine); err != nil {
		return err
	}
	return nil
}

// RegisterVipTxnRule registers the two-pattern join of S3/S4: a VIP client
// joined to one of their transactions over 5000, on the shared variable v.
func RegisterVipTxnRule(e *expert.Engine) error {
	spec := rulebuilder.New("vip-large-txn").
		Salience(0).
		Pattern("Client").Eq("status", "VIP").Bind("id", "v").
		Pattern("Txn").Gt("amount", int64(5000)).Bind("client_id", "v").
		Action(func(facts []fact.Fact) error {
			client, txn := facts[0], facts[1]
			id, _ := client.Get("id")
			amount, _ := txn.Get("amount")
			fmt.Printf("VIP alert: client %s spent %s\n", id.String(), amount.String())
			return nil
		}).Build()
	_, err := e.RegisterRule(spec)
	return err
}

// RegisterCartesianRule registers the empty-join-key rule of S6: every A
// paired with every B.
func RegisterCartesianRule(e *expert.Engine) error {
	spec := rulebuilder.New("a-times-b").
		Salience(0).
		Pattern("A").
		Pattern("B").
		Action(func(facts []fact.Fact) error {
			fmt.Println("A x B pairing fired")
			return nil
		}).Build()
	_, err := e.RegisterRule(spec)
	return err
}
