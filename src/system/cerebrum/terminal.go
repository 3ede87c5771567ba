package cerebrum

import "github.com/kalluancartoon/ikin-expert/src/system/agenda"

// TerminalNode sits at the end of a rule's beta chain (spec.md §4.5): every
// complete token it receives becomes a pending Activation, and every token
// withdrawn evicts the corresponding activation from the agenda.
type TerminalNode struct {
	rule        *CompiledRule
	agenda      *agenda.Agenda
	activations map[string]*Activation
	nextSeq     func() uint64
}

// onTokenAdd implements betaConsumer: a complete match arrived. At most one
// live activation exists per (rule, token), so a repeat add is a no-op.
func (tn *TerminalNode) onTokenAdd(t *Token) {
	tk := t.Key()
	if _, exists := tn.activations[tk]; exists {
		return
	}
	act := &Activation{
		Rule:     tn.rule,
		Token:    t,
		Salience: tn.rule.Salience,
		Sequence: tn.nextSeq(),
	}
	tn.activations[tk] = act
	tn.agenda.Insert(act)
}

// onTokenRemove implements betaConsumer: a complete match was withdrawn,
// either because one of its facts was retracted or an ancestor token was.
func (tn *TerminalNode) onTokenRemove(t *Token) {
	tk := t.Key()
	act, ok := tn.activations[tk]
	if !ok {
		return
	}
	delete(tn.activations, tk)
	tn.agenda.Remove(act.AgendaKey())
}
