package cerebrum

import (
	"strings"

	"github.com/kalluancartoon/ikin-expert/src/system/fact"
	ikvalue "github.com/kalluancartoon/ikin-expert/src/system/value"
)

// betaConsumer is whatever reads a BetaMemory as its left input: either the
// next JoinNode in the chain, or the rule's TerminalNode. Modeling both as
// the same interface keeps token add/remove propagation uniform along the
// whole chain (spec.md §4.4/§4.5).
type betaConsumer interface {
	onTokenAdd(t *Token)
	onTokenRemove(t *Token)
}

// resolveVarFn resolves a rule-global binding variable's value against a
// Token, by looking up the fact at the variable's bound pattern position in
// working memory. Built once per compiled rule (network.go).
type resolveVarFn func(t *Token, variable string) (ikvalue.Value, bool)

// BetaMemory is the set of tokens held at one join node's left input
// (spec.md §3/§4.4), indexed by the join key of whoever reads it.
type BetaMemory struct {
	keyVars    []string
	resolveVar resolveVarFn

	tokens    map[string]*Token
	index     map[string][]*Token
	byParent  map[string][]*Token
	byRightID map[int64][]*Token

	consumer betaConsumer
}

func newBetaMemory(keyVars []string, resolveVar resolveVarFn) *BetaMemory {
	return &BetaMemory{
		keyVars:    keyVars,
		resolveVar: resolveVar,
		tokens:     make(map[string]*Token),
		index:      make(map[string][]*Token),
		byParent:   make(map[string][]*Token),
		byRightID:  make(map[int64][]*Token),
	}
}

// computeKey renders t's composite join-key value under bm.keyVars. An
// empty keyVars always yields ("", true): the empty-join-key Cartesian case
// of spec.md §4.4, where every token shares one bucket.
func (bm *BetaMemory) computeKey(t *Token) (string, bool) {
	if len(bm.keyVars) == 0 {
		return "", true
	}
	parts := make([]string, len(bm.keyVars))
	for i, v := range bm.keyVars {
		val, ok := bm.resolveVar(t, v)
		if !ok {
			return "", false
		}
		parts[i] = val.String()
	}
	return strings.Join(parts, "\x1f"), true
}

// matchesForKey returns the tokens indexed under key, for a right
// activation's lookup on the left side.
func (bm *BetaMemory) matchesForKey(key string) []*Token {
	return bm.index[key]
}

// insert stores a newly derived token, wires it into every removal index,
// and notifies the downstream consumer. parent may be nil only for the
// dummy top's initial empty token, which is never inserted through this
// path. Re-inserting an already-present token (same FactIDs) is a no-op,
// since token uniqueness holds by construction (spec.md §4.4).
func (bm *BetaMemory) insert(t *Token, parent *Token, rightID int64) {
	tk := t.Key()
	if _, exists := bm.tokens[tk]; exists {
		return
	}
	bm.tokens[tk] = t
	if key, ok := bm.computeKey(t); ok {
		bm.index[key] = append(bm.index[key], t)
	}
	if parent != nil {
		pk := parent.Key()
		bm.byParent[pk] = append(bm.byParent[pk], t)
	}
	bm.byRightID[rightID] = append(bm.byRightID[rightID], t)
	if bm.consumer != nil {
		bm.consumer.onTokenAdd(t)
	}
}

// removeToken evicts t from every index and cascades the removal to the
// consumer, which (for a JoinNode) recurses into its own output memory via
// removeDerivedFromParent, and (for a TerminalNode) evicts the activation.
func (bm *BetaMemory) removeToken(t *Token) {
	tk := t.Key()
	if _, ok := bm.tokens[tk]; !ok {
		return
	}
	delete(bm.tokens, tk)
	if key, ok := bm.computeKey(t); ok {
		bm.index[key] = removeTokenFromSlice(bm.index[key], t)
	}
	if bm.consumer != nil {
		bm.consumer.onTokenRemove(t)
	}
}

// removeDerivedFromParent withdraws every token this memory holds that was
// derived from parentKey (left deactivation cascade, spec.md §4.4).
func (bm *BetaMemory) removeDerivedFromParent(parentKey string) {
	children := bm.byParent[parentKey]
	delete(bm.byParent, parentKey)
	for _, c := range children {
		bm.removeToken(c)
	}
}

// removeDerivedFromRight withdraws every token this memory holds that used
// rightID as its right-side addition (right deactivation cascade, spec.md
// §4.4).
func (bm *BetaMemory) removeDerivedFromRight(rightID int64) {
	children := bm.byRightID[rightID]
	delete(bm.byRightID, rightID)
	for _, c := range children {
		bm.removeToken(c)
	}
}

func removeTokenFromSlice(tokens []*Token, target *Token) []*Token {
	out := tokens[:0]
	for _, t := range tokens {
		if t != target {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// JoinNode is one join in a rule's beta chain (spec.md §4.4): left input is
// the upstream BetaMemory (dummy top for the first pattern), right input is
// the AlphaMemory for this pattern, join key is Vars(i-1) ∩ Vars(i).
type JoinNode struct {
	patternIndex int
	joinKeyVars  []string
	alpha        *AlphaMemory
	leftSource   *BetaMemory
	output       *BetaMemory
}

// onTokenAdd implements betaConsumer for JoinNode: a token newly arrived on
// the left (left activation). Look up matching facts on the right by the
// join key and propagate an extended token for each.
func (j *JoinNode) onTokenAdd(t *Token) {
	key, ok := j.leftSource.computeKey(t)
	if !ok {
		return
	}
	for _, id := range j.alpha.lookup(j, key) {
		j.output.insert(t.extend(id), t, id)
	}
}

// onTokenRemove implements betaConsumer for JoinNode: the left token t was
// withdrawn (left deactivation). Cascade removal of everything derived from it.
func (j *JoinNode) onTokenRemove(t *Token) {
	j.output.removeDerivedFromParent(t.Key())
}

// onRightActivate handles a new fact id passing this join's alpha memory
// (right activation): look up matching tokens on the left by the join key,
// and propagate an extended token for each.
func (j *JoinNode) onRightActivate(id int64, f fact.Fact) {
	key, ok := j.alpha.indexKeyFor(j, f.Get)
	if !ok {
		return
	}
	for _, t := range j.leftSource.matchesForKey(key) {
		j.output.insert(t.extend(id), t, id)
	}
}

// onRightDeactivate handles a fact id retracted from this join's alpha
// memory (right deactivation): withdraw every token that used it.
func (j *JoinNode) onRightDeactivate(id int64) {
	j.output.removeDerivedFromRight(id)
}
