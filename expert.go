// Package expert is the root facade of the rule engine: Settings, Engine
// construction, and the reset/declare/retract/run operations spec.md §6.2
// requires, wiring together the fact registry, schema registry, alpha/beta
// network and agenda that live under src/system.
package expert

import (
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/kalluancartoon/ikin-expert/src/system/agenda"
	"github.com/kalluancartoon/ikin-expert/src/system/archivist"
	"github.com/kalluancartoon/ikin-expert/src/system/cerebrum"
	"github.com/kalluancartoon/ikin-expert/src/system/fact"
	"github.com/kalluancartoon/ikin-expert/src/system/history"
	"github.com/kalluancartoon/ikin-expert/src/system/interfaces"
	"github.com/kalluancartoon/ikin-expert/src/system/observer"
	"github.com/kalluancartoon/ikin-expert/src/system/schema"
	"github.com/kalluancartoon/ikin-expert/src/system/util"
)

// Typed errors re-exported so callers of this package need not import
// src/system/cerebrum directly.
type (
	SchemaError      = cerebrum.SchemaError
	UnknownFactError = cerebrum.UnknownFactError
	ReentrancyError  = cerebrum.ReentrancyError
	ValidationError  = cerebrum.ValidationError
	ActionError      = cerebrum.ActionError
	BusyError        = cerebrum.BusyError
)

// RuleSpec and ActionFunc are re-exported for the same reason; rulebuilder
// produces a RuleSpec directly.
type (
	RuleSpec   = cerebrum.RuleSpec
	ActionFunc = cerebrum.ActionFunc
)

// FieldSpec re-exports schema.FieldSpec for RegisterFactType callers.
type FieldSpec = schema.FieldSpec

// Settings configures an Engine at construction time, mirroring the
// teacher's cyberbrain.Settings.
type Settings struct {
	Ident      string
	LogLevel   int
	DebugLevel int
	Logger     interfaces.LoggerInterface
	History    bool
}

// Engine is one self-contained rule-engine instance (spec.md §5: "each
// engine instance is self-contained"). The zero value is not usable;
// construct with New.
type Engine struct {
	instanceID string
	ident      string
	log        *archivist.Archivist

	schema    *schema.Registry
	validator interfaces.Validator
	facts     *fact.Registry
	agenda    *agenda.Agenda
	network   *cerebrum.Network
	history   *history.Recorder

	ruleSpecs []cerebrum.RuleSpec

	running bool
	halted  bool
}

// New constructs an Engine per settings.
func New(settings Settings) *Engine {
	logger := settings.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "", 0)
	}
	al := archivist.New(&archivist.Config{
		Logger:     logger,
		LogLevel:   settings.LogLevel,
		DebugLevel: settings.DebugLevel,
	})

	id := uuid.NewString()
	schemaReg := schema.New()
	factReg := fact.NewRegistry()
	ag := agenda.New()
	net := cerebrum.NewNetwork(factReg, schemaReg, ag, al)
	rec := history.New(settings.Ident+"-"+id, settings.History, al)

	al.Info("engine %q (%s) initialized", settings.Ident, id)

	return &Engine{
		instanceID: id,
		ident:      settings.Ident,
		log:        al,
		schema:     schemaReg,
		validator:  schemaReg,
		facts:      factReg,
		agenda:     ag,
		network:    net,
		history:    rec,
	}
}

// InstanceID returns this engine's unique identifier.
func (e *Engine) InstanceID() string { return e.instanceID }

// RegisterFactType declares a fact type's fields, ahead of any pattern that
// references it. Registering the same name twice replaces the declaration.
func (e *Engine) RegisterFactType(name string, fields []schema.FieldSpec) {
	e.schema.Register(name, fields)
	e.log.Debug(archivist.DEBUG_LEVEL_INFO, "registered fact type %q (%d field(s))", name, len(fields))
}

// RegisterRule compiles spec into the Rete network. Per spec.md §6.2 this
// may only be called while the engine is quiescent.
func (e *Engine) RegisterRule(spec cerebrum.RuleSpec) (*cerebrum.CompiledRule, error) {
	if e.running {
		return nil, &cerebrum.BusyError{}
	}
	rule, err := e.network.CompileRule(spec)
	if err != nil {
		e.log.Error("rule %q failed to compile: %v", spec.Name, err)
		return nil, err
	}
	e.ruleSpecs = append(e.ruleSpecs, spec)
	e.log.Info("rule %q compiled (%d pattern(s), salience %d)", spec.Name, len(spec.Patterns), spec.Salience)
	return rule, nil
}

// Declare validates fields against factType's schema, stores the resulting
// fact in working memory, and propagates it through the network.
func (e *Engine) Declare(factType string, fields map[string]interface{}) (int64, error) {
	if err := e.validator.Validate(factType, fields); err != nil {
		return 0, &cerebrum.ValidationError{FactType: factType, Cause: err}
	}
	f := fact.Fact{Type: factType, Fields: util.ToValueMap(fields)}
	id := e.facts.Declare(f)
	e.network.Declare(id, f)
	e.history.Fact(id, factType)
	e.log.Debug(archivist.DEBUG_LEVEL_DETAIL, "declared %s#%d", factType, id)
	return id, nil
}

// Retract removes a fact from working memory and withdraws every activation
// that depended on it.
func (e *Engine) Retract(id int64) error {
	f, ok := e.facts.Retract(id)
	if !ok {
		return &cerebrum.UnknownFactError{FactID: id}
	}
	e.network.Retract(id, f)
	e.history.Retract(id, f.Type)
	e.log.Debug(archivist.DEBUG_LEVEL_DETAIL, "retracted %s#%d", f.Type, id)
	return nil
}

// Run executes the agenda loop of spec.md §4.6: pop the highest-priority
// activation, resolve its token to facts, invoke the rule's action, repeat
// until the agenda empties, maxFires activations have fired, or Halt is
// called. maxFires <= 0 means unbounded. It returns the number of
// activations actually fired.
func (e *Engine) Run(maxFires int) (int, error) {
	if e.running {
		return 0, &cerebrum.ReentrancyError{}
	}
	e.running = true
	e.halted = false
	defer func() { e.running = false }()

	unlimited := maxFires <= 0
	fired := 0
	for unlimited || fired < maxFires {
		if e.halted {
			break
		}
		entry, ok := e.agenda.PopMax()
		if !ok {
			break
		}
		act := entry.(*cerebrum.Activation)

		facts := make([]fact.Fact, 0, len(act.Token.FactIDs))
		complete := true
		for _, id := range act.Token.FactIDs {
			f, ok := e.facts.Get(id)
			if !ok {
				complete = false
				break
			}
			facts = append(facts, f)
		}
		if !complete {
			// Defensive per spec.md §4.6 step 2: should not occur if
			// invariants hold, since retraction always withdraws the
			// activation before the fact leaves WM.
			e.log.Warning("discarding activation for rule %q: token references a missing fact", act.Rule.Name)
			continue
		}

		if err := act.Rule.Action(facts); err != nil {
			e.log.Error("rule %q action failed: %v", act.Rule.Name, err)
			return fired, &cerebrum.ActionError{Rule: act.Rule.Name, Cause: err}
		}
		e.history.Fired(act.Rule.Name, act.Token.FactIDs)
		fired++
	}
	return fired, nil
}

// Halt requests that a running Run loop stop after the current action
// returns.
func (e *Engine) Halt() {
	e.halted = true
}

// AgendaLen reports how many activations are currently pending.
func (e *Engine) AgendaLen() int {
	return e.agenda.Len()
}

// Reset empties working memory, the agenda, and every alpha/beta/terminal
// memory, then recompiles every previously registered rule against the now
// empty network — preserving the set of active rules, per spec.md §6.2.
func (e *Engine) Reset() {
	e.facts.Reset()
	e.agenda = agenda.New()
	e.network = cerebrum.NewNetwork(e.facts, e.schema, e.agenda, e.log)
	for _, spec := range e.ruleSpecs {
		if _, err := e.network.CompileRule(spec); err != nil {
			e.log.Error("reset: rule %q failed to recompile: %v", spec.Name, err)
		}
	}
	e.halted = false
	e.log.Info("engine reset (%d rule(s) preserved)", len(e.ruleSpecs))
}

// GetObserverInstance returns an observer.Observer that drains this
// engine's agenda to quiescence, invoking callback at endgame. If lethal,
// the engine is halted before callback runs.
func (e *Engine) GetObserverInstance(callback func(eng observer.Engine), lethal bool) *observer.Observer {
	return observer.New(e, callback, e.log, lethal)
}
