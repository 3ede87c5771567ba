// Package observer is a tick/watch loop over a running engine, generalized
// from the teacher's Observer (which polls a gits instance for Neuron/Job
// entities) into one that polls the engine's own agenda occupancy instead.
package observer

import (
	"time"

	"github.com/kalluancartoon/ikin-expert/src/system/agenda"
	"github.com/kalluancartoon/ikin-expert/src/system/archivist"
)

// Engine is the subset of expert.Engine the observer needs: agenda depth
// and a way to keep draining it. Modeling it as an interface (rather than
// importing the root expert package) avoids an expert <-> observer import
// cycle, the same reasoning that shapes agenda.Entry.
type Engine interface {
	AgendaLen() int
	Run(maxFires int) (int, error)
	Halt()
}

// Observer watches an Engine and drives it to quiescence, firing a
// caller-supplied tick function every TickRate loop iterations, the same
// shape as the teacher's Observer.RegisterTickFunction/SetTickRate/Loop.
type Observer struct {
	engine            Engine
	callback          func(engine Engine)
	inactiveIncrement int
	lethal            bool
	log               *archivist.Archivist
	tickFunction      *func(a *agenda.Agenda, logger *archivist.Archivist)
	tickRate          int
}

// New returns an Observer over engine. callback runs once the loop reaches
// endgame; if lethal is true the observer halts the engine before invoking it.
func New(engine Engine, callback func(engine Engine), logger *archivist.Archivist, lethal bool) *Observer {
	logger.Info("creating observer")
	return &Observer{
		engine:   engine,
		callback: callback,
		lethal:   lethal,
		log:      logger,
		tickRate: 25,
	}
}

// RegisterTickFunction installs a periodic callback invoked every TickRate
// loop iterations while the engine still has pending activations.
func (o *Observer) RegisterTickFunction(fn *func(a *agenda.Agenda, logger *archivist.Archivist)) {
	o.tickFunction = fn
}

// SetTickRate changes how many loop iterations elapse between tick calls.
func (o *Observer) SetTickRate(rate int) {
	o.tickRate = rate
}

func (o *Observer) tick() {
	(*o.tickFunction)(nil, o.log)
}

// Loop drains the engine's agenda by repeatedly calling Run(1), ticking
// every TickRate iterations, until ReachedEndgame reports true, then runs
// Endgame.
func (o *Observer) Loop() {
	i := 0
	for !o.ReachedEndgame() {
		i++
		o.log.Debug(archivist.DEBUG_LEVEL_MAX, "observer looping")
		if _, err := o.engine.Run(1); err != nil {
			o.log.Error("observer: run failed: %v", err)
			break
		}
		if o.tickFunction != nil && i == o.tickRate {
			o.tick()
			i = 0
		}
		time.Sleep(10 * time.Millisecond)
	}
	o.Endgame()
	o.log.Info("engine drained, observer exiting")
}

// ReachedEndgame reports whether the agenda has stayed empty for enough
// consecutive checks to consider the engine quiescent.
func (o *Observer) ReachedEndgame() bool {
	if o.engine.AgendaLen() > 0 {
		o.inactiveIncrement = 0
		return false
	}
	if o.inactiveIncrement > 5 {
		return true
	}
	o.inactiveIncrement++
	return false
}

// Endgame runs the registered callback, once the loop has decided to stop.
// If the observer is lethal, it halts the engine first, mirroring the
// teacher's Observer.Endgame stopping cyberbrain before invoking its callback.
func (o *Observer) Endgame() {
	o.log.Info("executing endgame")
	if o.lethal {
		o.engine.Halt()
	}
	o.callback(o.engine)
}
