// Package history is an optional, queryable audit trail of engine activity:
// every declare, retract and fire is mirrored into a gits graph instance as
// entities (withdrawn activations are not recorded), the way the teacher
// gates its own
// Job trail behind Settings.History and lets the caller query it back
// afterward. It sits off the hot path of Alpha/Beta matching entirely.
package history

import (
	"strconv"

	"github.com/voodooEntity/gits"
	"github.com/voodooEntity/gits/src/query"
	"github.com/voodooEntity/gits/src/storage"
	"github.com/voodooEntity/gits/src/transport"

	"github.com/kalluancartoon/ikin-expert/src/system/archivist"
)

// newEntity seeds a TransportEntity for creation, mirroring the teacher's
// own MAP_FORCE_CREATE call sites (cmd/example's LearnAndSchedule,
// scheduler_test_utils.go's mem.Gits.MapData).
func newEntity(entityType, value, context string) transport.TransportEntity {
	return transport.TransportEntity{
		ID:      storage.MAP_FORCE_CREATE,
		Type:    entityType,
		Value:   value,
		Context: context,
	}
}

// Recorder mirrors engine events into a dedicated gits instance. A nil
// *Recorder is valid and every method on it is a no-op, so callers can hold
// an always-present *Recorder field and skip a presence check at each call
// site (Settings.History == false yields a nil Recorder from New).
type Recorder struct {
	gits *gits.Gits
	log  *archivist.Archivist
}

// New returns a Recorder backed by a fresh, uniquely named gits instance, or
// nil if enabled is false.
func New(instanceName string, enabled bool, log *archivist.Archivist) *Recorder {
	if !enabled {
		return nil
	}
	g := gits.NewInstance(instanceName)
	log.Info("history: recording enabled on gits instance %q", instanceName)
	return &Recorder{gits: g, log: log}
}

// Fact records a declared fact as a "Fact" entity, keyed by its engine id.
// The trail is append-only: retraction is recorded as a sibling
// "Retraction" entity rather than a deletion, so the history stays a
// complete log of everything that ever happened, not just current state.
func (r *Recorder) Fact(id int64, factType string) {
	if r == nil {
		return
	}
	r.gits.MapData(newEntity("Fact", strconv.FormatInt(id, 10), factType))
}

// Retract records that a fact id left working memory.
func (r *Recorder) Retract(id int64, factType string) {
	if r == nil {
		return
	}
	r.gits.MapData(newEntity("Retraction", strconv.FormatInt(id, 10), factType))
}

// Fired records a fired activation as a "Job" entity linked to each fact id
// in its token, mirroring cmd/example.go's closing gits.NewQuery().Read("Job").
func (r *Recorder) Fired(ruleName string, factIDs []int64) {
	if r == nil {
		return
	}
	job := newEntity("Job", ruleName, "cerebrum")
	for _, id := range factIDs {
		job.ChildRelations = append(job.ChildRelations, transport.TransportRelation{
			Target: newEntity("Fact", strconv.FormatInt(id, 10), "Derived-From"),
		})
	}
	r.gits.MapData(job)
}

// Jobs returns every recorded firing, for the caller of run() to inspect
// afterward.
func (r *Recorder) Jobs() []transport.TransportEntity {
	if r == nil {
		return nil
	}
	qry := query.New().Read("Job")
	return r.gits.Query().Execute(qry).Entities
}
