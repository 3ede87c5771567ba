// Package agenda implements the priority queue of pending activations and
// its conflict-resolution ordering (spec.md §4.6): higher salience first,
// then lower sequence number first (FIFO among equal salience).
package agenda

import "container/heap"

// Entry is anything the agenda can order and address. cerebrum.Activation
// implements this; the agenda package has no dependency on cerebrum, which
// keeps the network -> agenda import edge one-directional.
type Entry interface {
	// AgendaKey identifies the (rule, token) pair this entry represents.
	// At most one entry per key may be present at a time.
	AgendaKey() string
	AgendaSalience() int32
	AgendaSequence() uint64
}

type heapItem struct {
	entry Entry
	index int
}

type innerHeap []*heapItem

func (h innerHeap) Len() int { return len(h) }

func (h innerHeap) Less(i, j int) bool {
	si, sj := h[i].entry.AgendaSalience(), h[j].entry.AgendaSalience()
	if si != sj {
		return si > sj // higher salience first
	}
	return h[i].entry.AgendaSequence() < h[j].entry.AgendaSequence() // FIFO among equals
}

func (h innerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *innerHeap) Push(x interface{}) {
	item := x.(*heapItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *innerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Agenda is a priority queue of pending Entry values with a secondary
// key -> heapItem index for O(log n) targeted removal.
type Agenda struct {
	heap innerHeap
	byKey map[string]*heapItem
}

// New returns an empty agenda.
func New() *Agenda {
	return &Agenda{
		byKey: make(map[string]*heapItem),
	}
}

// Insert adds e to the agenda in O(log n). Per spec.md §3, there is at most
// one live activation per (rule, token) pair; Insert silently replaces any
// existing entry with the same key rather than allowing a duplicate,
// matching that invariant.
func (a *Agenda) Insert(e Entry) {
	key := e.AgendaKey()
	if existing, ok := a.byKey[key]; ok {
		heap.Remove(&a.heap, existing.index)
		delete(a.byKey, key)
	}
	item := &heapItem{entry: e}
	heap.Push(&a.heap, item)
	a.byKey[key] = item
}

// Remove evicts the entry for key, if present, in O(log n). It reports
// whether an entry was removed.
func (a *Agenda) Remove(key string) bool {
	item, ok := a.byKey[key]
	if !ok {
		return false
	}
	heap.Remove(&a.heap, item.index)
	delete(a.byKey, key)
	return true
}

// Contains reports whether an entry with key is currently pending.
func (a *Agenda) Contains(key string) bool {
	_, ok := a.byKey[key]
	return ok
}

// PopMax removes and returns the highest-priority entry in O(log n), or
// (nil, false) if the agenda is empty.
func (a *Agenda) PopMax() (Entry, bool) {
	if len(a.heap) == 0 {
		return nil, false
	}
	item := heap.Pop(&a.heap).(*heapItem)
	delete(a.byKey, item.entry.AgendaKey())
	return item.entry, true
}

// Len reports the number of pending entries.
func (a *Agenda) Len() int {
	return len(a.heap)
}
