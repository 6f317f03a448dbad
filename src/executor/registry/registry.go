// Package registry implements the process-wide RelayEntry registry (spec
// §3 "RelayEntry", §4.4 "Request registry"): an in-memory map of RFE id to
// lifecycle record plus a FIFO pending queue. The registry is the sole
// authority guaranteeing that an id maps to exactly one entry for the
// lifetime of the process (invariant R1) and that the pending queue holds
// only ids whose current status is queued (invariant R2).
//
// This package is modeled on the teacher's in-memory transaction-state
// store (mutex-guarded map, copy-on-read/copy-on-write to prevent external
// aliasing) but adds the guarded insert and FIFO queue the wallet's
// broadcast-idempotency store never needed.
package registry

import (
	"sync"

	"github.com/example/executor/src/executor/chainadapter"
)

// Status is the lifecycle state of a RelayEntry (spec §3).
type Status string

const (
	StatusQueued      Status = "queued"
	StatusSubmitted   Status = "submitted"
	StatusFailed      Status = "failed"
	StatusUnderpaid   Status = "underpaid"
	StatusUnsupported Status = "unsupported"
)

// IsTerminal reports whether no further worker attempts will change status.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSubmitted, StatusFailed, StatusUnderpaid, StatusUnsupported:
		return true
	default:
		return false
	}
}

// Entry is the core record tracked by the registry (spec §3 "RelayEntry").
type Entry struct {
	ID          string
	Status      Status
	RFE         *chainadapter.RFE
	Instruction chainadapter.DecodedRequest
	Txs         []string
}

func (e *Entry) clone() *Entry {
	if e == nil {
		return nil
	}
	txs := make([]string, len(e.Txs))
	copy(txs, e.Txs)
	return &Entry{
		ID:          e.ID,
		Status:      e.Status,
		RFE:         e.RFE,
		Instruction: e.Instruction,
		Txs:         txs,
	}
}

// Registry is the process-wide RelayEntry-by-id map plus FIFO pending queue.
// All methods are safe for concurrent use. Per spec §5, mutation of the
// pending queue and of entries is expected to come from a single writer
// (the relay worker) except Admit, which the HTTP task also calls; the
// mutex here makes that contract safe regardless of caller count.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry
	pending []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
	}
}

// Admit inserts entry under id if and only if no entry for id exists yet,
// then appends id to the pending queue when the stored status is queued
// (an empty status is stored as queued). Returns the entry that is now
// authoritative for id (the newly inserted one on success, the pre-existing
// one otherwise) and whether this call performed the insertion.
//
// This is the sole invariant guaranteeing R1 (one entry per id for the life
// of the process) and R2 (pending holds only queued ids): a second Admit
// for the same id is a no-op read, never a duplicate enqueue (spec §8,
// property 5 and scenario S4).
func (r *Registry) Admit(id string, entry *Entry) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[id]; ok {
		return existing.clone(), false
	}

	stored := entry.clone()
	stored.ID = id
	if stored.Status == "" {
		stored.Status = StatusQueued
	}
	r.entries[id] = stored
	if stored.Status == StatusQueued {
		r.pending = append(r.pending, id)
	}
	return stored.clone(), true
}

// Get returns a copy of the entry for id, or (nil, false) if unknown.
func (r *Registry) Get(id string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return entry.clone(), true
}

// PopPending removes and returns the head of the pending queue. Returns
// ("", false) when the queue is empty.
func (r *Registry) PopPending() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return "", false
	}
	id := r.pending[0]
	r.pending = r.pending[1:]
	return id, true
}

// Requeue appends id to the tail of the pending queue, used after a
// transient adapter failure (spec §4.5 step 5). The entry's status is left
// as queued by the caller via Update before calling Requeue.
func (r *Registry) Requeue(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending = append(r.pending, id)
}

// Patch describes a mutation applied atomically by Update.
type Patch struct {
	Status  Status
	AddTxs  []string
}

// Update atomically applies patch to the entry for id: overwrites Status
// when non-empty and appends AddTxs to the entry's Txs in order (spec §5
// "within one RelayEntry, submissions are serialized; txs is appended in
// submission order"). Returns false if id is unknown.
func (r *Registry) Update(id string, patch Patch) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return false
	}
	if patch.Status != "" {
		entry.Status = patch.Status
	}
	if len(patch.AddTxs) > 0 {
		entry.Txs = append(entry.Txs, patch.AddTxs...)
	}
	return true
}

// PendingLen reports the current queue depth; used by tests and metrics.
func (r *Registry) PendingLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
