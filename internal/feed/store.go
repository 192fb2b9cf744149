package feed

import (
	"sync/atomic"

	"depth_go/internal/domain"
)

// SnapshotStore holds the latest normalized book for the active
// venue/symbol. Single writer, any number of concurrent readers: the
// replace is an atomic pointer swap, so a reader sees either the old or
// the new snapshot in full, never a mix.
type SnapshotStore struct {
	cur atomic.Pointer[domain.BookSnapshot]
}

// NewSnapshotStore creates an empty store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Replace installs a new snapshot. Snapshots are immutable after
// construction; callers must not modify them after handing them over.
func (s *SnapshotStore) Replace(snap *domain.BookSnapshot) {
	s.cur.Store(snap)
}

// Latest returns the current snapshot, or nil before the first update.
// Callers read it once per computation, never mid-computation.
func (s *SnapshotStore) Latest() *domain.BookSnapshot {
	return s.cur.Load()
}

// Clear drops the current snapshot (used on venue switch)
func (s *SnapshotStore) Clear() {
	s.cur.Store(nil)
}
