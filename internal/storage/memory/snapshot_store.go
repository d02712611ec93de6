package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/JakeFAU/legislation-tracker/internal/tracker"
)

// SnapshotStore keeps the latest snapshot per name.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]tracker.Snapshot
	runs      map[string]string
}

// NewSnapshotStore constructs a SnapshotStore.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string]tracker.Snapshot),
		runs:      make(map[string]string),
	}
}

// SaveSnapshot replaces the snapshot stored under name.
func (s *SnapshotStore) SaveSnapshot(_ context.Context, runID string, name string, snapshot tracker.Snapshot) error {
	snapshot.Bills = slices.Clone(snapshot.Bills)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[name] = snapshot
	s.runs[name] = runID
	return nil
}

// Latest returns the snapshot stored under name and the run that wrote it.
func (s *SnapshotStore) Latest(name string) (tracker.Snapshot, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[name]
	if !ok {
		return tracker.Snapshot{}, "", false
	}
	snap.Bills = slices.Clone(snap.Bills)
	return snap, s.runs[name], true
}
