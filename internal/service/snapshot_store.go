package service

import (
	"sync"
	"sync/atomic"

	"github.com/slaworks/sla-service/internal/domain"
)

// SnapshotStore holds the latest published compliance snapshot. Readers get an
// immutable pointer and never see a partially built aggregate.
type SnapshotStore struct {
	writeMu sync.Mutex
	current atomic.Pointer[domain.ComplianceSnapshot]
}

// NewSnapshotStore returns an empty store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Publish replaces the current snapshot unless it is newer than the candidate.
// It reports whether the candidate was stored.
func (s *SnapshotStore) Publish(snapshot *domain.ComplianceSnapshot) bool {
	if snapshot == nil {
		return false
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if current := s.current.Load(); current != nil && current.GeneratedAt.After(snapshot.GeneratedAt) {
		return false
	}
	s.current.Store(snapshot)
	return true
}

// Latest returns the current snapshot or nil.
func (s *SnapshotStore) Latest() *domain.ComplianceSnapshot {
	return s.current.Load()
}
