package sync

import (
	stdsync "sync"
	"time"
)

// Snapshot is a point-in-time view of the sync subsystem for UI indicators.
type Snapshot struct {
	IsOnline     bool
	PendingCount int
	IsSyncing    bool
	LastSyncAt   time.Time
}

// Status is the shared signal bundle published by the engine, the poller and
// the connectivity watcher, and read by the CLI.
type Status struct {
	mu         stdsync.RWMutex
	online     bool
	pending    int
	syncing    bool
	lastSyncAt time.Time
}

func NewStatus() *Status {
	return &Status{}
}

func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		IsOnline:     s.online,
		PendingCount: s.pending,
		IsSyncing:    s.syncing,
		LastSyncAt:   s.lastSyncAt,
	}
}

func (s *Status) setOnline(v bool) {
	s.mu.Lock()
	s.online = v
	s.mu.Unlock()
}

func (s *Status) setPending(n int) {
	s.mu.Lock()
	s.pending = n
	s.mu.Unlock()
}

func (s *Status) setSyncing(v bool) {
	s.mu.Lock()
	s.syncing = v
	s.mu.Unlock()
}

func (s *Status) setLastSyncAt(t time.Time) {
	s.mu.Lock()
	s.lastSyncAt = t
	s.mu.Unlock()
}
