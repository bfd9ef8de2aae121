// Package persistence is the external storage collaborator: opaque state
// snapshots keyed by kind, plus "last active" bookkeeping. Failures here
// are surfaced and logged but never abort in-memory state.
package persistence

import (
	"errors"
	"sync"
	"time"
)

var ErrUnavailable = errors.New("persistence unavailable")

const (
	KindTaskRepeatCfg = "taskRepeatCfg"
	KindTaskArchive   = "taskArchive"
	KindWorkContext   = "workContext"
)

type Store interface {
	// LoadState returns the snapshot for kind, or ok=false when the kind
	// was never persisted.
	LoadState(kind string) (data []byte, ok bool, err error)
	SaveState(kind string, data []byte) error
	SaveLastActive(t time.Time) error
}

// MemoryStore keeps snapshots in memory (dev/test use).
type MemoryStore struct {
	mu         sync.RWMutex
	states     map[string][]byte
	lastActive time.Time

	// FailSaves makes every write fail (test use).
	FailSaves bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: map[string][]byte{}}
}

func (s *MemoryStore) LoadState(kind string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.states[kind]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (s *MemoryStore) SaveState(kind string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSaves {
		return ErrUnavailable
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.states[kind] = cp
	return nil
}

func (s *MemoryStore) SaveLastActive(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSaves {
		return ErrUnavailable
	}
	s.lastActive = t
	return nil
}

func (s *MemoryStore) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}
