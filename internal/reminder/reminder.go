// Package reminder is the external reminder collaborator contract.
package reminder

import "sync"

type Service interface {
	RemoveReminder(id string)
}

// MemoryService tracks reminders in memory (dev/test use).
type MemoryService struct {
	mu      sync.Mutex
	pending map[string]bool
	removed []string
}

func NewMemoryService() *MemoryService {
	return &MemoryService{pending: map[string]bool{}}
}

func (s *MemoryService) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[id] = true
}

func (s *MemoryService) RemoveReminder(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
	s.removed = append(s.removed, id)
}

func (s *MemoryService) Removed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.removed))
	copy(out, s.removed)
	return out
}
