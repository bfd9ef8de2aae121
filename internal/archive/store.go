// Package archive holds retired task snapshots. The store is append-only
// except for field patches, e.g. clearing a dangling repeat-config
// reference after its config is deleted.
package archive

import (
	"sync"

	"github.com/MostafaAmin07/super-productivity/internal/model"
)

type Store struct {
	mu       sync.RWMutex
	ids      []model.TaskID
	entities map[model.TaskID]model.Task
}

func NewStore() *Store {
	return &Store{entities: map[model.TaskID]model.Task{}}
}

// Append stores task snapshots, preserving all fields. Re-appending an
// already archived id overwrites its snapshot without duplicating the id.
func (s *Store) Append(tasks ...model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range tasks {
		if _, ok := s.entities[t.ID]; !ok {
			s.ids = append(s.ids, t.ID)
		}
		s.entities[t.ID] = t
	}
}

func (s *Store) Get(id model.TaskID) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.entities[id]
	return t, ok
}

// ClearRepeatCfg severs the back-reference to a deleted config on every
// archived task carrying it. History is otherwise preserved. Returns the
// number of patched tasks.
func (s *Store) ClearRepeatCfg(cfgID model.RepeatCfgID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	patched := 0
	for id, t := range s.entities {
		if t.RepeatCfgID != nil && *t.RepeatCfgID == cfgID {
			t.RepeatCfgID = nil
			s.entities[id] = t
			patched++
		}
	}
	return patched
}

// RemoveForProject drops archived main tasks belonging to a deleted
// project. Sub-tasks follow their parent.
func (s *Store) RemoveForProject(projectID model.WorkContextID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	doomed := map[model.TaskID]bool{}
	for _, t := range s.entities {
		if t.ParentID == nil && t.ProjectID != nil && *t.ProjectID == projectID {
			doomed[t.ID] = true
			for _, subID := range t.SubTaskIDs {
				doomed[subID] = true
			}
		}
	}
	if len(doomed) == 0 {
		return 0
	}

	kept := make([]model.TaskID, 0, len(s.ids))
	for _, id := range s.ids {
		if doomed[id] {
			delete(s.entities, id)
			continue
		}
		kept = append(kept, id)
	}
	s.ids = kept
	return len(doomed)
}

// Snapshot returns a deep-enough copy for persistence.
func (s *Store) Snapshot() model.TaskArchive {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := model.TaskArchive{
		IDs:      make([]model.TaskID, len(s.ids)),
		Entities: make(map[model.TaskID]model.Task, len(s.entities)),
	}
	copy(out.IDs, s.ids)
	for id, t := range s.entities {
		out.Entities[id] = t
	}
	return out
}

// Load replaces the store contents with a persisted snapshot.
func (s *Store) Load(a model.TaskArchive) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = make([]model.TaskID, len(a.IDs))
	copy(s.ids, a.IDs)
	s.entities = make(map[model.TaskID]model.Task, len(a.Entities))
	for id, t := range a.Entities {
		s.entities[id] = t
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
