package task

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MostafaAmin07/super-productivity/internal/model"
)

var ErrNotFound = errors.New("task not found")

// Patch represents a partial update.
// nil pointer => "no change"
// empty string for pointer fields (ProjectID/RepeatCfgID/ReminderID) => clear (set to nil)
type Patch struct {
	Title        *string              `json:"title,omitempty"`
	IsDone       *bool                `json:"isDone,omitempty"`
	ProjectID    *model.WorkContextID `json:"projectId,omitempty"`
	TagIDs       *[]string            `json:"tagIds,omitempty"`
	TimeEstimate *time.Duration       `json:"timeEstimate,omitempty"`
	RepeatCfgID  *model.RepeatCfgID   `json:"repeatCfgId,omitempty"`
	ReminderID   *string              `json:"reminderId,omitempty"`
}

type Store interface {
	Add(t model.Task) (model.Task, error)
	Get(id model.TaskID) (model.Task, error)
	Update(id model.TaskID, p Patch) (model.Task, error)
	Remove(id model.TaskID) error
	RemoveMany(ids []model.TaskID) error
	All() ([]model.Task, error)
	ByRepeatCfg(cfgID model.RepeatCfgID) ([]model.Task, error)
	ByRepeatCfgWithSubTasks(cfgID model.RepeatCfgID) ([]model.TaskWithSubTasks, error)
	AddSubTask(parentID model.TaskID, sub model.Task) (model.Task, error)
	AddTimeSpent(id model.TaskID, day string, d time.Duration) (model.Task, error)
}

type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[model.TaskID]model.Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: map[model.TaskID]model.Task{}}
}

func newID() model.TaskID {
	return model.TaskID(uuid.NewString())
}

func normalizeTask(t *model.Task) {
	if t.TagIDs == nil {
		t.TagIDs = []string{}
	}
	if t.SubTaskIDs == nil {
		t.SubTaskIDs = []model.TaskID{}
	}
	if t.TimeSpentOnDay == nil {
		t.TimeSpentOnDay = map[string]time.Duration{}
	}
}

func applyPatch(t *model.Task, p Patch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.IsDone != nil {
		t.IsDone = *p.IsDone
	}

	// pointer fields with "empty clears" semantics
	if p.ProjectID != nil {
		if *p.ProjectID == "" {
			t.ProjectID = nil
		} else {
			t.ProjectID = p.ProjectID
		}
	}
	if p.RepeatCfgID != nil {
		if *p.RepeatCfgID == "" {
			t.RepeatCfgID = nil
		} else {
			t.RepeatCfgID = p.RepeatCfgID
		}
	}
	if p.ReminderID != nil {
		if *p.ReminderID == "" {
			t.ReminderID = nil
		} else {
			t.ReminderID = p.ReminderID
		}
	}

	if p.TagIDs != nil {
		if *p.TagIDs == nil {
			t.TagIDs = []string{}
		} else {
			t.TagIDs = *p.TagIDs
		}
	}
	if p.TimeEstimate != nil {
		t.TimeEstimate = *p.TimeEstimate
	}
}

func (s *MemoryStore) Add(t model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(t)
}

func (s *MemoryStore) addLocked(t model.Task) (model.Task, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	if _, exists := s.tasks[t.ID]; exists {
		return model.Task{}, fmt.Errorf("task already exists: %s", t.ID)
	}
	if t.Created.IsZero() {
		t.Created = time.Now()
	}
	normalizeTask(&t)

	if t.ParentID != nil {
		parent, ok := s.tasks[*t.ParentID]
		if !ok {
			return model.Task{}, fmt.Errorf("parent %s: %w", *t.ParentID, ErrNotFound)
		}
		parent.SubTaskIDs = append(parent.SubTaskIDs, t.ID)
		s.tasks[parent.ID] = parent
	}

	s.tasks[t.ID] = t
	return t, nil
}

func (s *MemoryStore) Get(id model.TaskID) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	normalizeTask(&t)
	return t, nil
}

func (s *MemoryStore) Update(id model.TaskID, p Patch) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	applyPatch(&t, p)
	normalizeTask(&t)
	s.tasks[id] = t
	return t, nil
}

// Remove deletes a task together with its sub-tasks and detaches it from
// its parent's SubTaskIDs.
func (s *MemoryStore) Remove(id model.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

func (s *MemoryStore) RemoveMany(ids []model.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if err := s.removeLocked(id); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) removeLocked(id model.TaskID) error {
	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}

	for _, subID := range t.SubTaskIDs {
		delete(s.tasks, subID)
	}

	if t.ParentID != nil {
		if parent, ok := s.tasks[*t.ParentID]; ok {
			kept := make([]model.TaskID, 0, len(parent.SubTaskIDs))
			for _, sid := range parent.SubTaskIDs {
				if sid != id {
					kept = append(kept, sid)
				}
			}
			parent.SubTaskIDs = kept
			s.tasks[parent.ID] = parent
		}
	}

	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) All() ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		normalizeTask(&t)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.Before(out[j].Created)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) ByRepeatCfg(cfgID model.RepeatCfgID) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, 0)
	for _, t := range s.tasks {
		if t.RepeatCfgID != nil && *t.RepeatCfgID == cfgID {
			normalizeTask(&t)
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ByRepeatCfgWithSubTasks materializes every task spawned by the given
// config together with its sub-task records.
func (s *MemoryStore) ByRepeatCfgWithSubTasks(cfgID model.RepeatCfgID) ([]model.TaskWithSubTasks, error) {
	parents, err := s.ByRepeatCfg(cfgID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.TaskWithSubTasks, 0, len(parents))
	for _, p := range parents {
		tw := model.TaskWithSubTasks{Task: p}
		for _, subID := range p.SubTaskIDs {
			if sub, ok := s.tasks[subID]; ok {
				normalizeTask(&sub)
				tw.SubTasks = append(tw.SubTasks, sub)
			}
		}
		out = append(out, tw)
	}
	return out, nil
}

func (s *MemoryStore) AddSubTask(parentID model.TaskID, sub model.Task) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub.ParentID = &parentID
	return s.addLocked(sub)
}

// AddTimeSpent records work on a day and bumps the cumulative total.
func (s *MemoryStore) AddTimeSpent(id model.TaskID, day string, d time.Duration) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	normalizeTask(&t)
	t.TimeSpentOnDay[day] += d
	t.TimeSpent += d
	s.tasks[id] = t
	return t, nil
}
