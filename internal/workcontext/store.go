// Package workcontext holds work contexts (projects and tags), the active
// context pointer and the derived views computed over the task store.
package workcontext

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MostafaAmin07/super-productivity/internal/model"
)

var (
	ErrNotFound = errors.New("work context not found")

	// ErrInvalidArgument flags malformed input to a view, e.g. a missing
	// id list where a sequence is required.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotProjectContext flags a caller-side logic bug: the operation
	// requires the active context to be a project.
	ErrNotProjectContext = errors.New("active context is not a project")

	// ErrDataCorruption flags a task/context membership mismatch.
	ErrDataCorruption = errors.New("task context membership corrupted")
)

type Store struct {
	mu       sync.RWMutex
	contexts map[model.WorkContextID]model.WorkContext
}

func NewStore() *Store {
	return &Store{contexts: map[model.WorkContextID]model.WorkContext{}}
}

func normalizeContext(c *model.WorkContext) {
	if c.TaskIDs == nil {
		c.TaskIDs = []model.TaskID{}
	}
	if c.BacklogTaskIDs == nil && c.Type == model.WorkContextProject {
		c.BacklogTaskIDs = []model.TaskID{}
	}
	if c.WorkStart == nil {
		c.WorkStart = map[string]int64{}
	}
	if c.WorkEnd == nil {
		c.WorkEnd = map[string]int64{}
	}
	if c.BreakTime == nil {
		c.BreakTime = map[string]time.Duration{}
	}
	if c.BreakNr == nil {
		c.BreakNr = map[string]int{}
	}
}

func (s *Store) Add(c model.WorkContext) (model.WorkContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = model.WorkContextID(uuid.NewString())
	}
	if c.Type == "" {
		c.Type = model.WorkContextProject
	}
	normalizeContext(&c)
	s.contexts[c.ID] = c
	return c, nil
}

func (s *Store) Get(id model.WorkContextID) (model.WorkContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contexts[id]
	if !ok {
		return model.WorkContext{}, ErrNotFound
	}
	normalizeContext(&c)
	return c, nil
}

func (s *Store) Remove(id model.WorkContextID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contexts[id]; !ok {
		return ErrNotFound
	}
	delete(s.contexts, id)
	return nil
}

func (s *Store) All() []model.WorkContext {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.WorkContext, 0, len(s.contexts))
	for _, c := range s.contexts {
		normalizeContext(&c)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddToToday inserts a task id into the context's today list. New repeat
// instances go to the top; user-added tasks usually to the bottom.
func (s *Store) AddToToday(id model.WorkContextID, taskID model.TaskID, toBottom bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contexts[id]
	if !ok {
		return ErrNotFound
	}
	normalizeContext(&c)
	c.TaskIDs = insertID(withoutID(c.TaskIDs, taskID), taskID, toBottom)
	c.BacklogTaskIDs = withoutID(c.BacklogTaskIDs, taskID)
	s.contexts[id] = c
	return nil
}

func (s *Store) AddToBacklog(id model.WorkContextID, taskID model.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contexts[id]
	if !ok {
		return ErrNotFound
	}
	normalizeContext(&c)
	c.BacklogTaskIDs = insertID(withoutID(c.BacklogTaskIDs, taskID), taskID, true)
	c.TaskIDs = withoutID(c.TaskIDs, taskID)
	s.contexts[id] = c
	return nil
}

// RemoveFromAllLists strips the given task ids from every context's today
// and backlog lists. Used when tasks are archived or deleted.
func (s *Store) RemoveFromAllLists(taskIDs []model.TaskID) {
	if len(taskIDs) == 0 {
		return
	}
	doomed := make(map[model.TaskID]bool, len(taskIDs))
	for _, id := range taskIDs {
		doomed[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.contexts {
		c.TaskIDs = withoutIDs(c.TaskIDs, doomed)
		c.BacklogTaskIDs = withoutIDs(c.BacklogTaskIDs, doomed)
		s.contexts[id] = c
	}
}

// SetTodayList rewrites the today list wholesale (orphan repair).
func (s *Store) SetTodayList(id model.WorkContextID, taskIDs []model.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contexts[id]
	if !ok {
		return ErrNotFound
	}
	normalizeContext(&c)
	c.TaskIDs = append([]model.TaskID{}, taskIDs...)
	s.contexts[id] = c
	return nil
}

// SetBacklogList rewrites the backlog list wholesale (orphan repair).
func (s *Store) SetBacklogList(id model.WorkContextID, taskIDs []model.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contexts[id]
	if !ok {
		return ErrNotFound
	}
	normalizeContext(&c)
	c.BacklogTaskIDs = append([]model.TaskID{}, taskIDs...)
	s.contexts[id] = c
	return nil
}

// SetWorkStart stamps the first activity of a day; later calls for the
// same day are ignored.
func (s *Store) SetWorkStart(id model.WorkContextID, day string, epochMS int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contexts[id]
	if !ok {
		return ErrNotFound
	}
	normalizeContext(&c)
	if _, exists := c.WorkStart[day]; !exists {
		c.WorkStart[day] = epochMS
		s.contexts[id] = c
	}
	return nil
}

func (s *Store) SetWorkEnd(id model.WorkContextID, day string, epochMS int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contexts[id]
	if !ok {
		return ErrNotFound
	}
	normalizeContext(&c)
	c.WorkEnd[day] = epochMS
	s.contexts[id] = c
	return nil
}

// AddBreakTime accumulates break duration for the day and bumps the count.
func (s *Store) AddBreakTime(id model.WorkContextID, day string, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contexts[id]
	if !ok {
		return ErrNotFound
	}
	normalizeContext(&c)
	c.BreakTime[day] += d
	c.BreakNr[day]++
	s.contexts[id] = c
	return nil
}

// UpdateAdvancedCfg replaces one opaque per-section settings blob.
func (s *Store) UpdateAdvancedCfg(id model.WorkContextID, section string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contexts[id]
	if !ok {
		return ErrNotFound
	}
	if c.AdvancedCfg == nil {
		c.AdvancedCfg = map[string]any{}
	}
	c.AdvancedCfg[section] = data
	s.contexts[id] = c
	return nil
}

func (s *Store) Snapshot() []model.WorkContext {
	return s.All()
}

func (s *Store) Load(contexts []model.WorkContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.contexts = make(map[model.WorkContextID]model.WorkContext, len(contexts))
	for _, c := range contexts {
		s.contexts[c.ID] = c
	}
}

func withoutID(ids []model.TaskID, id model.TaskID) []model.TaskID {
	out := make([]model.TaskID, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func withoutIDs(ids []model.TaskID, doomed map[model.TaskID]bool) []model.TaskID {
	out := make([]model.TaskID, 0, len(ids))
	for _, v := range ids {
		if !doomed[v] {
			out = append(out, v)
		}
	}
	return out
}

func insertID(ids []model.TaskID, id model.TaskID, toBottom bool) []model.TaskID {
	if toBottom {
		return append(ids, id)
	}
	return append([]model.TaskID{id}, ids...)
}
