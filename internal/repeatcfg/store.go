// Package repeatcfg stores the user-defined repeat configurations the
// scheduler consumes.
package repeatcfg

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MostafaAmin07/super-productivity/internal/model"
)

var ErrNotFound = errors.New("repeat config not found")

// Patch represents a partial update.
// nil pointer => "no change"; empty ProjectID => clear.
type Patch struct {
	Title            *string              `json:"title,omitempty"`
	ProjectID        *model.WorkContextID `json:"projectId,omitempty"`
	TagIDs           *[]string            `json:"tagIds,omitempty"`
	DefaultEstimate  *time.Duration       `json:"defaultEstimate,omitempty"`
	Days             *model.RepeatDays    `json:"days,omitempty"`
	LastTaskCreation *time.Time           `json:"lastTaskCreation,omitempty"`
}

type Store struct {
	mu   sync.RWMutex
	cfgs map[model.RepeatCfgID]model.TaskRepeatCfg
}

func NewStore() *Store {
	return &Store{cfgs: map[model.RepeatCfgID]model.TaskRepeatCfg{}}
}

func (s *Store) Add(c model.TaskRepeatCfg) (model.TaskRepeatCfg, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = model.RepeatCfgID(uuid.NewString())
	}
	if c.TagIDs == nil {
		c.TagIDs = []string{}
	}
	s.cfgs[c.ID] = c
	return c, nil
}

func (s *Store) Get(id model.RepeatCfgID) (model.TaskRepeatCfg, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cfgs[id]
	if !ok {
		return model.TaskRepeatCfg{}, ErrNotFound
	}
	return c, nil
}

func (s *Store) Update(id model.RepeatCfgID, p Patch) (model.TaskRepeatCfg, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cfgs[id]
	if !ok {
		return model.TaskRepeatCfg{}, ErrNotFound
	}

	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.ProjectID != nil {
		if *p.ProjectID == "" {
			c.ProjectID = nil
		} else {
			c.ProjectID = p.ProjectID
		}
	}
	if p.TagIDs != nil {
		if *p.TagIDs == nil {
			c.TagIDs = []string{}
		} else {
			c.TagIDs = *p.TagIDs
		}
	}
	if p.DefaultEstimate != nil {
		c.DefaultEstimate = *p.DefaultEstimate
	}
	if p.Days != nil {
		c.Days = *p.Days
	}
	if p.LastTaskCreation != nil {
		c.LastTaskCreation = *p.LastTaskCreation
	}

	s.cfgs[id] = c
	return c, nil
}

func (s *Store) Delete(id model.RepeatCfgID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cfgs[id]; !ok {
		return ErrNotFound
	}
	delete(s.cfgs, id)
	return nil
}

func (s *Store) All() []model.TaskRepeatCfg {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.TaskRepeatCfg, 0, len(s.cfgs))
	for _, c := range s.cfgs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByProject returns configs assigned to the given project.
func (s *Store) ByProject(projectID model.WorkContextID) []model.TaskRepeatCfg {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.TaskRepeatCfg, 0)
	for _, c := range s.cfgs {
		if c.ProjectID != nil && *c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UnassignProject clears the project assignment on every config pointing
// at the given project. Bulk reassignment used when a project goes away
// but the config still carries tags.
func (s *Store) UnassignProject(projectID model.WorkContextID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, c := range s.cfgs {
		if c.ProjectID != nil && *c.ProjectID == projectID {
			c.ProjectID = nil
			s.cfgs[id] = c
			n++
		}
	}
	return n
}

// Snapshot/Load are the persistence shape: a plain slice.
func (s *Store) Snapshot() []model.TaskRepeatCfg {
	return s.All()
}

func (s *Store) Load(cfgs []model.TaskRepeatCfg) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfgs = make(map[model.RepeatCfgID]model.TaskRepeatCfg, len(cfgs))
	for _, c := range cfgs {
		s.cfgs[c.ID] = c
	}
}
