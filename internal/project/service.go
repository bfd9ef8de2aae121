// Package project handles project lifecycle on top of the work-context
// store, including the deletion cascade across the other stores.
package project

import (
	"fmt"
	"log/slog"

	"github.com/MostafaAmin07/super-productivity/internal/archive"
	"github.com/MostafaAmin07/super-productivity/internal/model"
	"github.com/MostafaAmin07/super-productivity/internal/repeatcfg"
	"github.com/MostafaAmin07/super-productivity/internal/task"
	"github.com/MostafaAmin07/super-productivity/internal/workcontext"
)

type Service struct {
	Contexts *workcontext.Store
	Tasks    task.Store
	Archive  *archive.Store
	Cfgs     *repeatcfg.Store
	Pointer  *workcontext.Pointer
	Log      *slog.Logger
}

func (s *Service) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

// Create adds a project context.
func (s *Service) Create(title string) (model.WorkContext, error) {
	return s.Contexts.Add(model.WorkContext{Type: model.WorkContextProject, Title: title})
}

// CreateTag adds a tag context. Tags carry no backlog.
func (s *Service) CreateTag(title string) (model.WorkContext, error) {
	return s.Contexts.Add(model.WorkContext{Type: model.WorkContextTag, Title: title})
}

// Delete removes a project and everything only it owns: its live tasks
// with their sub-tasks, its archived history, and its membership in
// every context list. Repeat configs survive but lose their project
// assignment. The active pointer is cleared if it pointed here.
func (s *Service) Delete(id model.WorkContextID) error {
	ctx, err := s.Contexts.Get(id)
	if err != nil {
		return err
	}
	if ctx.Type != model.WorkContextProject {
		return fmt.Errorf("context %s: %w", id, workcontext.ErrNotProjectContext)
	}

	all, err := s.Tasks.All()
	if err != nil {
		return fmt.Errorf("load tasks for project delete: %w", err)
	}
	doomed := make([]model.TaskID, 0)
	for _, t := range all {
		if t.ParentID == nil && t.ProjectID != nil && *t.ProjectID == id {
			doomed = append(doomed, t.ID)
			doomed = append(doomed, t.SubTaskIDs...)
		}
	}

	s.Contexts.RemoveFromAllLists(doomed)
	if err := s.Tasks.RemoveMany(doomed); err != nil {
		return fmt.Errorf("remove tasks for project %s: %w", id, err)
	}
	archivedGone := s.Archive.RemoveForProject(id)

	// Configs scoped solely to this project die with it. Configs that
	// also carry tags stay reachable, so they only lose the assignment.
	deleted := 0
	for _, cfg := range s.Cfgs.ByProject(id) {
		if len(cfg.TagIDs) == 0 {
			if err := s.Cfgs.Delete(cfg.ID); err == nil {
				deleted++
			}
		}
	}
	unassigned := s.Cfgs.UnassignProject(id)

	if err := s.Contexts.Remove(id); err != nil {
		return err
	}
	if active, ok := s.Pointer.Active(); ok && active.ID == id {
		s.Pointer.Clear()
	}

	s.log().Info("project deleted",
		slog.String("projectId", string(id)),
		slog.Int("tasksRemoved", len(doomed)),
		slog.Int("archivedRemoved", archivedGone),
		slog.Int("cfgsDeleted", deleted),
		slog.Int("cfgsUnassigned", unassigned))
	return nil
}
