package workcontext

import (
	"errors"
	"fmt"

	"github.com/MostafaAmin07/super-productivity/internal/metrics"
	"github.com/MostafaAmin07/super-productivity/internal/model"
	"github.com/MostafaAmin07/super-productivity/internal/notify"
	"github.com/MostafaAmin07/super-productivity/internal/task"
)

// Confirmer decides whether a destructive repair may proceed. In the
// server it is backed by an explicit confirm flag on the repair request;
// tests inject a canned answer.
type Confirmer interface {
	Confirm(msg string) bool
}

type ConfirmerFunc func(msg string) bool

func (f ConfirmerFunc) Confirm(msg string) bool { return f(msg) }

// OrphanReport lists ids that are listed by a project context but not
// actually owned by it.
type OrphanReport struct {
	ContextID model.WorkContextID `json:"contextId"`
	Today     []model.TaskID      `json:"today"`
	Backlog   []model.TaskID      `json:"backlog"`
}

func (r OrphanReport) Empty() bool {
	return len(r.Today) == 0 && len(r.Backlog) == 0
}

// FindOrphans checks the active project context's lists for task ids
// that do not resolve, or resolve to a task belonging to a different
// project. Only meaningful for projects; tag membership lives on the
// task itself.
func (s *Service) FindOrphans() (OrphanReport, error) {
	projectID, err := s.ActiveIDIfProject()
	if err != nil {
		return OrphanReport{}, err
	}
	ctx, err := s.Contexts.Get(projectID)
	if err != nil {
		return OrphanReport{}, err
	}

	report := OrphanReport{ContextID: projectID}
	report.Today, err = s.orphansIn(ctx.TaskIDs, projectID)
	if err != nil {
		return OrphanReport{}, err
	}
	report.Backlog, err = s.orphansIn(ctx.BacklogTaskIDs, projectID)
	if err != nil {
		return OrphanReport{}, err
	}
	if n := len(report.Today) + len(report.Backlog); n > 0 {
		metrics.OrphanTasksDetectedTotal.Add(float64(n))
	}
	return report, nil
}

func (s *Service) orphansIn(ids []model.TaskID, projectID model.WorkContextID) ([]model.TaskID, error) {
	out := []model.TaskID{}
	for _, id := range ids {
		t, err := s.Tasks.Get(id)
		if err != nil {
			if errors.Is(err, task.ErrNotFound) {
				out = append(out, id)
				continue
			}
			return nil, err
		}
		if t.ProjectID == nil || *t.ProjectID != projectID {
			out = append(out, id)
		}
	}
	return out, nil
}

// RepairActiveProject unlists orphaned ids from the active project's
// lists after the confirmer agrees. The tasks themselves are never
// touched; only the membership lists are rewritten. Returns the report
// of what was (or would have been) unlisted.
func (s *Service) RepairActiveProject(confirm Confirmer) (OrphanReport, error) {
	report, err := s.FindOrphans()
	if err != nil {
		return OrphanReport{}, err
	}
	if report.Empty() {
		return report, nil
	}

	msg := fmt.Sprintf("found %d task(s) listed in project %q that it does not own; remove them from its lists?",
		len(report.Today)+len(report.Backlog), report.ContextID)
	if s.Notifier != nil {
		s.Notifier.Notify(notify.KindError, "inconsistent project task lists detected", map[string]any{
			"contextId": report.ContextID,
			"today":     report.Today,
			"backlog":   report.Backlog,
		})
	}
	if confirm == nil || !confirm.Confirm(msg) {
		return report, nil
	}

	ctx, err := s.Contexts.Get(report.ContextID)
	if err != nil {
		return OrphanReport{}, err
	}
	if err := s.Contexts.SetTodayList(report.ContextID, subtract(ctx.TaskIDs, report.Today)); err != nil {
		return OrphanReport{}, err
	}
	if err := s.Contexts.SetBacklogList(report.ContextID, subtract(ctx.BacklogTaskIDs, report.Backlog)); err != nil {
		return OrphanReport{}, err
	}
	metrics.OrphanTasksUnlistedTotal.Add(float64(len(report.Today) + len(report.Backlog)))
	return report, nil
}

func subtract(ids, remove []model.TaskID) []model.TaskID {
	doomed := make(map[model.TaskID]bool, len(remove))
	for _, id := range remove {
		doomed[id] = true
	}
	return withoutIDs(ids, doomed)
}
