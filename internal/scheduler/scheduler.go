// Package scheduler spawns task instances from repeat configurations.
// Passes are idempotent per day: a config yields at most one live
// instance, and stale same-day instances are swept into the archive.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MostafaAmin07/super-productivity/internal/archive"
	"github.com/MostafaAmin07/super-productivity/internal/clock"
	"github.com/MostafaAmin07/super-productivity/internal/metrics"
	"github.com/MostafaAmin07/super-productivity/internal/model"
	"github.com/MostafaAmin07/super-productivity/internal/notify"
	"github.com/MostafaAmin07/super-productivity/internal/persistence"
	"github.com/MostafaAmin07/super-productivity/internal/reminder"
	"github.com/MostafaAmin07/super-productivity/internal/repeatcfg"
	"github.com/MostafaAmin07/super-productivity/internal/task"
	"github.com/MostafaAmin07/super-productivity/internal/workcontext"
	"github.com/MostafaAmin07/super-productivity/internal/worklog"
)

type Scheduler struct {
	Cfgs      *repeatcfg.Store
	Tasks     task.Store
	Archive   *archive.Store
	Contexts  *workcontext.Store
	Pointer   *workcontext.Pointer
	Reminders reminder.Service
	Notifier  notify.Notifier
	Persist   persistence.Store
	Clock     clock.Clock
	Log       *slog.Logger

	// mu serializes passes. Concurrent triggers (navigation plus the
	// heartbeat firing together) must not double-create instances.
	mu sync.Mutex
}

// TickResult reports what one pass did.
type TickResult struct {
	Eligible int `json:"eligible"`
	Created  int `json:"created"`
	Archived int `json:"archived"`
	Failed   int `json:"failed"`
}

func (s *Scheduler) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

func (s *Scheduler) now() clock.Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return clock.RealClock{}
}

// Tick runs one scheduling pass: pick the configs due for today, sweep
// their stale same-day instances into the archive and spawn the day's
// instance where none was created yet. Failures are isolated per config;
// one broken config never starves the rest.
func (s *Scheduler) Tick(ctx context.Context) (TickResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Now()
	weekday := now.Weekday()

	eligible := make([]model.TaskRepeatCfg, 0)
	for _, cfg := range s.Cfgs.All() {
		if cfg.Days.On(weekday) && !worklog.SameDay(cfg.LastTaskCreation, now) {
			eligible = append(eligible, cfg)
		}
	}

	var (
		resMu  sync.Mutex
		result = TickResult{Eligible: len(eligible)}
		wg     sync.WaitGroup
	)
	for _, cfg := range eligible {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(cfg model.TaskRepeatCfg) {
			defer wg.Done()
			created, archived, err := s.processCfg(cfg)

			resMu.Lock()
			defer resMu.Unlock()
			result.Created += created
			result.Archived += archived
			if err != nil {
				result.Failed++
				s.log().Error("repeat config pass failed",
					slog.String("cfgId", string(cfg.ID)), slog.Any("error", err))
			}
		}(cfg)
	}
	wg.Wait()

	metrics.RecordPass(result.Failed == 0)
	if result.Created > 0 {
		metrics.RepeatTasksCreatedTotal.Add(float64(result.Created))
	}
	if result.Archived > 0 {
		metrics.RepeatTasksArchivedTotal.Add(float64(result.Archived))
	}

	s.persistAfterPass(now)
	return result, ctx.Err()
}

// processCfg handles one due config. The create decision is taken from
// the state BEFORE the sweep: if an instance was already created today,
// the sweep still retires it but no replacement is spawned in the same
// pass.
func (s *Scheduler) processCfg(cfg model.TaskRepeatCfg) (created, archived int, err error) {
	now := s.now().Now()

	families, err := s.Tasks.ByRepeatCfgWithSubTasks(cfg.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("load tasks for cfg %s: %w", cfg.ID, err)
	}

	stale := make([]model.TaskWithSubTasks, 0, len(families))
	for _, fam := range families {
		if worklog.SameDay(fam.Created, now) {
			stale = append(stale, fam)
		}
	}
	createNew := len(stale) == 0

	if len(stale) > 0 {
		flat := model.Flatten(stale)
		s.Archive.Append(flat...)

		ids := make([]model.TaskID, 0, len(flat))
		for _, t := range flat {
			ids = append(ids, t.ID)
		}
		s.Contexts.RemoveFromAllLists(ids)

		parentIDs := make([]model.TaskID, 0, len(stale))
		for _, fam := range stale {
			parentIDs = append(parentIDs, fam.ID)
		}
		if err := s.Tasks.RemoveMany(parentIDs); err != nil {
			return 0, 0, fmt.Errorf("retire stale instances for cfg %s: %w", cfg.ID, err)
		}
		archived = len(stale)
	}

	// The stamp moves only when something was actually created. An
	// archive-only pass leaves the config eligible, so a lost stamp heals
	// itself: one pass retires the duplicates, the next recreates the
	// day's instance.
	if createNew {
		if err := s.spawn(cfg, now); err != nil {
			return 0, archived, err
		}
		created = 1
		lastCreation := now
		if _, err := s.Cfgs.Update(cfg.ID, repeatcfg.Patch{LastTaskCreation: &lastCreation}); err != nil {
			return created, archived, fmt.Errorf("stamp lastTaskCreation on cfg %s: %w", cfg.ID, err)
		}
	}
	return created, archived, nil
}

func (s *Scheduler) spawn(cfg model.TaskRepeatCfg, now time.Time) error {
	cfgID := cfg.ID
	t := model.Task{
		ID:           model.TaskID(uuid.NewString()),
		Title:        cfg.Title,
		ProjectID:    cfg.ProjectID,
		TagIDs:       append([]string{}, cfg.TagIDs...),
		TimeEstimate: cfg.DefaultEstimate,
		Created:      now,
		RepeatCfgID:  &cfgID,
	}
	if _, err := s.Tasks.Add(t); err != nil {
		return fmt.Errorf("create instance for cfg %s: %w", cfg.ID, err)
	}

	// The instance lands at the top of the CURRENTLY ACTIVE context's
	// today list, whatever context that is. Without an active context the
	// task still exists and is reachable through its project or tags.
	if active, ok := s.Pointer.Active(); ok {
		if err := s.Contexts.AddToToday(active.ID, t.ID, false); err != nil {
			s.log().Warn("created repeat instance but could not list it",
				slog.String("taskId", string(t.ID)),
				slog.String("contextId", string(active.ID)),
				slog.Any("error", err))
		}
	} else {
		s.log().Warn("created repeat instance with no active context",
			slog.String("taskId", string(t.ID)))
	}
	return nil
}

// persistAfterPass writes the config and archive snapshots plus the
// last-active stamp. Persistence trouble is reported but never rolls
// back in-memory state.
func (s *Scheduler) persistAfterPass(now time.Time) {
	if s.Persist == nil {
		return
	}
	s.saveSnapshot(persistence.KindTaskRepeatCfg, s.Cfgs.Snapshot())
	s.saveSnapshot(persistence.KindTaskArchive, s.Archive.Snapshot())
	s.saveSnapshot(persistence.KindWorkContext, s.Contexts.Snapshot())
	if err := s.Persist.SaveLastActive(now); err != nil {
		metrics.RecordPersistenceError("lastActive")
		s.log().Error("save lastActive failed", slog.Any("error", err))
	}
}

func (s *Scheduler) saveSnapshot(kind string, v any) {
	data, err := json.Marshal(v)
	if err == nil {
		err = s.Persist.SaveState(kind, data)
	}
	if err != nil {
		metrics.RecordPersistenceError(kind)
		s.log().Error("save snapshot failed", slog.String("kind", kind), slog.Any("error", err))
		if s.Notifier != nil {
			s.Notifier.Notify(notify.KindError, "saving state failed", map[string]any{"kind": kind})
		}
	}
}

// DeleteCfg removes a repeat configuration without touching the task
// history it produced. Two phases: live tasks get their back-reference
// cleared one by one, then the config goes away and archived snapshots
// are patched in bulk.
func (s *Scheduler) DeleteCfg(id model.RepeatCfgID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.Cfgs.Get(id); err != nil {
		return err
	}

	live, err := s.Tasks.ByRepeatCfg(id)
	if err != nil {
		return fmt.Errorf("load live tasks for cfg %s: %w", id, err)
	}
	unlink := model.RepeatCfgID("")
	for _, t := range live {
		if _, err := s.Tasks.Update(t.ID, task.Patch{RepeatCfgID: &unlink}); err != nil {
			return fmt.Errorf("unlink task %s from cfg %s: %w", t.ID, id, err)
		}
	}

	if err := s.Cfgs.Delete(id); err != nil {
		return err
	}
	patched := s.Archive.ClearRepeatCfg(id)
	s.log().Info("repeat config deleted",
		slog.String("cfgId", string(id)),
		slog.Int("liveUnlinked", len(live)),
		slog.Int("archivePatched", patched))

	if s.Persist != nil {
		s.saveSnapshot(persistence.KindTaskRepeatCfg, s.Cfgs.Snapshot())
		s.saveSnapshot(persistence.KindTaskArchive, s.Archive.Snapshot())
	}
	return nil
}

// AttachCfgToTask registers a new repeat config and links an existing
// task to it as the day's first instance. A scheduled one-off reminder
// on that task would now fire alongside the recurrence, so it is
// cancelled.
func (s *Scheduler) AttachCfgToTask(taskID model.TaskID, cfg model.TaskRepeatCfg) (model.TaskRepeatCfg, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.Tasks.Get(taskID)
	if err != nil {
		return model.TaskRepeatCfg{}, err
	}

	// The existing task is the day's instance. Stamping here keeps the
	// next same-day pass from sweeping it as a stale duplicate.
	cfg.LastTaskCreation = s.now().Now()
	cfg, err = s.Cfgs.Add(cfg)
	if err != nil {
		return model.TaskRepeatCfg{}, err
	}

	patch := task.Patch{RepeatCfgID: &cfg.ID}
	if t.ReminderID != nil {
		if s.Reminders != nil {
			s.Reminders.RemoveReminder(*t.ReminderID)
		}
		empty := ""
		patch.ReminderID = &empty
	}
	if _, err := s.Tasks.Update(taskID, patch); err != nil {
		return model.TaskRepeatCfg{}, fmt.Errorf("link task %s to cfg %s: %w", taskID, cfg.ID, err)
	}

	if s.Persist != nil {
		s.saveSnapshot(persistence.KindTaskRepeatCfg, s.Cfgs.Snapshot())
	}
	return cfg, nil
}
