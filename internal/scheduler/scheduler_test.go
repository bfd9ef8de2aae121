package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MostafaAmin07/super-productivity/internal/archive"
	"github.com/MostafaAmin07/super-productivity/internal/clock"
	"github.com/MostafaAmin07/super-productivity/internal/model"
	"github.com/MostafaAmin07/super-productivity/internal/notify"
	"github.com/MostafaAmin07/super-productivity/internal/persistence"
	"github.com/MostafaAmin07/super-productivity/internal/reminder"
	"github.com/MostafaAmin07/super-productivity/internal/repeatcfg"
	"github.com/MostafaAmin07/super-productivity/internal/task"
	"github.com/MostafaAmin07/super-productivity/internal/workcontext"
)

// 2026-08-31 is a Monday.
var monday = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

var everyDay = model.RepeatDays{
	Monday: true, Tuesday: true, Wednesday: true, Thursday: true,
	Friday: true, Saturday: true, Sunday: true,
}

type fixture struct {
	sched    *Scheduler
	cfgs     *repeatcfg.Store
	tasks    *task.MemoryStore
	arch     *archive.Store
	contexts *workcontext.Store
	pointer  *workcontext.Pointer
	rem      *reminder.MemoryService
	notifier *notify.MemoryNotifier
	persist  *persistence.MemoryStore
	clock    *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		cfgs:     repeatcfg.NewStore(),
		tasks:    task.NewMemoryStore(),
		arch:     archive.NewStore(),
		contexts: workcontext.NewStore(),
		rem:      reminder.NewMemoryService(),
		notifier: notify.NewMemoryNotifier(),
		persist:  persistence.NewMemoryStore(),
		clock:    clock.NewFakeClock(monday),
	}
	f.pointer = workcontext.NewPointer(f.clock)
	f.sched = &Scheduler{
		Cfgs:      f.cfgs,
		Tasks:     f.tasks,
		Archive:   f.arch,
		Contexts:  f.contexts,
		Pointer:   f.pointer,
		Reminders: f.rem,
		Notifier:  f.notifier,
		Persist:   f.persist,
		Clock:     f.clock,
	}
	return f
}

func (f *fixture) activateProject(t *testing.T, id string) model.WorkContext {
	t.Helper()
	proj, err := f.contexts.Add(model.WorkContext{ID: model.WorkContextID(id), Type: model.WorkContextProject})
	require.NoError(t, err)
	f.pointer.SetActive(proj.ID, proj.Type)
	return proj
}

func TestTickCreatesInstanceOnMatchingDay(t *testing.T) {
	f := newFixture(t)
	proj := f.activateProject(t, "p1")
	pid := proj.ID

	cfg, err := f.cfgs.Add(model.TaskRepeatCfg{
		Title:           "daily standup",
		ProjectID:       &pid,
		TagIDs:          []string{"work"},
		DefaultEstimate: 15 * time.Minute,
		Days:            model.RepeatDays{Monday: true},
	})
	require.NoError(t, err)

	res, err := f.sched.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, TickResult{Eligible: 1, Created: 1}, res)

	live, err := f.tasks.ByRepeatCfg(cfg.ID)
	require.NoError(t, err)
	require.Len(t, live, 1)
	require.Equal(t, "daily standup", live[0].Title)
	require.Equal(t, pid, *live[0].ProjectID)
	require.Equal(t, []string{"work"}, live[0].TagIDs)
	require.Equal(t, 15*time.Minute, live[0].TimeEstimate)
	require.Equal(t, monday, live[0].Created)

	// instance lands at the top of the active context's today list
	ctx, err := f.contexts.Get(pid)
	require.NoError(t, err)
	require.Equal(t, []model.TaskID{live[0].ID}, ctx.TaskIDs)
	require.Empty(t, ctx.BacklogTaskIDs)

	// eligibility stamp recorded
	got, err := f.cfgs.Get(cfg.ID)
	require.NoError(t, err)
	require.Equal(t, monday, got.LastTaskCreation)
}

func TestTickSkipsNonMatchingWeekday(t *testing.T) {
	f := newFixture(t)
	f.activateProject(t, "p1")

	_, err := f.cfgs.Add(model.TaskRepeatCfg{Title: "tuesdays only", Days: model.RepeatDays{Tuesday: true}})
	require.NoError(t, err)

	res, err := f.sched.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, TickResult{}, res)

	all, err := f.tasks.All()
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestTickIsIdempotentWithinADay(t *testing.T) {
	f := newFixture(t)
	f.activateProject(t, "p1")

	cfg, err := f.cfgs.Add(model.TaskRepeatCfg{Title: "daily", Days: everyDay})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.sched.Tick(context.Background())
		require.NoError(t, err)
		f.clock.Advance(time.Hour)
	}

	live, err := f.tasks.ByRepeatCfg(cfg.ID)
	require.NoError(t, err)
	require.Len(t, live, 1, "repeated same-day passes must not duplicate")
	require.Zero(t, f.arch.Len())
}

func TestTickOnNextDayCreatesFreshInstance(t *testing.T) {
	f := newFixture(t)
	f.activateProject(t, "p1")

	cfg, err := f.cfgs.Add(model.TaskRepeatCfg{Title: "daily", Days: everyDay})
	require.NoError(t, err)

	_, err = f.sched.Tick(context.Background())
	require.NoError(t, err)

	f.clock.AdvanceToNextDay()
	res, err := f.sched.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)
	require.Zero(t, res.Archived, "yesterday's instance is not same-day, stays live")

	live, err := f.tasks.ByRepeatCfg(cfg.ID)
	require.NoError(t, err)
	require.Len(t, live, 2)
}

func TestTickRecoversAfterLostStamp(t *testing.T) {
	f := newFixture(t)
	proj := f.activateProject(t, "p1")

	// an instance exists for today but the config never recorded it, e.g.
	// the stamp was lost to a botched snapshot restore
	cfg, err := f.cfgs.Add(model.TaskRepeatCfg{Title: "daily", Days: everyDay})
	require.NoError(t, err)
	cfgID := cfg.ID
	_, err = f.tasks.Add(model.Task{ID: "dup", Title: "daily", Created: monday, RepeatCfgID: &cfgID})
	require.NoError(t, err)
	require.NoError(t, f.contexts.AddToToday(proj.ID, "dup", true))

	res, err := f.sched.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Archived)
	require.Zero(t, res.Created)

	// an archive-only pass leaves the stamp alone, so the next pass can
	// recreate the canonical instance
	got, err := f.cfgs.Get(cfg.ID)
	require.NoError(t, err)
	require.True(t, got.LastTaskCreation.IsZero())

	f.clock.Advance(time.Hour)
	res, err = f.sched.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)

	live, err := f.tasks.ByRepeatCfg(cfg.ID)
	require.NoError(t, err)
	require.Len(t, live, 1)
}

func TestTickSweepsStaleSameDayInstancesWithoutRespawning(t *testing.T) {
	f := newFixture(t)
	proj := f.activateProject(t, "p1")

	cfg, err := f.cfgs.Add(model.TaskRepeatCfg{Title: "daily", Days: everyDay})
	require.NoError(t, err)

	// two instances already created today, e.g. restored from a stale
	// snapshot; one has a sub-task and logged time
	cfgID := cfg.ID
	for _, id := range []string{"dup-1", "dup-2"} {
		_, err := f.tasks.Add(model.Task{ID: model.TaskID(id), Title: "daily", Created: monday, RepeatCfgID: &cfgID})
		require.NoError(t, err)
		require.NoError(t, f.contexts.AddToToday(proj.ID, model.TaskID(id), true))
	}
	_, err = f.tasks.AddSubTask("dup-1", model.Task{ID: "dup-1-sub", Title: "prep", Created: monday})
	require.NoError(t, err)
	_, err = f.tasks.AddTimeSpent("dup-1", "2026-08-31", 20*time.Minute)
	require.NoError(t, err)

	res, err := f.sched.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, res.Archived)
	require.Zero(t, res.Created, "an instance already existed today, none respawned")

	live, err := f.tasks.ByRepeatCfg(cfg.ID)
	require.NoError(t, err)
	require.Empty(t, live)

	// archive preserved the whole family with its history
	require.Equal(t, 3, f.arch.Len())
	archived, ok := f.arch.Get("dup-1")
	require.True(t, ok)
	require.Equal(t, 20*time.Minute, archived.TimeSpent)
	require.Equal(t, cfg.ID, *archived.RepeatCfgID)
	_, ok = f.arch.Get("dup-1-sub")
	require.True(t, ok)

	// swept ids dropped from the context lists
	ctx, err := f.contexts.Get(proj.ID)
	require.NoError(t, err)
	require.Empty(t, ctx.TaskIDs)
}

func TestTickWithoutActiveContextStillCreates(t *testing.T) {
	f := newFixture(t)

	cfg, err := f.cfgs.Add(model.TaskRepeatCfg{Title: "daily", Days: everyDay})
	require.NoError(t, err)

	res, err := f.sched.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)

	live, err := f.tasks.ByRepeatCfg(cfg.ID)
	require.NoError(t, err)
	require.Len(t, live, 1)
}

func TestTickPersistsSnapshots(t *testing.T) {
	f := newFixture(t)
	f.activateProject(t, "p1")

	_, err := f.cfgs.Add(model.TaskRepeatCfg{Title: "daily", Days: everyDay})
	require.NoError(t, err)

	_, err = f.sched.Tick(context.Background())
	require.NoError(t, err)

	_, ok, err := f.persist.LoadState(persistence.KindTaskRepeatCfg)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, monday, f.persist.LastActive())
}

func TestTickSurvivesPersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.activateProject(t, "p1")
	f.persist.FailSaves = true

	cfg, err := f.cfgs.Add(model.TaskRepeatCfg{Title: "daily", Days: everyDay})
	require.NoError(t, err)

	res, err := f.sched.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, res.Created)

	live, err := f.tasks.ByRepeatCfg(cfg.ID)
	require.NoError(t, err)
	require.Len(t, live, 1, "in-memory state survives storage trouble")
	require.NotEmpty(t, f.notifier.Events(), "failure is surfaced")
}

func TestDeleteCfgKeepsTasksAndHistory(t *testing.T) {
	f := newFixture(t)

	cfg, err := f.cfgs.Add(model.TaskRepeatCfg{Title: "daily", Days: everyDay})
	require.NoError(t, err)
	cfgID := cfg.ID

	for _, id := range []string{"t1", "t2", "t3"} {
		_, err := f.tasks.Add(model.Task{ID: model.TaskID(id), Title: id, RepeatCfgID: &cfgID})
		require.NoError(t, err)
	}
	f.arch.Append(model.Task{ID: "old", Title: "old instance", RepeatCfgID: &cfgID, TimeSpent: time.Hour})

	require.NoError(t, f.sched.DeleteCfg(cfg.ID))

	_, err = f.cfgs.Get(cfg.ID)
	require.ErrorIs(t, err, repeatcfg.ErrNotFound)

	all, err := f.tasks.All()
	require.NoError(t, err)
	require.Len(t, all, 3, "deletion never cascades to tasks")
	for _, tk := range all {
		require.Nil(t, tk.RepeatCfgID)
	}

	archived, ok := f.arch.Get("old")
	require.True(t, ok)
	require.Nil(t, archived.RepeatCfgID)
	require.Equal(t, time.Hour, archived.TimeSpent, "history intact")
}

func TestDeleteCfgUnknown(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.sched.DeleteCfg("nope"), repeatcfg.ErrNotFound)
}

func TestAttachCfgToTaskCancelsReminder(t *testing.T) {
	f := newFixture(t)

	remID := "rem-1"
	f.rem.Add(remID)
	_, err := f.tasks.Add(model.Task{ID: "t1", Title: "write report", ReminderID: &remID})
	require.NoError(t, err)

	cfg, err := f.sched.AttachCfgToTask("t1", model.TaskRepeatCfg{Title: "write report", Days: model.RepeatDays{Friday: true}})
	require.NoError(t, err)
	require.NotEmpty(t, cfg.ID)

	got, err := f.tasks.Get("t1")
	require.NoError(t, err)
	require.Equal(t, cfg.ID, *got.RepeatCfgID)
	require.Nil(t, got.ReminderID)
	require.Equal(t, []string{remID}, f.rem.Removed())
}

func TestAttachCfgToTaskWithoutReminder(t *testing.T) {
	f := newFixture(t)

	_, err := f.tasks.Add(model.Task{ID: "t1", Title: "water plants"})
	require.NoError(t, err)

	cfg, err := f.sched.AttachCfgToTask("t1", model.TaskRepeatCfg{Title: "water plants", Days: everyDay})
	require.NoError(t, err)

	got, err := f.tasks.Get("t1")
	require.NoError(t, err)
	require.Equal(t, cfg.ID, *got.RepeatCfgID)
	require.Empty(t, f.rem.Removed())
}

func TestAttachCfgMakesTaskTheDaysInstance(t *testing.T) {
	f := newFixture(t)
	proj := f.activateProject(t, "p1")

	_, err := f.tasks.Add(model.Task{ID: "t1", Title: "water plants", Created: monday})
	require.NoError(t, err)
	require.NoError(t, f.contexts.AddToToday(proj.ID, "t1", true))

	cfg, err := f.sched.AttachCfgToTask("t1", model.TaskRepeatCfg{Title: "water plants", Days: everyDay})
	require.NoError(t, err)
	require.Equal(t, monday, cfg.LastTaskCreation, "attach counts as today's creation")

	f.clock.Advance(time.Hour)
	res, err := f.sched.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, TickResult{}, res, "the attached task is not a stale duplicate")

	live, err := f.tasks.ByRepeatCfg(cfg.ID)
	require.NoError(t, err)
	require.Len(t, live, 1)
	require.Equal(t, model.TaskID("t1"), live[0].ID)

	ctx, err := f.contexts.Get(proj.ID)
	require.NoError(t, err)
	require.Equal(t, []model.TaskID{"t1"}, ctx.TaskIDs)
	require.Zero(t, f.arch.Len())
}

func TestAttachCfgToMissingTask(t *testing.T) {
	f := newFixture(t)
	_, err := f.sched.AttachCfgToTask("nope", model.TaskRepeatCfg{Title: "x", Days: everyDay})
	require.ErrorIs(t, err, task.ErrNotFound)
}

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("04:30")
	require.NoError(t, err)
	require.Equal(t, "30 4 * * *", spec)

	for _, bad := range []string{"", "4", "25:00", "12:60", "ab:cd"} {
		_, err := buildDailySpec(bad)
		require.Error(t, err, "input %q", bad)
	}
}
