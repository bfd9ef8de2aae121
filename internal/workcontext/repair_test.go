package workcontext

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MostafaAmin07/super-productivity/internal/model"
	"github.com/MostafaAmin07/super-productivity/internal/notify"
)

func TestFindOrphansFlagsForeignAndMissingTasks(t *testing.T) {
	svc, tasks, contexts, ptr, _ := newTestService(t)
	proj := addProjectWithTasks(t, tasks, contexts, ptr)
	other := ctxID("p2")

	p1 := proj.ID
	_, err := tasks.Add(model.Task{ID: "t1", Title: "owned", ProjectID: &p1})
	require.NoError(t, err)
	_, err = tasks.Add(model.Task{ID: "t2", Title: "foreign", ProjectID: &other})
	require.NoError(t, err)

	require.NoError(t, contexts.SetTodayList(proj.ID, []model.TaskID{"t1", "t2"}))
	require.NoError(t, contexts.SetBacklogList(proj.ID, []model.TaskID{"ghost"}))

	report, err := svc.FindOrphans()
	require.NoError(t, err)
	require.Equal(t, []model.TaskID{"t2"}, report.Today)
	require.Equal(t, []model.TaskID{"ghost"}, report.Backlog)
}

func TestRepairRewritesListsOnlyOnConfirm(t *testing.T) {
	svc, tasks, contexts, ptr, _ := newTestService(t)
	proj := addProjectWithTasks(t, tasks, contexts, ptr)
	notifier := notify.NewMemoryNotifier()
	svc.Notifier = notifier

	p1 := proj.ID
	other := ctxID("p2")
	_, err := tasks.Add(model.Task{ID: "t1", Title: "owned", ProjectID: &p1})
	require.NoError(t, err)
	foreign, err := tasks.Add(model.Task{ID: "t2", Title: "foreign", ProjectID: &other})
	require.NoError(t, err)
	require.NoError(t, contexts.SetTodayList(proj.ID, []model.TaskID{"t1", "t2"}))

	// declined: lists stay as they are
	_, err = svc.RepairActiveProject(ConfirmerFunc(func(string) bool { return false }))
	require.NoError(t, err)
	ctx, err := contexts.Get(proj.ID)
	require.NoError(t, err)
	require.Equal(t, []model.TaskID{"t1", "t2"}, ctx.TaskIDs)
	require.NotEmpty(t, notifier.Events(), "detection is always surfaced")

	// confirmed: orphan unlisted, owned task kept, task record untouched
	report, err := svc.RepairActiveProject(ConfirmerFunc(func(string) bool { return true }))
	require.NoError(t, err)
	require.Equal(t, []model.TaskID{"t2"}, report.Today)

	ctx, err = contexts.Get(proj.ID)
	require.NoError(t, err)
	require.Equal(t, []model.TaskID{"t1"}, ctx.TaskIDs)

	still, err := tasks.Get(foreign.ID)
	require.NoError(t, err)
	require.Equal(t, other, *still.ProjectID)
}

func TestRepairRequiresProjectContext(t *testing.T) {
	svc, _, contexts, ptr, _ := newTestService(t)

	tag, err := contexts.Add(model.WorkContext{ID: "tag-1", Type: model.WorkContextTag})
	require.NoError(t, err)
	ptr.SetActive(tag.ID, tag.Type)

	_, err = svc.RepairActiveProject(ConfirmerFunc(func(string) bool { return true }))
	require.ErrorIs(t, err, ErrNotProjectContext)
}

func TestRepairNoopWhenConsistent(t *testing.T) {
	svc, tasks, contexts, ptr, _ := newTestService(t)
	proj := addProjectWithTasks(t, tasks, contexts, ptr)

	p1 := proj.ID
	_, err := tasks.Add(model.Task{ID: "t1", Title: "owned", ProjectID: &p1})
	require.NoError(t, err)
	require.NoError(t, contexts.SetTodayList(proj.ID, []model.TaskID{"t1"}))

	confirmed := false
	report, err := svc.RepairActiveProject(ConfirmerFunc(func(string) bool {
		confirmed = true
		return true
	}))
	require.NoError(t, err)
	require.True(t, report.Empty())
	require.False(t, confirmed, "confirmer must not fire without orphans")
}
