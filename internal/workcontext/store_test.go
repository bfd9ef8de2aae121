package workcontext

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MostafaAmin07/super-productivity/internal/model"
)

func TestAddDefaultsAndNormalization(t *testing.T) {
	s := NewStore()

	proj, err := s.Add(model.WorkContext{Title: "Inbox"})
	require.NoError(t, err)
	require.NotEmpty(t, proj.ID, "id minted when absent")
	require.Equal(t, model.WorkContextProject, proj.Type)
	require.NotNil(t, proj.TaskIDs)
	require.NotNil(t, proj.BacklogTaskIDs)

	tag, err := s.Add(model.WorkContext{ID: "tag-1", Type: model.WorkContextTag, Title: "Urgent"})
	require.NoError(t, err)
	require.Nil(t, tag.BacklogTaskIDs, "tags carry no backlog")
}

func TestAddToTodayMovesOutOfBacklogAndDedupes(t *testing.T) {
	s := NewStore()
	_, err := s.Add(model.WorkContext{ID: "p1", Type: model.WorkContextProject})
	require.NoError(t, err)

	require.NoError(t, s.AddToBacklog("p1", "t1"))
	require.NoError(t, s.AddToToday("p1", "t2", true))
	require.NoError(t, s.AddToToday("p1", "t1", false)) // promoted to top
	require.NoError(t, s.AddToToday("p1", "t1", false)) // repeated, no duplicate

	c, err := s.Get("p1")
	require.NoError(t, err)
	require.Equal(t, []model.TaskID{"t1", "t2"}, c.TaskIDs)
	require.Empty(t, c.BacklogTaskIDs)
}

func TestRemoveFromAllLists(t *testing.T) {
	s := NewStore()
	_, err := s.Add(model.WorkContext{ID: "p1", Type: model.WorkContextProject})
	require.NoError(t, err)
	_, err = s.Add(model.WorkContext{ID: "tag-1", Type: model.WorkContextTag})
	require.NoError(t, err)

	require.NoError(t, s.AddToToday("p1", "t1", true))
	require.NoError(t, s.AddToToday("p1", "t2", true))
	require.NoError(t, s.AddToBacklog("p1", "t3"))
	require.NoError(t, s.AddToToday("tag-1", "t1", true))

	s.RemoveFromAllLists([]model.TaskID{"t1", "t3"})

	p, err := s.Get("p1")
	require.NoError(t, err)
	require.Equal(t, []model.TaskID{"t2"}, p.TaskIDs)
	require.Empty(t, p.BacklogTaskIDs)

	tag, err := s.Get("tag-1")
	require.NoError(t, err)
	require.Empty(t, tag.TaskIDs)
}

func TestUpdateAdvancedCfgReplacesSection(t *testing.T) {
	s := NewStore()
	_, err := s.Add(model.WorkContext{ID: "p1"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateAdvancedCfg("p1", "worklogExportSettings", map[string]any{"roundWorkTimeTo": "QUARTER"}))
	require.NoError(t, s.UpdateAdvancedCfg("p1", "worklogExportSettings", map[string]any{"roundWorkTimeTo": "HALF"}))

	c, err := s.Get("p1")
	require.NoError(t, err)
	section, ok := c.AdvancedCfg["worklogExportSettings"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "HALF", section["roundWorkTimeTo"])
}

func TestSnapshotLoadRoundTrip(t *testing.T) {
	s := NewStore()
	_, err := s.Add(model.WorkContext{ID: "p1", Type: model.WorkContextProject, Title: "One"})
	require.NoError(t, err)
	require.NoError(t, s.AddToToday("p1", "t1", true))
	require.NoError(t, s.SetWorkStart("p1", testDay, 1234))

	snap := s.Snapshot()

	restored := NewStore()
	restored.Load(snap)
	c, err := restored.Get("p1")
	require.NoError(t, err)
	require.Equal(t, "One", c.Title)
	require.Equal(t, []model.TaskID{"t1"}, c.TaskIDs)
	require.Equal(t, int64(1234), c.WorkStart[testDay])
}

func TestGetUnknownContext(t *testing.T) {
	s := NewStore()
	_, err := s.Get("nope")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Remove("nope"), ErrNotFound)
}
