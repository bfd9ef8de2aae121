package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MostafaAmin07/super-productivity/internal/model"
)

func TestAppend_PreservesFieldsAndIsIdempotentPerID(t *testing.T) {
	s := NewStore()

	cfgID := model.RepeatCfgID("cfg_1")
	tk := model.Task{
		ID:           "t1",
		Title:        "water plants",
		RepeatCfgID:  &cfgID,
		TimeEstimate: 10 * time.Minute,
		TimeSpentOnDay: map[string]time.Duration{
			"2026-01-02": 5 * time.Minute,
		},
	}
	s.Append(tk)
	s.Append(tk)

	assert.Equal(t, 1, s.Len())
	got, ok := s.Get("t1")
	require.True(t, ok)
	assert.Equal(t, "water plants", got.Title)
	assert.Equal(t, 10*time.Minute, got.TimeEstimate)
	assert.Equal(t, 5*time.Minute, got.TimeSpentOnDay["2026-01-02"])
}

func TestClearRepeatCfg_OnlySeversBackReference(t *testing.T) {
	s := NewStore()

	cfgID := model.RepeatCfgID("cfg_1")
	otherID := model.RepeatCfgID("cfg_2")
	s.Append(
		model.Task{ID: "t1", Title: "a", RepeatCfgID: &cfgID, TimeSpent: time.Hour},
		model.Task{ID: "t2", Title: "b", RepeatCfgID: &otherID},
		model.Task{ID: "t3", Title: "c"},
	)

	patched := s.ClearRepeatCfg(cfgID)
	assert.Equal(t, 1, patched)

	got, _ := s.Get("t1")
	assert.Nil(t, got.RepeatCfgID)
	assert.Equal(t, "a", got.Title)
	assert.Equal(t, time.Hour, got.TimeSpent)

	untouched, _ := s.Get("t2")
	require.NotNil(t, untouched.RepeatCfgID)
	assert.Equal(t, otherID, *untouched.RepeatCfgID)
}

func TestSnapshotLoad_RoundTripKeepsOrder(t *testing.T) {
	s := NewStore()
	s.Append(model.Task{ID: "t2"}, model.Task{ID: "t1"})

	snap := s.Snapshot()
	assert.Equal(t, []model.TaskID{"t2", "t1"}, snap.IDs)

	restored := NewStore()
	restored.Load(snap)
	assert.Equal(t, 2, restored.Len())
	_, ok := restored.Get("t1")
	assert.True(t, ok)
}

func TestRemoveForProject_DropsMainTasksWithSubTasks(t *testing.T) {
	s := NewStore()

	pid := model.WorkContextID("p1")
	parentID := model.TaskID("t1")
	s.Append(
		model.Task{ID: "t1", ProjectID: &pid, SubTaskIDs: []model.TaskID{"t1s"}},
		model.Task{ID: "t1s", ProjectID: &pid, ParentID: &parentID},
		model.Task{ID: "t2"},
	)

	removed := s.RemoveForProject(pid)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("t2")
	assert.True(t, ok)
}
