package model

import "time"

type TaskID string

type RepeatCfgID string

type Task struct {
	ID        TaskID         `json:"id"`
	Title     string         `json:"title"`
	ProjectID *WorkContextID `json:"projectId,omitempty"`
	TagIDs    []string       `json:"tagIds,omitempty"`

	// ParentID is set iff this is a sub-task. The task store keeps it in
	// sync with the parent's SubTaskIDs.
	ParentID   *TaskID  `json:"parentId,omitempty"`
	SubTaskIDs []TaskID `json:"subTaskIds,omitempty"`

	IsDone  bool      `json:"isDone"`
	Created time.Time `json:"created"`

	TimeEstimate   time.Duration            `json:"timeEstimate"`
	TimeSpent      time.Duration            `json:"timeSpent"`
	TimeSpentOnDay map[string]time.Duration `json:"timeSpentOnDay,omitempty"`

	// RepeatCfgID is a back-reference to the config that spawned this
	// task. Lookup key only, never an ownership edge.
	RepeatCfgID *RepeatCfgID `json:"repeatCfgId,omitempty"`

	ReminderID *string `json:"reminderId,omitempty"`
}

func (t *Task) HasSubTasks() bool {
	return len(t.SubTaskIDs) > 0
}

func (t *Task) SpentOnDay(day string) time.Duration {
	if t.TimeSpentOnDay == nil {
		return 0
	}
	return t.TimeSpentOnDay[day]
}

// TaskWithSubTasks is a task materialized together with its sub-task
// records, the shape the derived views hand out.
type TaskWithSubTasks struct {
	Task
	SubTasks []Task `json:"subTasks,omitempty"`
}

// Flatten returns parents followed by their sub-tasks, in order.
func Flatten(tasks []TaskWithSubTasks) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Task)
		out = append(out, t.SubTasks...)
	}
	return out
}
