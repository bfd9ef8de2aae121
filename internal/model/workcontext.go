package model

import "time"

type WorkContextID string

type WorkContextType string

const (
	WorkContextProject WorkContextType = "PROJECT"
	WorkContextTag     WorkContextType = "TAG"
)

// WorkContext is either a project or a tag: the unit of "today"/"backlog"
// task list ownership. The lists carry display order only; task lifetime
// is owned by the task store and archive.
type WorkContext struct {
	ID    WorkContextID   `json:"id"`
	Type  WorkContextType `json:"type"`
	Title string          `json:"title"`

	TaskIDs        []TaskID `json:"taskIds"`
	BacklogTaskIDs []TaskID `json:"backlogTaskIds,omitempty"`

	// Day-keyed bookkeeping. WorkStart/WorkEnd are epoch milliseconds.
	WorkStart map[string]int64         `json:"workStart,omitempty"`
	WorkEnd   map[string]int64         `json:"workEnd,omitempty"`
	BreakTime map[string]time.Duration `json:"breakTime,omitempty"`
	BreakNr   map[string]int           `json:"breakNr,omitempty"`

	AdvancedCfg map[string]any `json:"advancedCfg,omitempty"`
	Theme       map[string]any `json:"theme,omitempty"`
}

func (c *WorkContext) InToday(id TaskID) bool {
	for _, tid := range c.TaskIDs {
		if tid == id {
			return true
		}
	}
	return false
}
