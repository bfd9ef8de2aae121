package model

import "time"

// RepeatDays holds one flag per weekday.
type RepeatDays struct {
	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`
}

func (d RepeatDays) On(w time.Weekday) bool {
	switch w {
	case time.Monday:
		return d.Monday
	case time.Tuesday:
		return d.Tuesday
	case time.Wednesday:
		return d.Wednesday
	case time.Thursday:
		return d.Thursday
	case time.Friday:
		return d.Friday
	case time.Saturday:
		return d.Saturday
	case time.Sunday:
		return d.Sunday
	}
	return false
}

// TaskRepeatCfg is a template for a recurring task: title, defaults and
// which weekdays it applies. LastTaskCreation is the idempotency guard
// against spawning more than one instance per day.
type TaskRepeatCfg struct {
	ID              RepeatCfgID    `json:"id"`
	Title           string         `json:"title"`
	ProjectID       *WorkContextID `json:"projectId,omitempty"`
	TagIDs          []string       `json:"tagIds,omitempty"`
	DefaultEstimate time.Duration  `json:"defaultEstimate"`
	Days            RepeatDays     `json:"days"`

	LastTaskCreation time.Time `json:"lastTaskCreation"`
}
