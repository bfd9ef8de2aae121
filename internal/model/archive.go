package model

// TaskArchive is the persisted shape of archived tasks: insertion-ordered
// ids plus an id-keyed entity map. Append/patch only.
type TaskArchive struct {
	IDs      []TaskID        `json:"ids"`
	Entities map[TaskID]Task `json:"entities"`
}
