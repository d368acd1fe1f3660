package models

import "time"

// Progress represents a completed task for a user.
// Completion is row presence: checking inserts, unchecking deletes.
type Progress struct {
	UserID      int       `json:"userId"`
	TaskID      string    `json:"taskId"`
	CompletedAt time.Time `json:"completedAt"`
}

// StudentProgress is a cross-user completion record for the instructor
// aggregate view, keyed by student email rather than user id.
type StudentProgress struct {
	StudentEmail string    `json:"studentEmail"`
	TaskID       string    `json:"taskId"`
	CompletedAt  time.Time `json:"completedAt"`
}

// PageProgress is the per-user checklist snapshot for a single content page
type PageProgress struct {
	Items     []PageProgressItem `json:"items"`
	Completed int                `json:"completed"`
	Total     int                `json:"total"`
	Percent   int                `json:"percent"`
}

// PageProgressItem is the state of a single checkbox on a page
type PageProgressItem struct {
	TaskID  string `json:"taskId"`
	Checked bool   `json:"checked"`
}
