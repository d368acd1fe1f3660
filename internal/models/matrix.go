package models

import "time"

// ProgressMatrix is the instructor-facing student × task completion grid,
// fully re-derived on every request.
type ProgressMatrix struct {
	PageGroups []MatrixPageGroup `json:"pageGroups"`
	Columns    []MatrixColumn    `json:"columns"`
	Rows       []MatrixRow       `json:"rows"`
	Summary    MatrixSummary     `json:"summary"`
	// Placeholder is set instead of rows when there are no students or no tasks
	Placeholder string `json:"placeholder,omitempty"`
}

// MatrixPageGroup describes one page's span of task columns
type MatrixPageGroup struct {
	PageSlug  string `json:"pageSlug"`
	Label     string `json:"label"`
	TaskCount int    `json:"taskCount"`
}

// MatrixColumn is one task column header
type MatrixColumn struct {
	TaskID string `json:"taskId"`
	// Header is the title truncated for display; Title keeps the full text for tooltips
	Header string `json:"header"`
	Title  string `json:"title"`
}

// MatrixRow is one student's completion across all tasks
type MatrixRow struct {
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Cells     []MatrixCell `json:"cells"`
	Completed int          `json:"completed"`
	Percent   int          `json:"percent"`
}

// MatrixCell marks completion of one task by one student
type MatrixCell struct {
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// MatrixSummary holds the overall completion statistics
type MatrixSummary struct {
	StudentCount   int `json:"studentCount"`
	TaskCount      int `json:"taskCount"`
	TotalCompleted int `json:"totalCompleted"`
	TotalPossible  int `json:"totalPossible"`
	OverallPercent int `json:"overallPercent"`
}
