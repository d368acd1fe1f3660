package services

import (
	"fmt"
	"math"
)

// TaskState is the visible state of a single checklist item
type TaskState int

const (
	// TaskStateUnchecked means no completion record exists
	TaskStateUnchecked TaskState = iota
	// TaskStateChecked means a completion record exists
	TaskStateChecked
	// TaskStatePending means a toggle has been applied optimistically and
	// is waiting for the write to settle
	TaskStatePending
)

// Checklist tracks the optimistic state of one page's tasks for one student.
// A toggle flips the visible state immediately and locks the item until
// Resolve or Rollback settles it, so a slow write cannot be stacked on.
type Checklist struct {
	order  []string
	states map[string]TaskState
	// prior remembers the pre-toggle state of pending items for rollback
	prior map[string]TaskState
}

// NewChecklist builds a checklist from the page's task ids and the set of
// ids already completed. Completed ids not present on the page are ignored.
func NewChecklist(taskIDs []string, completedIDs []string) *Checklist {
	completed := make(map[string]bool, len(completedIDs))
	for _, id := range completedIDs {
		completed[id] = true
	}

	states := make(map[string]TaskState, len(taskIDs))
	order := make([]string, 0, len(taskIDs))
	for _, id := range taskIDs {
		if _, seen := states[id]; seen {
			continue
		}
		order = append(order, id)
		if completed[id] {
			states[id] = TaskStateChecked
		} else {
			states[id] = TaskStateUnchecked
		}
	}

	return &Checklist{
		order:  order,
		states: states,
		prior:  make(map[string]TaskState),
	}
}

// State returns the current state of a task id
func (c *Checklist) State(taskID string) (TaskState, bool) {
	state, ok := c.states[taskID]
	return state, ok
}

// BeginToggle flips a task optimistically and marks it pending.
// A task already pending cannot be toggled again until it settles.
func (c *Checklist) BeginToggle(taskID string) (TaskState, error) {
	state, ok := c.states[taskID]
	if !ok {
		return TaskStateUnchecked, fmt.Errorf("unknown task id: %s", taskID)
	}
	if state == TaskStatePending {
		return TaskStatePending, ErrToggleInFlight
	}

	c.prior[taskID] = state
	c.states[taskID] = TaskStatePending
	return state, nil
}

// Resolve settles a pending toggle with the state the write produced
func (c *Checklist) Resolve(taskID string, checked bool) error {
	if c.states[taskID] != TaskStatePending {
		return fmt.Errorf("task %s is not pending", taskID)
	}

	delete(c.prior, taskID)
	if checked {
		c.states[taskID] = TaskStateChecked
	} else {
		c.states[taskID] = TaskStateUnchecked
	}
	return nil
}

// Rollback reverts a pending toggle to its pre-toggle state after a failed write
func (c *Checklist) Rollback(taskID string) error {
	if c.states[taskID] != TaskStatePending {
		return fmt.Errorf("task %s is not pending", taskID)
	}

	c.states[taskID] = c.prior[taskID]
	delete(c.prior, taskID)
	return nil
}

// Counts returns completed and total counts. Pending items count with the
// state they are moving toward, matching what the student currently sees.
func (c *Checklist) Counts() (completed, total int) {
	total = len(c.order)
	for _, id := range c.order {
		switch c.states[id] {
		case TaskStateChecked:
			completed++
		case TaskStatePending:
			if c.prior[id] == TaskStateUnchecked {
				completed++
			}
		}
	}
	return completed, total
}

// Percent returns the rounded completion percentage, 0 for an empty page
func (c *Checklist) Percent() int {
	completed, total := c.Counts()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// TaskIDs returns the page's task ids in display order
func (c *Checklist) TaskIDs() []string {
	return c.order
}
