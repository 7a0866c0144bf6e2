package model

import "time"

// Task status constants. Transitions among them are unrestricted.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Task priority constants.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a single task item owned by a user. UserID is stamped from the
// active session at creation time and references a User by id; the
// reference is weak — deleting a user leaves their tasks in place.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsOverdue reports whether the task has a due date in the past and is
// not yet completed.
func (t Task) IsOverdue() bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return t.DueDate.Before(time.Now())
}

// TaskPatch is a partial update applied to an existing task.
// Nil fields are left unchanged; a nil DueDate with ClearDueDate set
// removes the due date. UpdatedAt is managed by the store and cannot
// be set through a patch.
type TaskPatch struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *time.Time
	ClearDueDate bool
}

// Apply merges the patch into the task.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
}
