// internal/models/task.go
package models

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// TaskStatus defines the possible statuses for a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// AllStatuses lists statuses in board order.
var AllStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

var AllPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task represents the structure of a task in the system.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *civil.Date  `json:"due_date,omitempty" swaggertype:"string" example:"2026-01-31"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// HasDueDate reports whether the task carries a usable due date.
func (t *Task) HasDueDate() bool {
	return t.DueDate != nil && t.DueDate.IsValid()
}

// OverdueOn reports whether the due date lies strictly before day.
func (t *Task) OverdueOn(day civil.Date) bool {
	return t.HasDueDate() && t.DueDate.Before(day)
}

// TaskInput is the payload of create and full-update operations.
// Field constraints live in the validate tags.
type TaskInput struct {
	Title       string       `json:"title" validate:"required,min=3,max=80"`
	Description string       `json:"description" validate:"max=250"`
	Status      TaskStatus   `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Priority    TaskPriority `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH"`
	DueDate     *civil.Date  `json:"due_date" swaggertype:"string" example:"2026-01-31"`
}

// StatusUpdate is the payload of the status-only update.
type StatusUpdate struct {
	Status TaskStatus `json:"status" validate:"required,oneof=TODO IN_PROGRESS DONE"`
}

// TaskFilter defines the available parameters for filtering tasks.
// Nil criteria are not applied.
type TaskFilter struct {
	Status   *TaskStatus
	Priority *TaskPriority
	Search   *string
}

// Matches ANDs every supplied criterion against t.
func (f TaskFilter) Matches(t Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Search != nil {
		needle := strings.ToLower(*f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

// TaskStats is the aggregate view over all tasks.
type TaskStats struct {
	Total      int64                  `json:"total"`
	ByStatus   map[TaskStatus]int64   `json:"by_status"`
	ByPriority map[TaskPriority]int64 `json:"by_priority"`
	Overdue    int64                  `json:"overdue"`
	Next7Days  []Task                 `json:"next_7_days"`
}
