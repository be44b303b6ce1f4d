package services

import (
	"cloud.google.com/go/civil"

	"taskmanager/internal/models"
)

const (
	msgDueDateRequired = "Due date is required for HIGH priority tasks"
	msgOverdueComplete = "Cannot complete an overdue task"
)

// requireDueDateForHigh checks the rule against the incoming values only.
func requireDueDateForHigh(priority models.TaskPriority, due *civil.Date) error {
	if priority == models.PriorityHigh && (due == nil || !due.IsValid()) {
		return &BusinessRuleError{Message: msgDueDateRequired}
	}
	return nil
}

// canChangeStatus rejects completing a task whose due date already passed.
// Tasks completed before their due date lapsed are never re-checked.
func canChangeStatus(task *models.Task, to models.TaskStatus, today civil.Date) error {
	if to == models.StatusDone && task.OverdueOn(today) {
		return &BusinessRuleError{Message: msgOverdueComplete}
	}
	return nil
}
