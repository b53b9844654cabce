// ABOUTME: Task document with status transitions and completion tracking
// ABOUTME: Tasks point at an account or contact through a weak reference
package models

import (
	"fmt"
	"time"
)

// Task statuses.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
	TaskStatusOverdue    = "overdue"
	TaskStatusCancelled  = "cancelled"
)

var validTaskStatuses = map[string]bool{
	TaskStatusPending:    true,
	TaskStatusInProgress: true,
	TaskStatusCompleted:  true,
	TaskStatusOverdue:    true,
	TaskStatusCancelled:  true,
}

type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	RelatedID    string     `json:"relatedId"`
	RelatedType  string     `json:"relatedType"`
	DueDate      string     `json:"dueDate,omitempty"`
	DueDateAlert bool       `json:"dueDateAlert,omitempty"`
	AlertDays    int        `json:"alertDays,omitempty"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	Version      int        `json:"version"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsClosed reports whether the task no longer needs attention.
func (t *Task) IsClosed() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled
}

// TransitionStatus validates and applies a status change.
func (t *Task) TransitionStatus(newStatus string, now time.Time) error {
	if !validTaskStatuses[newStatus] {
		return fmt.Errorf("invalid task status: %s", newStatus)
	}

	old := t.Status
	t.Status = newStatus
	t.UpdatedAt = now

	if newStatus == TaskStatusCompleted && old != TaskStatusCompleted {
		completed := now
		t.CompletedAt = &completed
	} else if newStatus != TaskStatusCompleted {
		t.CompletedAt = nil
	}

	return nil
}
