package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

type Task struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	DueDate     time.Time     `json:"due_date"`
	Priority    TaskPriority  `json:"priority"`
	Status      TaskStatus    `json:"status"`
	CreatedBy   uuid.UUID     `json:"created_by"`
	AssignedTo  uuid.NullUUID `json:"assigned_to"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Overdue reports whether the task is past its due date and still open.
func (t *Task) Overdue(now time.Time) bool {
	return t.DueDate.Before(now) && t.Status != StatusCompleted
}

// convert various user inputs to the canonical status values;
// the reduced todo/done encodings map onto the same enumeration
func NormalizeStatus(s string) TaskStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "todo", "to_do", "to do":
		return StatusPending
	case "in progress", "in-progress", "in_progress", "inprogress":
		return StatusInProgress
	case "completed", "done":
		return StatusCompleted
	default:
		return ""
	}
}

func NormalizePriority(s string) TaskPriority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow
	case "medium":
		return PriorityMedium
	case "high":
		return PriorityHigh
	default:
		return ""
	}
}
