package task

import (
	"time"

	"github.com/google/uuid"
)

// Task is a personal to-do item. CreatedBy is set once at creation and never
// reassigned; every store access filters on it.
type Task struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	Completed   bool       `db:"completed" json:"completed"`
	CreatedBy   string     `db:"created_by" json:"created_by"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// CreateTaskRequest captures payload for creating a task. DueDate is an
// ISO date string (2006-01-02).
type CreateTaskRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

// UpdateTaskRequest captures a partial update. Nil fields are untouched; an
// explicit empty string clears Description or DueDate.
type UpdateTaskRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}
