package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrTaskNotFound covers both a missing task and a task owned by someone
// else. The two cases are deliberately indistinguishable so callers cannot
// probe for the existence of other users' tasks.
var ErrTaskNotFound = errors.New("task not found or unauthorized")

// TaskChanges is the resolved set of column updates. Set flags distinguish
// "leave untouched" from "clear to NULL".
type TaskChanges struct {
	Name           *string
	Description    *string
	SetDescription bool
	DueDate        *time.Time
	SetDueDate     bool
	Completed      *bool
}

// TaskRepo handles database operations for tasks. Every statement carries
// the created_by filter; there is no unscoped access path.
type TaskRepo struct {
	db *sqlx.DB
}

func NewTaskRepo(db *sqlx.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

// Create inserts a new task owned by createdBy
func (r *TaskRepo) Create(ctx context.Context, name string, description *string, dueDate *time.Time, createdBy string) (*Task, error) {
	query := `
        INSERT INTO tasks (name, description, due_date, completed, created_by)
        VALUES ($1, $2, $3, FALSE, $4)
        RETURNING id, name, description, due_date, completed, created_by, created_at, updated_at
    `

	var t Task
	err := r.db.GetContext(ctx, &t, query, name, description, dueDate, createdBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return &t, nil
}

// GetByOwner retrieves a task by ID scoped to its owner
func (r *TaskRepo) GetByOwner(ctx context.Context, id uuid.UUID, ownerID string) (*Task, error) {
	query := `
        SELECT id, name, description, due_date, completed, created_by, created_at, updated_at
        FROM tasks
        WHERE id = $1 AND created_by = $2
    `

	var t Task
	err := r.db.GetContext(ctx, &t, query, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &t, nil
}

// ListByOwner retrieves all of the owner's tasks, newest first
func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]*Task, error) {
	query := `
        SELECT id, name, description, due_date, completed, created_by, created_at, updated_at
        FROM tasks
        WHERE created_by = $1
        ORDER BY created_at DESC
    `

	var tasks []*Task
	err := r.db.SelectContext(ctx, &tasks, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// Update applies the resolved changes to the owner's task and refreshes
// updated_at
func (r *TaskRepo) Update(ctx context.Context, id uuid.UUID, ownerID string, changes *TaskChanges) (*Task, error) {
	setParts := []string{}
	args := []interface{}{}

	if changes.Name != nil {
		setParts = append(setParts, fmt.Sprintf("name = $%d", len(args)+1))
		args = append(args, *changes.Name)
	}

	if changes.SetDescription {
		setParts = append(setParts, fmt.Sprintf("description = $%d", len(args)+1))
		args = append(args, changes.Description)
	}

	if changes.SetDueDate {
		setParts = append(setParts, fmt.Sprintf("due_date = $%d", len(args)+1))
		args = append(args, changes.DueDate)
	}

	if changes.Completed != nil {
		setParts = append(setParts, fmt.Sprintf("completed = $%d", len(args)+1))
		args = append(args, *changes.Completed)
	}

	if len(setParts) == 0 {
		return r.GetByOwner(ctx, id, ownerID)
	}

	setParts = append(setParts, "updated_at = NOW()")
	args = append(args, id, ownerID)

	query := fmt.Sprintf(`
        UPDATE tasks
        SET %s
        WHERE id = $%d AND created_by = $%d
        RETURNING id, name, description, due_date, completed, created_by, created_at, updated_at
    `, strings.Join(setParts, ", "), len(args)-1, len(args))

	var t Task
	err := r.db.GetContext(ctx, &t, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return &t, nil
}

// Delete removes the owner's task; deletion is immediate and permanent
func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND created_by = $2`

	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}
