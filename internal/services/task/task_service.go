package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/internal/services/policy"
	"github.com/taskdeck/taskdeck/internal/services/user"
)

const (
	maxNameLength        = 100
	maxDescriptionLength = 500

	dueDateLayout = "2006-01-02"
)

var (
	// ErrNotAllowed means the caller is authenticated but the policy denies
	// task creation.
	ErrNotAllowed = errors.New("not authorized to create tasks")
	// ErrInvalidInput marks validation failures; they are checked before any
	// store call so a failed validation never leaves a partial write.
	ErrInvalidInput = errors.New("invalid input")
)

// Repository is the store surface the service needs; *TaskRepo implements it.
type Repository interface {
	Create(ctx context.Context, name string, description *string, dueDate *time.Time, createdBy string) (*Task, error)
	GetByOwner(ctx context.Context, id uuid.UUID, ownerID string) (*Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Task, error)
	Update(ctx context.Context, id uuid.UUID, ownerID string, changes *TaskChanges) (*Task, error)
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
}

// TaskService contains the task lifecycle logic: validation, the creation
// policy check, and the ownership-scoped CRUD operations.
type TaskService struct {
	repo Repository
}

func NewTaskService(repo Repository) *TaskService {
	return &TaskService{repo: repo}
}

// List returns all tasks owned by the caller, newest first.
func (s *TaskService) List(ctx context.Context, callerID string) ([]*Task, error) {
	if callerID == "" {
		return nil, fmt.Errorf("%w: caller id is required", ErrInvalidInput)
	}

	tasks, err := s.repo.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	return tasks, nil
}

// Create validates the payload, checks the creation policy and inserts a new
// incomplete task owned by the caller.
func (s *TaskService) Create(ctx context.Context, caller *user.User, req *CreateTaskRequest) (*Task, error) {
	if !policy.Can(caller, policy.ActionCreateTask) {
		return nil, ErrNotAllowed
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: task name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, fmt.Errorf("%w: task name cannot exceed %d characters", ErrInvalidInput, maxNameLength)
	}

	description, err := normalizeDescription(req.Description)
	if err != nil {
		return nil, err
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, name, description, dueDate, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return created, nil
}

// Update applies a partial update to the caller's task. Fields absent from
// the request are untouched; an empty description or due date clears the
// column. A task owned by someone else reports ErrTaskNotFound.
func (s *TaskService) Update(ctx context.Context, taskID uuid.UUID, req *UpdateTaskRequest, callerID string) (*Task, error) {
	if callerID == "" {
		return nil, fmt.Errorf("%w: caller id is required", ErrInvalidInput)
	}

	changes := &TaskChanges{Completed: req.Completed}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: task name is required", ErrInvalidInput)
		}
		if utf8.RuneCountInString(name) > maxNameLength {
			return nil, fmt.Errorf("%w: task name cannot exceed %d characters", ErrInvalidInput, maxNameLength)
		}
		changes.Name = &name
	}

	if req.Description != nil {
		description, err := normalizeDescription(req.Description)
		if err != nil {
			return nil, err
		}
		changes.Description = description
		changes.SetDescription = true
	}

	if req.DueDate != nil {
		dueDate, err := parseDueDate(req.DueDate)
		if err != nil {
			return nil, err
		}
		changes.DueDate = dueDate
		changes.SetDueDate = true
	}

	updated, err := s.repo.Update(ctx, taskID, callerID, changes)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return updated, nil
}

// Delete removes the caller's task. Deleted tasks are gone for good; there
// is no soft-delete.
func (s *TaskService) Delete(ctx context.Context, taskID uuid.UUID, callerID string) error {
	if callerID == "" {
		return fmt.Errorf("%w: caller id is required", ErrInvalidInput)
	}

	if err := s.repo.Delete(ctx, taskID, callerID); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ToggleCompletion flips completion relative to the status the client last
// saw. The client-supplied current state is part of the operation contract;
// two stale clients racing here resolve as last-write-wins.
func (s *TaskService) ToggleCompletion(ctx context.Context, taskID uuid.UUID, currentStatus bool, callerID string) (*Task, error) {
	toggled := !currentStatus
	return s.Update(ctx, taskID, &UpdateTaskRequest{Completed: &toggled}, callerID)
}

func normalizeDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}

	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > maxDescriptionLength {
		return nil, fmt.Errorf("%w: description cannot exceed %d characters", ErrInvalidInput, maxDescriptionLength)
	}

	return &trimmed, nil
}

func parseDueDate(dueDate *string) (*time.Time, error) {
	if dueDate == nil || *dueDate == "" {
		return nil, nil
	}

	parsed, err := time.Parse(dueDateLayout, *dueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: due date must be formatted as %s", ErrInvalidInput, dueDateLayout)
	}

	return &parsed, nil
}
