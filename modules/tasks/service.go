package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/todo-tracker/domain/task"
	"github.com/google/uuid"
)

// ErrPermissionDenied is returned when the acting user may not perform the
// requested operation on a task.
var ErrPermissionDenied = errors.New("permission denied")

// Service implements the task lifecycle operations. Permission checks happen
// here, before any mutation reaches the repository.
type Service struct {
	repo *Repository
	form *Form
	now  func() time.Time
}

// NewService creates a task Service.
func NewService(repo *Repository, form *Form) *Service {
	return &Service{
		repo: repo,
		form: form,
		now:  time.Now,
	}
}

// Create validates the input and persists a new task with the acting user as
// creator. A non-nil FieldErrors means validation failed and nothing was
// persisted.
func (s *Service) Create(ctx context.Context, actorID string, in TaskInput) (*task.Task, FieldErrors, error) {
	cleaned, fieldErrs, err := s.form.Validate(ctx, actorID, in, true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to validate task: %w", err)
	}
	if fieldErrs.HasErrors() {
		return nil, fieldErrs, nil
	}

	now := s.now()
	t := &task.Task{
		ID:           uuid.New().String(),
		Title:        cleaned.Title,
		Description:  cleaned.Description,
		Deadline:     cleaned.Deadline,
		Priority:     cleaned.Priority,
		Status:       task.StatusPending,
		CreatedByID:  actorID,
		AssignedToID: cleaned.AssignedToID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	t.Normalize(now)

	if err := s.repo.Create(t); err != nil {
		return nil, nil, err
	}
	return t, nil, nil
}

// Get returns a task when the acting user may view it.
func (s *Service) Get(_ context.Context, actorID, taskID string) (*task.Task, error) {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if !t.CanBeViewedBy(actorID) {
		return nil, ErrPermissionDenied
	}
	return t, nil
}

// List returns one page of the acting user's visible tasks plus the
// unfiltered overdue count.
func (s *Service) List(_ context.Context, actorID string, filters task.Filters, page int) (*task.Page, int64, error) {
	result, err := s.repo.List(actorID, filters, page)
	if err != nil {
		return nil, 0, err
	}
	overdue, err := s.repo.OverdueCount(actorID, s.now())
	if err != nil {
		return nil, 0, err
	}
	return result, overdue, nil
}

// Update validates the input against an existing task and persists the
// changes. Requires edit permission. The creator never changes, and the
// completion state is untouched by ordinary edits.
func (s *Service) Update(ctx context.Context, actorID, taskID string, in TaskInput) (*task.Task, FieldErrors, error) {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, nil, err
	}
	if !t.CanBeEditedBy(actorID) {
		return nil, nil, ErrPermissionDenied
	}

	cleaned, fieldErrs, err := s.form.Validate(ctx, actorID, in, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to validate task: %w", err)
	}
	if fieldErrs.HasErrors() {
		return nil, fieldErrs, nil
	}

	t.Title = cleaned.Title
	t.Description = cleaned.Description
	t.Deadline = cleaned.Deadline
	t.Priority = cleaned.Priority
	t.AssignedToID = cleaned.AssignedToID
	t.Normalize(s.now())

	if err := s.repo.Update(t); err != nil {
		return nil, nil, err
	}
	return t, nil, nil
}

// Delete removes a task. Only the creator may delete; assignees never can.
func (s *Service) Delete(_ context.Context, actorID, taskID string) error {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return err
	}
	if !t.CanBeDeletedBy(actorID) {
		return ErrPermissionDenied
	}
	return s.repo.Delete(t.ID)
}

// Toggle flips the completion state of a task as one atomic transition.
// Requires edit permission.
func (s *Service) Toggle(_ context.Context, actorID, taskID string) (*task.Task, error) {
	t, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}
	if !t.CanBeEditedBy(actorID) {
		return nil, ErrPermissionDenied
	}
	if _, err := s.repo.Toggle(t.ID, s.now()); err != nil {
		return nil, err
	}
	// Reload so the user associations are populated in the result.
	return s.repo.FindByID(t.ID)
}
