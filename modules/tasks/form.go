package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/example/todo-tracker/domain/task"
)

// FieldErrors maps form field names to validation messages. A non-empty map
// means the submission must not be persisted.
type FieldErrors map[string]string

// HasErrors reports whether any field failed validation.
func (e FieldErrors) HasErrors() bool {
	return len(e) > 0
}

// UserDirectory is the slice of the auth module the form needs: checking
// that a submitted assignee is a real user.
type UserDirectory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// TaskInput is a task create/edit submission before validation.
type TaskInput struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Priority     string     `json:"priority,omitempty"`
	AssignedToID string     `json:"assigned_to_id,omitempty"`
}

// Form validates task submissions. Validation runs in two explicit passes:
// structural fields first, then the resolved assignee as a distinct final
// check.
type Form struct {
	directory UserDirectory
	now       func() time.Time
}

// NewForm creates a Form backed by the given user directory.
func NewForm(directory UserDirectory) *Form {
	return &Form{directory: directory, now: time.Now}
}

// Validate checks the input for the acting user and returns a cleaned copy
// ready for persistence. isNew selects creation-time rules: the deadline
// must not be in the past for new tasks, while edits never re-validate
// historical deadlines.
//
// Assignee resolution: an empty assignee defaults to the actor. A non-empty
// assignee must be an existing user other than the actor — the actor is not
// an assignable candidate, self-assignment happens only through defaulting.
func (f *Form) Validate(ctx context.Context, actorID string, in TaskInput, isNew bool) (TaskInput, FieldErrors, error) {
	errs := FieldErrors{}
	cleaned := in

	// Pass 1: structural fields.
	cleaned.Title = strings.TrimSpace(in.Title)
	if cleaned.Title == "" {
		errs["title"] = "Title is required."
	} else if len(cleaned.Title) > 200 {
		errs["title"] = "Title must be at most 200 characters."
	}

	if isNew && cleaned.Deadline != nil && cleaned.Deadline.Before(f.now()) {
		errs["deadline"] = "Deadline cannot be in the past."
	}

	if cleaned.Priority == "" {
		cleaned.Priority = task.PriorityMedium
	} else if !task.ValidPriority(cleaned.Priority) {
		errs["priority"] = "Select a valid priority."
	}

	// Pass 2: resolve the assignee, then validate the resolved value.
	if cleaned.AssignedToID == "" {
		cleaned.AssignedToID = actorID
	} else if cleaned.AssignedToID == actorID {
		errs["assigned_to"] = "Leave the assignee empty to assign the task to yourself."
	} else {
		exists, err := f.directory.UserExists(ctx, cleaned.AssignedToID)
		if err != nil {
			return cleaned, nil, err
		}
		if !exists {
			errs["assigned_to"] = "Select a valid user."
		}
	}

	if errs.HasErrors() {
		return cleaned, errs, nil
	}
	return cleaned, nil, nil
}
