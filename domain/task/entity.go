package task

import (
	"time"

	domain "github.com/example/todo-tracker/domain/user"
)

// Priority levels for a task.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Status values for a task.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// ValidPriority reports whether p is a known priority level.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a unit of work owned by its creator and optionally
// assigned to another user.
type Task struct {
	ID          string     `gorm:"primaryKey;type:text"`
	Title       string     `gorm:"size:200;not null"`
	Description string     `gorm:"type:text"`
	Deadline    *time.Time `gorm:"index"`
	Priority    string     `gorm:"size:10;not null;default:medium"`
	Status      string     `gorm:"size:20;not null;default:pending;index:idx_tasks_creator_status,priority:2;index:idx_tasks_assignee_status,priority:2"`
	Completed   bool       `gorm:"not null;default:false"`
	CompletedAt *time.Time

	CreatedByID  string      `gorm:"not null;type:text;index:idx_tasks_creator_status,priority:1"`
	CreatedBy    domain.User `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE"`
	AssignedToID string      `gorm:"type:text;index:idx_tasks_assignee_status,priority:1"`
	AssignedTo   domain.User `gorm:"foreignKey:AssignedToID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// CanBeViewedBy reports whether userID may view the task.
func (t *Task) CanBeViewedBy(userID string) bool {
	return t.CreatedByID == userID || t.AssignedToID == userID
}

// CanBeEditedBy reports whether userID may edit the task. The rule is the
// same as for viewing: creator or assignee.
func (t *Task) CanBeEditedBy(userID string) bool {
	return t.CanBeViewedBy(userID)
}

// CanBeDeletedBy reports whether userID may delete the task. Only the
// creator may delete; assignees never can.
func (t *Task) CanBeDeletedBy(userID string) bool {
	return t.CreatedByID == userID
}

// IsOverdue reports whether the task's deadline has passed without the task
// being completed. Overdue is derived, never stored.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Deadline == nil || t.Completed {
		return false
	}
	return now.After(*t.Deadline)
}

// DaysUntilDeadline returns the whole days remaining until the deadline, or
// false when no deadline is set. Past deadlines yield negative values.
func (t *Task) DaysUntilDeadline(now time.Time) (int, bool) {
	if t.Deadline == nil {
		return 0, false
	}
	return int(t.Deadline.Sub(now).Hours() / 24), true
}

// MarkCompleted flips the task to the completed state as one transition:
// completed flag, status and completion timestamp move together.
func (t *Task) MarkCompleted(now time.Time) {
	t.Completed = true
	t.Status = StatusCompleted
	at := now
	t.CompletedAt = &at
}

// MarkPending reverses MarkCompleted: the completion timestamp is cleared
// and status returns to pending.
func (t *Task) MarkPending() {
	t.Completed = false
	t.Status = StatusPending
	t.CompletedAt = nil
}

// Normalize enforces the completed/completed_at invariant before a persist:
// a completed task always carries a completion timestamp and an incomplete
// task never does. Status is left alone; only the toggle transitions keep
// status and the completed flag in lockstep.
func (t *Task) Normalize(now time.Time) {
	if t.Completed && t.CompletedAt == nil {
		at := now
		t.CompletedAt = &at
	}
	if !t.Completed && t.CompletedAt != nil {
		t.CompletedAt = nil
	}
}
