package tasks

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/todo-tracker/domain/task"
	"gorm.io/gorm"
)

// ErrTaskNotFound is returned when a task does not exist.
var ErrTaskNotFound = errors.New("task not found")

// Repository provides access to task storage. Every mutation runs inside a
// single transaction so a partial write can never survive a failure.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create saves a new task.
func (r *Repository) Create(t *task.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return nil
	})
}

// FindByID retrieves a task with its user associations loaded.
func (r *Repository) FindByID(id string) (*task.Task, error) {
	var t task.Task
	err := r.db.Preload("CreatedBy").Preload("AssignedTo").First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// Update persists changes to an existing task.
func (r *Repository) Update(t *task.Task) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&task.Task{}).Where("id = ?", t.ID).
			Select("title", "description", "deadline", "priority", "status",
				"completed", "completed_at", "assigned_to_id", "updated_at").
			Updates(map[string]any{
				"title":          t.Title,
				"description":    t.Description,
				"deadline":       t.Deadline,
				"priority":       t.Priority,
				"status":         t.Status,
				"completed":      t.Completed,
				"completed_at":   t.CompletedAt,
				"assigned_to_id": t.AssignedToID,
				"updated_at":     time.Now(),
			})
		if err := result.Error; err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// Delete removes a task.
func (r *Repository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&task.Task{}, "id = ?", id)
		if err := result.Error; err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// Toggle atomically flips the completion state of a task: reload inside the
// transaction, apply the state transition, persist.
func (r *Repository) Toggle(id string, now time.Time) (*task.Task, error) {
	var t task.Task
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("failed to find task: %w", err)
		}

		if t.Completed {
			t.MarkPending()
		} else {
			t.MarkCompleted(now)
		}

		updates := map[string]any{
			"completed":    t.Completed,
			"status":       t.Status,
			"completed_at": t.CompletedAt,
			"updated_at":   now,
		}
		if err := tx.Model(&task.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to toggle task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// visibleTo scopes a query to the tasks userID may see: created by them or
// assigned to them.
func (r *Repository) visibleTo(userID string) *gorm.DB {
	return r.db.Model(&task.Task{}).
		Where("created_by_id = ? OR assigned_to_id = ?", userID, userID)
}

// List returns one page of the user's visible tasks after applying the
// optional filters. Ordering is deadline ascending with null deadlines
// sorted last, tie-broken by created_at descending. SQLite sorts NULLs
// first on ASC, so the null bucket is ordered explicitly.
func (r *Repository) List(userID string, filters task.Filters, page int) (*task.Page, error) {
	q := r.visibleTo(userID)

	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Priority != "" {
		q = q.Where("priority = ?", filters.Priority)
	}
	if !filters.ShowCompleted {
		q = q.Where("completed = ?", false)
	}
	if filters.AssignedToMe {
		q = q.Where("assigned_to_id = ?", userID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	totalPages := int((total + task.PageSize - 1) / task.PageSize)
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	var items []*task.Task
	err := q.Preload("CreatedBy").Preload("AssignedTo").
		Order("deadline IS NULL ASC").
		Order("deadline ASC").
		Order("created_at DESC").
		Offset((page - 1) * task.PageSize).
		Limit(task.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return &task.Page{
		Tasks:      items,
		PageNumber: page,
		PageSize:   task.PageSize,
		TotalTasks: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

// OverdueCount counts the user's visible tasks whose deadline is strictly
// before now and which are not completed. Filters never apply here.
func (r *Repository) OverdueCount(userID string, now time.Time) (int64, error) {
	var count int64
	err := r.visibleTo(userID).
		Where("deadline IS NOT NULL AND deadline < ?", now).
		Where("completed = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count overdue tasks: %w", err)
	}
	return count, nil
}
