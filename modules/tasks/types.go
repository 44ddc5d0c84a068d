package tasks

import (
	"time"

	"github.com/example/todo-tracker/domain/task"
)

// TaskView is the task representation exchanged between modules and shown to
// clients.
type TaskView struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Priority     string     `json:"priority"`
	Status       string     `json:"status"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedByID  string     `json:"created_by_id"`
	CreatedBy    string     `json:"created_by"`
	AssignedToID string     `json:"assigned_to_id"`
	AssignedTo   string     `json:"assigned_to"`
	Overdue      bool       `json:"overdue"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// toTaskView converts a task entity to its exchange representation.
func toTaskView(t *task.Task, now time.Time) TaskView {
	return TaskView{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Deadline:     t.Deadline,
		Priority:     t.Priority,
		Status:       t.Status,
		Completed:    t.Completed,
		CompletedAt:  t.CompletedAt,
		CreatedByID:  t.CreatedByID,
		CreatedBy:    t.CreatedBy.Username,
		AssignedToID: t.AssignedToID,
		AssignedTo:   t.AssignedTo.Username,
		Overdue:      t.IsOverdue(now),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// CreateTaskRequest is the payload for the create service.
type CreateTaskRequest struct {
	ActorID string    `json:"actor_id"`
	Input   TaskInput `json:"input"`
}

// CreateTaskResponse is the reply to a create request. Errors is set when
// validation failed; the task was not persisted in that case.
type CreateTaskResponse struct {
	Task   *TaskView   `json:"task,omitempty"`
	Errors FieldErrors `json:"errors,omitempty"`
}

// GetTaskRequest is the payload for the get service.
type GetTaskRequest struct {
	ActorID string `json:"actor_id"`
	TaskID  string `json:"task_id"`
}

// GetTaskResponse is the reply to a get request.
type GetTaskResponse struct {
	Task TaskView `json:"task"`
}

// ListTasksRequest is the payload for the list service.
type ListTasksRequest struct {
	ActorID string       `json:"actor_id"`
	Filters task.Filters `json:"filters"`
	Page    int          `json:"page"`
}

// ListTasksResponse is one page of visible tasks plus list metadata.
type ListTasksResponse struct {
	Tasks        []TaskView `json:"tasks"`
	Page         int        `json:"page"`
	PageSize     int        `json:"page_size"`
	TotalTasks   int64      `json:"total_tasks"`
	TotalPages   int        `json:"total_pages"`
	HasNext      bool       `json:"has_next"`
	HasPrev      bool       `json:"has_prev"`
	OverdueCount int64      `json:"overdue_count"`
}

// UpdateTaskRequest is the payload for the update service.
type UpdateTaskRequest struct {
	ActorID string    `json:"actor_id"`
	TaskID  string    `json:"task_id"`
	Input   TaskInput `json:"input"`
}

// UpdateTaskResponse is the reply to an update request. Errors is set when
// validation failed; the task is unchanged in that case.
type UpdateTaskResponse struct {
	Task   *TaskView   `json:"task,omitempty"`
	Errors FieldErrors `json:"errors,omitempty"`
}

// DeleteTaskRequest is the payload for the delete service.
type DeleteTaskRequest struct {
	ActorID string `json:"actor_id"`
	TaskID  string `json:"task_id"`
}

// DeleteTaskResponse is the reply to a delete request.
type DeleteTaskResponse struct {
	Deleted bool   `json:"deleted"`
	TaskID  string `json:"task_id"`
}

// ToggleTaskRequest is the payload for the toggle service.
type ToggleTaskRequest struct {
	ActorID string `json:"actor_id"`
	TaskID  string `json:"task_id"`
}

// ToggleTaskResponse is the reply to a toggle request.
type ToggleTaskResponse struct {
	Task TaskView `json:"task"`
}
