package web

import (
	"github.com/example/todo-tracker/modules/auth"
	"github.com/example/todo-tracker/modules/tasks"
)

// Responses are the context mappings a rendering collaborator would turn
// into HTML; this surface serves them as JSON.

// ErrorResponse is a generic error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RegisterForm is a registration submission.
type RegisterForm struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
}

// LoginForm is a login submission.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

// AuthFormContext is the context for the login and registration pages.
type AuthFormContext struct {
	Action string            `json:"action"`
	Next   string            `json:"next,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
	Flash  *Flash            `json:"flash,omitempty"`
}

// TaskForm is a task create/edit submission. Deadline arrives as a string
// and is parsed into a timestamp by the handler.
type TaskForm struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Deadline    string `json:"deadline" form:"deadline"`
	Priority    string `json:"priority" form:"priority"`
	AssignedTo  string `json:"assigned_to" form:"assigned_to"`
}

// TaskFormContext is the context for the task create/edit pages.
type TaskFormContext struct {
	Action          string             `json:"action"`
	Task            *tasks.TaskView    `json:"task,omitempty"`
	Values          *TaskForm          `json:"values,omitempty"`
	Errors          tasks.FieldErrors  `json:"errors,omitempty"`
	AssignableUsers []auth.UserSummary `json:"assignable_users"`
	DefaultPriority string             `json:"default_priority"`
}

// ListFilters echoes the applied filter values back to the list page.
type ListFilters struct {
	Status        string `json:"status,omitempty"`
	Priority      string `json:"priority,omitempty"`
	ShowCompleted bool   `json:"show_completed"`
	AssignedToMe  bool   `json:"assigned_to_me"`
}

// TaskListContext is the context for the task list page.
type TaskListContext struct {
	Tasks        []tasks.TaskView `json:"tasks"`
	Page         int              `json:"page"`
	TotalPages   int              `json:"total_pages"`
	TotalTasks   int64            `json:"total_tasks"`
	HasNext      bool             `json:"has_next"`
	HasPrev      bool             `json:"has_prev"`
	OverdueCount int64            `json:"overdue_count"`
	Filters      ListFilters      `json:"filters"`
	Flash        *Flash           `json:"flash,omitempty"`
}

// TaskDetailContext is the context for the task detail page.
type TaskDetailContext struct {
	Task  tasks.TaskView `json:"task"`
	Flash *Flash         `json:"flash,omitempty"`
}

// DeleteConfirmContext is the context for the delete confirmation page.
type DeleteConfirmContext struct {
	Task tasks.TaskView `json:"task"`
}
