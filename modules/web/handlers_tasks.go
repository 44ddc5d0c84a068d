package web

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/example/todo-tracker/domain/task"
	"github.com/example/todo-tracker/modules/tasks"
	"github.com/gofiber/fiber/v2"
)

// deadlineLayouts are the accepted deadline formats: RFC3339 plus the
// datetime-local and date-only shapes browser inputs produce.
var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// ListTasks renders the task list context: one page of the visible-task
// set, the applied filters, and the unfiltered overdue count.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	claims := currentClaims(c)

	filters := task.Filters{
		Status:        c.Query("status"),
		Priority:      c.Query("priority"),
		ShowCompleted: c.Query("show_completed", "true") != "false",
		AssignedToMe:  c.Query("assigned_to_me") == "true",
	}
	page, _ := strconv.Atoi(c.Query("page", "1"))

	resp, err := h.taskPort.List(c.UserContext(), claims.UserID, filters, page)
	if err != nil {
		return h.internalError(c, "list tasks", err)
	}

	return c.JSON(TaskListContext{
		Tasks:        resp.Tasks,
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
		TotalTasks:   resp.TotalTasks,
		HasNext:      resp.HasNext,
		HasPrev:      resp.HasPrev,
		OverdueCount: resp.OverdueCount,
		Filters: ListFilters{
			Status:        filters.Status,
			Priority:      filters.Priority,
			ShowCompleted: filters.ShowCompleted,
			AssignedToMe:  filters.AssignedToMe,
		},
		Flash: popFlash(c),
	})
}

// NewTask renders the creation form context, including the assignable
// candidates (everyone but the actor) and the actor's default priority.
func (h *Handlers) NewTask(c *fiber.Ctx) error {
	ctx, err := h.taskFormContext(c, "create", nil, nil, nil)
	if err != nil {
		return h.internalError(c, "build task form", err)
	}
	return c.JSON(ctx)
}

// CreateTask handles a creation submission. Success flashes and redirects
// to the list; validation failure re-renders the form with field errors.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	claims := currentClaims(c)

	form, input, fieldErrs, err := h.parseTaskForm(c)
	if err != nil {
		return err
	}
	if len(fieldErrs) == 0 {
		var view *tasks.TaskView
		view, fieldErrs, err = h.taskPort.Create(c.UserContext(), claims.UserID, input)
		if err != nil {
			return h.internalError(c, "create task", err)
		}
		if view != nil {
			setFlash(c, "success", fmt.Sprintf("Task %q created successfully!", view.Title))
			return c.Redirect("/tasks", fiber.StatusFound)
		}
	}

	ctx, ctxErr := h.taskFormContext(c, "create", nil, form, fieldErrs)
	if ctxErr != nil {
		return h.internalError(c, "build task form", ctxErr)
	}
	return c.JSON(ctx)
}

// ShowTask renders the detail context for a task the actor may view.
func (h *Handlers) ShowTask(c *fiber.Ctx) error {
	claims := currentClaims(c)

	view, err := h.taskPort.Get(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return h.taskAccessError(c, err, "view")
	}
	return c.JSON(TaskDetailContext{Task: *view, Flash: popFlash(c)})
}

// EditTask renders the edit form context pre-filled from the stored task.
func (h *Handlers) EditTask(c *fiber.Ctx) error {
	claims := currentClaims(c)

	view, err := h.taskPort.Get(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return h.taskAccessError(c, err, "edit")
	}

	ctx, err := h.taskFormContext(c, "update", view, nil, nil)
	if err != nil {
		return h.internalError(c, "build task form", err)
	}
	return c.JSON(ctx)
}

// UpdateTask handles an edit submission against an existing task.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	claims := currentClaims(c)
	taskID := c.Params("id")

	form, input, fieldErrs, err := h.parseTaskForm(c)
	if err != nil {
		return err
	}
	if len(fieldErrs) == 0 {
		var view *tasks.TaskView
		view, fieldErrs, err = h.taskPort.Update(c.UserContext(), claims.UserID, taskID, input)
		if err != nil {
			return h.taskAccessError(c, err, "edit")
		}
		if view != nil {
			setFlash(c, "success", fmt.Sprintf("Task %q updated successfully!", view.Title))
			return c.Redirect("/tasks/"+taskID, fiber.StatusFound)
		}
	}

	ctx, ctxErr := h.taskFormContext(c, "update", nil, form, fieldErrs)
	if ctxErr != nil {
		return h.internalError(c, "build task form", ctxErr)
	}
	return c.JSON(ctx)
}

// ConfirmDeleteTask renders the delete confirmation context. Only the
// creator ever sees it; an assignee is bounced like any other unauthorized
// user.
func (h *Handlers) ConfirmDeleteTask(c *fiber.Ctx) error {
	claims := currentClaims(c)

	view, err := h.taskPort.Get(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return h.taskAccessError(c, err, "delete")
	}
	if view.CreatedByID != claims.UserID {
		setFlash(c, "error", "You do not have permission to delete this task.")
		return c.Redirect("/tasks", fiber.StatusFound)
	}
	return c.JSON(DeleteConfirmContext{Task: *view})
}

// DeleteTask destroys the task. Unauthorized attempts leave the record
// intact and redirect with a flash message.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	claims := currentClaims(c)

	if err := h.taskPort.Delete(c.UserContext(), claims.UserID, c.Params("id")); err != nil {
		return h.taskAccessError(c, err, "delete")
	}
	setFlash(c, "success", "Task deleted successfully!")
	return c.Redirect("/tasks", fiber.StatusFound)
}

// ToggleTask flips a task's completion state and returns to the list.
func (h *Handlers) ToggleTask(c *fiber.Ctx) error {
	claims := currentClaims(c)

	view, err := h.taskPort.Toggle(c.UserContext(), claims.UserID, c.Params("id"))
	if err != nil {
		return h.taskAccessError(c, err, "modify")
	}

	if view.Completed {
		setFlash(c, "success", fmt.Sprintf("Task %q marked as completed!", view.Title))
	} else {
		setFlash(c, "success", fmt.Sprintf("Task %q marked as pending.", view.Title))
	}
	return c.Redirect("/tasks", fiber.StatusFound)
}

// parseTaskForm decodes the submission and parses the deadline. A malformed
// deadline becomes a field error rather than a request failure.
func (h *Handlers) parseTaskForm(c *fiber.Ctx) (*TaskForm, tasks.TaskInput, tasks.FieldErrors, error) {
	var form TaskForm
	if err := c.BodyParser(&form); err != nil {
		return nil, tasks.TaskInput{}, nil, c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "bad_request",
			Message: "Invalid request body",
		})
	}

	input := tasks.TaskInput{
		Title:        form.Title,
		Description:  form.Description,
		Priority:     form.Priority,
		AssignedToID: form.AssignedTo,
	}

	fieldErrs := tasks.FieldErrors{}
	if form.Deadline != "" {
		deadline, ok := parseDeadline(form.Deadline)
		if !ok {
			fieldErrs["deadline"] = "Enter a valid date/time."
		} else {
			input.Deadline = deadline
		}
	}

	return &form, input, fieldErrs, nil
}

func parseDeadline(value string) (*time.Time, bool) {
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// taskFormContext assembles the create/edit form context. values/errors are
// set when re-rendering after a failed submission; view is set when
// pre-filling an edit form.
func (h *Handlers) taskFormContext(c *fiber.Ctx, action string, view *tasks.TaskView, values *TaskForm, errs tasks.FieldErrors) (*TaskFormContext, error) {
	claims := currentClaims(c)

	candidates, err := h.authPort.ListUsers(c.UserContext(), claims.UserID)
	if err != nil {
		return nil, err
	}

	defaultPriority := task.PriorityMedium
	if profile, err := h.authPort.GetProfile(c.UserContext(), claims.UserID); err == nil && profile.DefaultTaskPriority != "" {
		defaultPriority = profile.DefaultTaskPriority
	}

	if view != nil && values == nil {
		values = &TaskForm{
			Title:       view.Title,
			Description: view.Description,
			Priority:    view.Priority,
			AssignedTo:  view.AssignedToID,
		}
		if view.Deadline != nil {
			values.Deadline = view.Deadline.Format(time.RFC3339)
		}
	}

	if len(errs) == 0 {
		errs = nil
	}
	return &TaskFormContext{
		Action:          action,
		Task:            view,
		Values:          values,
		Errors:          errs,
		AssignableUsers: candidates,
		DefaultPriority: defaultPriority,
	}, nil
}

// taskAccessError converts task service failures into responses: permission
// problems flash and redirect to the list, missing tasks 404, anything else
// is internal.
func (h *Handlers) taskAccessError(c *fiber.Ctx, err error, verb string) error {
	switch {
	case isPermissionDenied(err):
		setFlash(c, "error", "You do not have permission to "+verb+" this task.")
		return c.Redirect("/tasks", fiber.StatusFound)
	case isTaskNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	default:
		return h.internalError(c, verb+" task", err)
	}
}

func (h *Handlers) internalError(c *fiber.Ctx, op string, err error) error {
	log.Printf("[web] %s failed: %v", op, err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
