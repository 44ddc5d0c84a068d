package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/todo-tracker/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Port is the interface other modules use to reach task functionality
// through the service container. Every operation carries the acting user;
// permission failures surface as errors containing "permission denied".
type Port interface {
	Create(ctx context.Context, actorID string, in TaskInput) (*TaskView, FieldErrors, error)
	Get(ctx context.Context, actorID, taskID string) (*TaskView, error)
	List(ctx context.Context, actorID string, filters task.Filters, page int) (*ListTasksResponse, error)
	Update(ctx context.Context, actorID, taskID string, in TaskInput) (*TaskView, FieldErrors, error)
	Delete(ctx context.Context, actorID, taskID string) error
	Toggle(ctx context.Context, actorID, taskID string) (*TaskView, error)
}

// Adapter implements Port over the mono service container.
type Adapter struct {
	container mono.ServiceContainer
}

// Compile-time interface check.
var _ Port = (*Adapter)(nil)

// NewAdapter creates a new Adapter.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	return &Adapter{container: container}
}

func (a *Adapter) call(ctx context.Context, service string, req, resp any) error {
	return helper.CallRequestReplyService(
		ctx, a.container, service, json.Marshal, json.Unmarshal, req, resp,
	)
}

// Create submits a new task for the acting user.
func (a *Adapter) Create(ctx context.Context, actorID string, in TaskInput) (*TaskView, FieldErrors, error) {
	req := CreateTaskRequest{ActorID: actorID, Input: in}
	var resp CreateTaskResponse
	if err := a.call(ctx, "create", &req, &resp); err != nil {
		return nil, nil, fmt.Errorf("create request failed: %w", err)
	}
	if resp.Errors.HasErrors() {
		return nil, resp.Errors, nil
	}
	return resp.Task, nil, nil
}

// Get fetches a task visible to the acting user.
func (a *Adapter) Get(ctx context.Context, actorID, taskID string) (*TaskView, error) {
	req := GetTaskRequest{ActorID: actorID, TaskID: taskID}
	var resp GetTaskResponse
	if err := a.call(ctx, "get", &req, &resp); err != nil {
		return nil, fmt.Errorf("get request failed: %w", err)
	}
	return &resp.Task, nil
}

// List fetches one page of the acting user's visible tasks.
func (a *Adapter) List(ctx context.Context, actorID string, filters task.Filters, page int) (*ListTasksResponse, error) {
	req := ListTasksRequest{ActorID: actorID, Filters: filters, Page: page}
	var resp ListTasksResponse
	if err := a.call(ctx, "list", &req, &resp); err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	return &resp, nil
}

// Update submits edits to an existing task.
func (a *Adapter) Update(ctx context.Context, actorID, taskID string, in TaskInput) (*TaskView, FieldErrors, error) {
	req := UpdateTaskRequest{ActorID: actorID, TaskID: taskID, Input: in}
	var resp UpdateTaskResponse
	if err := a.call(ctx, "update", &req, &resp); err != nil {
		return nil, nil, fmt.Errorf("update request failed: %w", err)
	}
	if resp.Errors.HasErrors() {
		return nil, resp.Errors, nil
	}
	return resp.Task, nil, nil
}

// Delete removes a task on behalf of the acting user.
func (a *Adapter) Delete(ctx context.Context, actorID, taskID string) error {
	req := DeleteTaskRequest{ActorID: actorID, TaskID: taskID}
	var resp DeleteTaskResponse
	if err := a.call(ctx, "delete", &req, &resp); err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	return nil
}

// Toggle flips a task's completion state on behalf of the acting user.
func (a *Adapter) Toggle(ctx context.Context, actorID, taskID string) (*TaskView, error) {
	req := ToggleTaskRequest{ActorID: actorID, TaskID: taskID}
	var resp ToggleTaskResponse
	if err := a.call(ctx, "toggle", &req, &resp); err != nil {
		return nil, fmt.Errorf("toggle request failed: %w", err)
	}
	return &resp.Task, nil
}
