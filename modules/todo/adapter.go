package todo

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/iineineno03k/todo-project/domain/todo"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// todoAdapter implements TodoPort over the todo module's request-reply
// services.
type todoAdapter struct {
	container mono.ServiceContainer
}

// NewTodoAdapter creates a new adapter for todo services.
// container is the ServiceContainer received via SetDependencyServiceContainer.
func NewTodoAdapter(container mono.ServiceContainer) TodoPort {
	if container == nil {
		panic("todo adapter requires non-nil ServiceContainer")
	}
	return &todoAdapter{container: container}
}

func callService[Req, Resp any](ctx context.Context, c mono.ServiceContainer, service string, req Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		c,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// CreateTask creates a task via the create service.
func (a *todoAdapter) CreateTask(ctx context.Context, in domain.Input) (*domain.Task, error) {
	var resp TaskResponse
	if err := callService(ctx, a.container, "create", &CreateTaskRequest{Task: in}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// GetTask retrieves a task by ID via the get service.
func (a *todoAdapter) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var resp TaskResponse
	if err := callService(ctx, a.container, "get", &GetTaskRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// ListTasks lists tasks via the list service.
func (a *todoAdapter) ListTasks(ctx context.Context, filter ListFilter) ([]*domain.Task, error) {
	req := ListTasksRequest{
		Status:   string(filter.Status),
		Priority: filter.Priority,
		Query:    filter.Query,
	}
	var resp ListTasksResponse
	if err := callService(ctx, a.container, "list", &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// UpdateTask updates a task via the update service.
func (a *todoAdapter) UpdateTask(ctx context.Context, id string, in domain.Input) (*domain.Task, error) {
	var resp TaskResponse
	if err := callService(ctx, a.container, "update", &UpdateTaskRequest{ID: id, Task: in}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// DeleteTask deletes a task via the delete service.
func (a *todoAdapter) DeleteTask(ctx context.Context, id string) error {
	var resp DeleteTaskResponse
	if err := callService(ctx, a.container, "delete", &DeleteTaskRequest{ID: id}, &resp); err != nil {
		return err
	}
	if err := resp.Error.Err(); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("task not deleted: %s", id)
	}
	return nil
}

// CycleTaskStatus advances a task's status via the cycle-status service.
func (a *todoAdapter) CycleTaskStatus(ctx context.Context, id string) (*domain.Task, error) {
	var resp TaskResponse
	if err := callService(ctx, a.container, "cycle-status", &CycleStatusRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}
