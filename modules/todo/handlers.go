package todo

import (
	"context"

	domain "github.com/iineineno03k/todo-project/domain/todo"
	"github.com/go-monolith/mono"
)

// Domain failures travel inside the response body so the caller can tell
// a missing task from an invalid one. Only transport problems surface as
// handler errors.

func (m *Module) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Create(ctx, req.Task)
	if err != nil {
		return TaskResponse{Error: m.errorPayload("create", err)}, nil
	}
	return TaskResponse{Task: task}, nil
}

func (m *Module) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Get(ctx, req.ID)
	if err != nil {
		return TaskResponse{Error: m.errorPayload("get", err)}, nil
	}
	return TaskResponse{Task: task}, nil
}

func (m *Module) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.List(ctx, ListFilter{
		Status:   domain.Status(req.Status),
		Priority: req.Priority,
		Query:    req.Query,
	})
	if err != nil {
		return ListTasksResponse{Tasks: []*domain.Task{}, Error: m.errorPayload("list", err)}, nil
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return ListTasksResponse{Tasks: tasks, Total: len(tasks)}, nil
}

func (m *Module) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.Update(ctx, req.ID, req.Task)
	if err != nil {
		return TaskResponse{Error: m.errorPayload("update", err)}, nil
	}
	return TaskResponse{Task: task}, nil
}

func (m *Module) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.ID); err != nil {
		return DeleteTaskResponse{Error: m.errorPayload("delete", err)}, nil
	}
	return DeleteTaskResponse{Deleted: true}, nil
}

func (m *Module) cycleStatus(ctx context.Context, req CycleStatusRequest, _ *mono.Msg) (TaskResponse, error) {
	task, err := m.service.CycleStatus(ctx, req.ID)
	if err != nil {
		return TaskResponse{Error: m.errorPayload("cycle-status", err)}, nil
	}
	return TaskResponse{Task: task}, nil
}

func (m *Module) errorPayload(op string, err error) *ErrorPayload {
	p := toErrorPayload(err)
	if p.Code == CodeInternal {
		m.logger.Error("Task operation failed", "op", op, "error", err)
	}
	return p
}
