package todo

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/iineineno03k/todo-project/domain/todo"
)

// Error codes carried in ErrorPayload.
const (
	CodeNotFound   = "not_found"
	CodeValidation = "validation"
	CodeInternal   = "internal"
)

// ErrorPayload describes a failed request in a service response.
type ErrorPayload struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Task domain.Input `json:"task"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	ID string `json:"id"`
}

// UpdateTaskRequest is the request for updating a task.
type UpdateTaskRequest struct {
	ID   string       `json:"id"`
	Task domain.Input `json:"task"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ID string `json:"id"`
}

// CycleStatusRequest is the request for advancing a task's status.
type CycleStatusRequest struct {
	ID string `json:"id"`
}

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct {
	Status   string `json:"status,omitempty"`
	Priority *int   `json:"priority,omitempty"`
	Query    string `json:"q,omitempty"`
}

// TaskResponse is the response for a single task.
type TaskResponse struct {
	Task  *domain.Task  `json:"task,omitempty"`
	Error *ErrorPayload `json:"error,omitempty"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []*domain.Task `json:"tasks"`
	Total int            `json:"total"`
	Error *ErrorPayload  `json:"error,omitempty"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool          `json:"deleted"`
	Error   *ErrorPayload `json:"error,omitempty"`
}

// TodoPort defines the task operations available to other modules.
type TodoPort interface {
	CreateTask(ctx context.Context, in domain.Input) (*domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasks(ctx context.Context, filter ListFilter) ([]*domain.Task, error)
	UpdateTask(ctx context.Context, id string, in domain.Input) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
	CycleTaskStatus(ctx context.Context, id string) (*domain.Task, error)
}

// toErrorPayload converts a service error into its wire form.
func toErrorPayload(err error) *ErrorPayload {
	if err == nil {
		return nil
	}

	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return &ErrorPayload{Code: CodeNotFound, Message: err.Error()}
	case errors.As(err, &verr):
		return &ErrorPayload{Code: CodeValidation, Message: verr.Error(), Fields: verr.Fields}
	default:
		return &ErrorPayload{Code: CodeInternal, Message: err.Error()}
	}
}

// Err converts the payload back into the error it was built from.
func (p *ErrorPayload) Err() error {
	if p == nil {
		return nil
	}
	switch p.Code {
	case CodeNotFound:
		return domain.ErrNotFound
	case CodeValidation:
		return &domain.ValidationError{Fields: p.Fields}
	default:
		return fmt.Errorf("todo service: %s", p.Message)
	}
}
