package web

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	domain "github.com/iineineno03k/todo-project/domain/todo"
	"github.com/iineineno03k/todo-project/modules/activity"
	"github.com/iineineno03k/todo-project/modules/todo"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const mainLayout = "layouts/main"

// Handlers serves the HTML pages on top of the todo and activity ports.
type Handlers struct {
	todos     todo.TodoPort
	activity  activity.ActivityPort
	sessions  *session.Store
	logger    types.Logger
	feedLimit int
	now       func() time.Time
}

// NewHandlers creates the page handlers. feed may be nil.
func NewHandlers(todos todo.TodoPort, feed activity.ActivityPort, sessions *session.Store, feedLimit int, logger types.Logger) *Handlers {
	return &Handlers{
		todos:     todos,
		activity:  feed,
		sessions:  sessions,
		logger:    logger,
		feedLimit: feedLimit,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// render renders a page inside the main layout, consuming any pending
// flash message.
func (h *Handlers) render(c *fiber.Ctx, name string, data fiber.Map) error {
	flash, err := popFlash(h.sessions, c)
	if err != nil {
		h.logger.Warn("Failed to read flash message", "error", err)
	}
	data["Flash"] = flash
	return c.Render(name, data, mainLayout)
}

// redirectWithFlash answers 303 to the list page.
func (h *Handlers) redirectWithFlash(c *fiber.Ctx, message string) error {
	if err := setFlash(h.sessions, c, message); err != nil {
		h.logger.Warn("Failed to store flash message", "error", err)
	}
	return c.Redirect("/todos", fiber.StatusSeeOther)
}

// Index handles GET /.
func (h *Handlers) Index(c *fiber.Ctx) error {
	return c.Redirect("/todos", fiber.StatusFound)
}

// List handles GET /todos.
func (h *Handlers) List(c *fiber.Ctx) error {
	filter := todo.ListFilter{
		Status: domain.Status(strings.TrimSpace(c.Query("status"))),
		Query:  strings.TrimSpace(c.Query("q")),
	}
	priority := strings.TrimSpace(c.Query("priority"))
	if priority != "" {
		p, err := strconv.Atoi(priority)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Priority filter must be a whole number.")
		}
		filter.Priority = &p
	}

	tasks, err := h.todos.ListTasks(c.UserContext(), filter)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return fiber.NewError(fiber.StatusBadRequest, "Unknown status filter.")
		}
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	var feed []activity.Entry
	if h.activity != nil {
		feed, err = h.activity.Recent(c.UserContext(), h.feedLimit)
		if err != nil {
			h.logger.Warn("Failed to load activity feed", "error", err)
		}
	}

	return h.render(c, "todos/list", fiber.Map{
		"Title":          "Tasks",
		"Tasks":          newTaskViews(tasks, h.now()),
		"Activity":       newActivityViews(feed),
		"StatusOptions":  statusOptions(string(filter.Status)),
		"FilterQuery":    filter.Query,
		"FilterPriority": priority,
		"Filtered":       filter.Status != "" || filter.Priority != nil || filter.Query != "",
	})
}

// Detail handles GET /todos/:id.
func (h *Handlers) Detail(c *fiber.Ctx) error {
	task, err := h.todos.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return taskError(err)
	}
	view := newTaskView(task, h.now())
	return h.render(c, "todos/detail", fiber.Map{
		"Title": view.Title,
		"Task":  view,
	})
}

// New handles GET /todos/new.
func (h *Handlers) New(c *fiber.Ctx) error {
	return h.renderForm(c, fiber.StatusOK, "", taskForm{Status: string(domain.StatusNotStarted), Priority: "0"}, nil)
}

// Create handles POST /todos.
func (h *Handlers) Create(c *fiber.Ctx) error {
	var form taskForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form submission.")
	}

	in, err := form.Input()
	if err == nil {
		_, err = h.todos.CreateTask(c.UserContext(), in)
	}
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return h.renderForm(c, fiber.StatusUnprocessableEntity, "", form, verr.Fields)
		}
		return fmt.Errorf("failed to create task: %w", err)
	}

	return h.redirectWithFlash(c, "Task created.")
}

// Edit handles GET /todos/:id/edit.
func (h *Handlers) Edit(c *fiber.Ctx) error {
	task, err := h.todos.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return taskError(err)
	}
	return h.renderForm(c, fiber.StatusOK, task.ID, formFromTask(newTaskView(task, h.now())), nil)
}

// Update handles POST /todos/:id.
func (h *Handlers) Update(c *fiber.Ctx) error {
	id := c.Params("id")

	var form taskForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form submission.")
	}

	in, err := form.Input()
	if err == nil {
		_, err = h.todos.UpdateTask(c.UserContext(), id, in)
	}
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			// An invalid form for a missing task is still a 404.
			if _, getErr := h.todos.GetTask(c.UserContext(), id); getErr != nil {
				return taskError(getErr)
			}
			return h.renderForm(c, fiber.StatusUnprocessableEntity, id, form, verr.Fields)
		}
		return taskError(err)
	}

	return h.redirectWithFlash(c, "Task updated.")
}

// ConfirmDelete handles GET /todos/:id/delete.
func (h *Handlers) ConfirmDelete(c *fiber.Ctx) error {
	task, err := h.todos.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return taskError(err)
	}
	return h.render(c, "todos/confirm_delete", fiber.Map{
		"Title": "Delete " + task.Title,
		"Task":  newTaskView(task, h.now()),
	})
}

// Delete handles POST /todos/:id/delete.
func (h *Handlers) Delete(c *fiber.Ctx) error {
	if err := h.todos.DeleteTask(c.UserContext(), c.Params("id")); err != nil {
		return taskError(err)
	}
	return h.redirectWithFlash(c, "Task deleted.")
}

// CycleStatus handles POST /todos/:id/status.
func (h *Handlers) CycleStatus(c *fiber.Ctx) error {
	task, err := h.todos.CycleTaskStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return taskError(err)
	}
	return h.redirectWithFlash(c, fmt.Sprintf(`Status of "%s" changed to "%s".`, task.Title, task.Status.Label()))
}

func (h *Handlers) renderForm(c *fiber.Ctx, status int, id string, form taskForm, errs map[string]string) error {
	title := "New task"
	action := "/todos"
	if id != "" {
		title = "Edit task"
		action = "/todos/" + id
	}
	if errs == nil {
		errs = map[string]string{}
	}

	c.Status(status)
	return h.render(c, "todos/form", fiber.Map{
		"Title":         title,
		"Action":        action,
		"TaskID":        id,
		"Form":          form,
		"Errors":        errs,
		"StatusOptions": statusOptions(form.Status),
	})
}

// taskError maps port errors onto HTTP errors.
func taskError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Task not found.")
	}
	return err
}
