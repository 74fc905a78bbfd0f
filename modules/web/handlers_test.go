package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/iineineno03k/todo-project/config"
	domain "github.com/iineineno03k/todo-project/domain/todo"
	"github.com/iineineno03k/todo-project/modules/activity"
	"github.com/iineineno03k/todo-project/modules/todo"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

// mockTodoPort implements todo.TodoPort over a map.
type mockTodoPort struct {
	tasks     map[string]*domain.Task
	created   []domain.Input
	listErr   error
	lastQuery todo.ListFilter
}

func newMockTodoPort(tasks ...*domain.Task) *mockTodoPort {
	p := &mockTodoPort{tasks: make(map[string]*domain.Task)}
	for _, t := range tasks {
		p.tasks[t.ID] = t
	}
	return p
}

func (p *mockTodoPort) CreateTask(_ context.Context, in domain.Input) (*domain.Task, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p.created = append(p.created, in)
	t := &domain.Task{ID: "new-id"}
	in.Apply(t)
	p.tasks[t.ID] = t
	return t, nil
}

func (p *mockTodoPort) GetTask(_ context.Context, id string) (*domain.Task, error) {
	t, ok := p.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (p *mockTodoPort) ListTasks(_ context.Context, filter todo.ListFilter) ([]*domain.Task, error) {
	p.lastQuery = filter
	if p.listErr != nil {
		return nil, p.listErr
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, &domain.ValidationError{Fields: map[string]string{"status": "Select a valid choice."}}
	}
	out := make([]*domain.Task, 0, len(p.tasks))
	for _, t := range p.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (p *mockTodoPort) UpdateTask(ctx context.Context, id string, in domain.Input) (*domain.Task, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	t, err := p.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(t)
	return t, nil
}

func (p *mockTodoPort) DeleteTask(_ context.Context, id string) error {
	if _, ok := p.tasks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(p.tasks, id)
	return nil
}

func (p *mockTodoPort) CycleTaskStatus(ctx context.Context, id string) (*domain.Task, error) {
	t, err := p.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Status = t.Status.Next()
	return t, nil
}

type mockActivityPort struct {
	entries []activity.Entry
}

func (p *mockActivityPort) Recent(_ context.Context, limit int) ([]activity.Entry, error) {
	if limit > 0 && limit < len(p.entries) {
		return p.entries[:limit], nil
	}
	return p.entries, nil
}

func setupTestApp(t *testing.T, port *mockTodoPort) *fiber.App {
	t.Helper()
	feed := &mockActivityPort{entries: []activity.Entry{
		{TaskID: "milk", Kind: activity.KindCreated, Message: `Created "Buy milk"`, At: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)},
	}}
	h := NewHandlers(port, feed, session.New(), 20, &mockLogger{})
	h.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	health := func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "healthy"}) }
	return newApp(config.HTTPConfig{}, h, health, &mockLogger{}, false)
}

func sampleTask() *domain.Task {
	created := time.Date(2026, 10, 14, 8, 30, 0, 0, time.UTC)
	due := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	return &domain.Task{
		ID:          "milk",
		Title:       "Buy milk",
		Description: "two litres",
		Status:      domain.StatusNotStarted,
		Priority:    5,
		DueDate:     &due,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, string(body)
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		name           string
		req            *http.Request
		expectedStatus int
		expectedBody   []string
		location       string
	}{
		{
			name:           "root redirects to list",
			req:            httptest.NewRequest(http.MethodGet, "/", nil),
			expectedStatus: http.StatusFound,
			location:       "/todos",
		},
		{
			name:           "list",
			req:            httptest.NewRequest(http.MethodGet, "/todos", nil),
			expectedStatus: http.StatusOK,
			expectedBody:   []string{"Buy milk", "Not started", "2026-10-20", "Recent activity", "&rarr; In progress"},
		},
		{
			name:           "list with unknown status filter",
			req:            httptest.NewRequest(http.MethodGet, "/todos?status=archived", nil),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{"Unknown status filter."},
		},
		{
			name:           "list with malformed priority filter",
			req:            httptest.NewRequest(http.MethodGet, "/todos?priority=high", nil),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "new form",
			req:            httptest.NewRequest(http.MethodGet, "/todos/new", nil),
			expectedStatus: http.StatusOK,
			expectedBody:   []string{"New task", `action="/todos"`, `value="not_started" selected`},
		},
		{
			name:           "detail",
			req:            httptest.NewRequest(http.MethodGet, "/todos/milk", nil),
			expectedStatus: http.StatusOK,
			expectedBody:   []string{"Buy milk", "two litres", "2026-10-14 08:30"},
		},
		{
			name:           "detail of unknown task",
			req:            httptest.NewRequest(http.MethodGet, "/todos/nope", nil),
			expectedStatus: http.StatusNotFound,
			expectedBody:   []string{"Task not found."},
		},
		{
			name:           "edit form is prefilled",
			req:            httptest.NewRequest(http.MethodGet, "/todos/milk/edit", nil),
			expectedStatus: http.StatusOK,
			expectedBody:   []string{"Edit task", `action="/todos/milk"`, `value="Buy milk"`, `value="5"`, `value="2026-10-20"`},
		},
		{
			name:           "edit of unknown task",
			req:            httptest.NewRequest(http.MethodGet, "/todos/nope/edit", nil),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "delete confirmation",
			req:            httptest.NewRequest(http.MethodGet, "/todos/milk/delete", nil),
			expectedStatus: http.StatusOK,
			expectedBody:   []string{"Are you sure", `action="/todos/milk/delete"`},
		},
		{
			name:           "delete confirmation of unknown task",
			req:            httptest.NewRequest(http.MethodGet, "/todos/nope/delete", nil),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "create",
			req:            postForm("/todos", url.Values{"title": {"Walk dog"}, "priority": {"3"}}),
			expectedStatus: http.StatusSeeOther,
			location:       "/todos",
		},
		{
			name:           "create without title",
			req:            postForm("/todos", url.Values{"title": {"  "}}),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{"This field is required."},
		},
		{
			name:           "create with bad priority and date",
			req:            postForm("/todos", url.Values{"title": {"x"}, "priority": {"lots"}, "due_date": {"soon"}}),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{"Enter a whole number.", "Enter a valid date.", `value="lots"`},
		},
		{
			name:           "create with long title",
			req:            postForm("/todos", url.Values{"title": {strings.Repeat("a", 101)}}),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{"Ensure this value has at most 100 characters."},
		},
		{
			name:           "update",
			req:            postForm("/todos/milk", url.Values{"title": {"Buy oat milk"}, "status": {"done"}, "priority": {"1"}}),
			expectedStatus: http.StatusSeeOther,
			location:       "/todos",
		},
		{
			name:           "update with invalid status",
			req:            postForm("/todos/milk", url.Values{"title": {"Buy milk"}, "status": {"archived"}}),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{"Select a valid choice.", `action="/todos/milk"`},
		},
		{
			name:           "update of unknown task",
			req:            postForm("/todos/nope", url.Values{"title": {"x"}}),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid update of unknown task",
			req:            postForm("/todos/nope", url.Values{"title": {""}}),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "cycle status",
			req:            postForm("/todos/milk/status", nil),
			expectedStatus: http.StatusSeeOther,
			location:       "/todos",
		},
		{
			name:           "cycle status of unknown task",
			req:            postForm("/todos/nope/status", nil),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "delete",
			req:            postForm("/todos/milk/delete", nil),
			expectedStatus: http.StatusSeeOther,
			location:       "/todos",
		},
		{
			name:           "delete of unknown task",
			req:            postForm("/todos/nope/delete", nil),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "health",
			req:            httptest.NewRequest(http.MethodGet, "/health", nil),
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"healthy"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(t, newMockTodoPort(sampleTask()))

			resp, body := doRequest(t, app, tt.req)
			if resp.StatusCode != tt.expectedStatus {
				t.Fatalf("status = %d, want %d; body: %s", resp.StatusCode, tt.expectedStatus, body)
			}
			if tt.location != "" {
				if got := resp.Header.Get("Location"); got != tt.location {
					t.Errorf("Location = %q, want %q", got, tt.location)
				}
			}
			for _, want := range tt.expectedBody {
				if !strings.Contains(body, want) {
					t.Errorf("body does not contain %q:\n%s", want, body)
				}
			}
		})
	}
}

func TestCreate_PassesParsedInput(t *testing.T) {
	port := newMockTodoPort()
	app := setupTestApp(t, port)

	doRequest(t, app, postForm("/todos", url.Values{
		"title":       {"  Buy milk "},
		"description": {"semi-skimmed"},
		"priority":    {"5"},
		"due_date":    {"2026-10-31"},
	}))

	if len(port.created) != 1 {
		t.Fatalf("CreateTask called %d times, want 1", len(port.created))
	}
	in := port.created[0]
	if in.Title != "Buy milk" || in.Priority != 5 || in.Status != domain.StatusNotStarted {
		t.Errorf("input = %+v", in)
	}
	if domain.FormatDueDate(in.DueDate) != "2026-10-31" {
		t.Errorf("DueDate = %v", in.DueDate)
	}
}

func TestList_PassesFilters(t *testing.T) {
	port := newMockTodoPort(sampleTask())
	app := setupTestApp(t, port)

	resp, _ := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/todos?status=done&priority=2&q=milk", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	f := port.lastQuery
	if f.Status != domain.StatusDone || f.Priority == nil || *f.Priority != 2 || f.Query != "milk" {
		t.Errorf("filter = %+v", f)
	}
}

func TestList_InternalErrorRendersErrorPage(t *testing.T) {
	port := newMockTodoPort()
	port.listErr = errors.New("database is locked")
	app := setupTestApp(t, port)

	resp, body := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/todos", nil))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if strings.Contains(body, "database is locked") {
		t.Error("internal error details leaked to the page")
	}
}

func TestFlashMessages(t *testing.T) {
	tests := []struct {
		name string
		req  func() *http.Request
		want string
	}{
		{"create", func() *http.Request { return postForm("/todos", url.Values{"title": {"Walk dog"}}) }, "Task created."},
		{"update", func() *http.Request { return postForm("/todos/milk", url.Values{"title": {"Buy milk"}}) }, "Task updated."},
		{"delete", func() *http.Request { return postForm("/todos/milk/delete", nil) }, "Task deleted."},
		{"status", func() *http.Request { return postForm("/todos/milk/status", nil) }, "Status of &#34;Buy milk&#34; changed to &#34;In progress&#34;."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(t, newMockTodoPort(sampleTask()))

			resp, _ := doRequest(t, app, tt.req())
			if resp.StatusCode != http.StatusSeeOther {
				t.Fatalf("status = %d, want 303", resp.StatusCode)
			}
			cookies := resp.Cookies()
			if len(cookies) == 0 {
				t.Fatal("expected a session cookie")
			}

			follow := func() string {
				req := httptest.NewRequest(http.MethodGet, "/todos", nil)
				for _, c := range cookies {
					req.AddCookie(c)
				}
				_, body := doRequest(t, app, req)
				return body
			}

			if body := follow(); !strings.Contains(body, tt.want) {
				t.Errorf("first page does not show flash %q:\n%s", tt.want, body)
			}
			if body := follow(); strings.Contains(body, `class="flash"`) {
				t.Error("flash message shown twice")
			}
		})
	}
}

func TestTaskForm_Input(t *testing.T) {
	in, err := taskForm{Title: "ok", Priority: " 7 ", Status: "in_progress", DueDate: "2026-01-02"}.Input()
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if in.Priority != 7 || in.Status != domain.StatusInProgress || domain.FormatDueDate(in.DueDate) != "2026-01-02" {
		t.Errorf("input = %+v", in)
	}

	in, err = taskForm{Title: "defaults"}.Input()
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if in.Priority != 0 || in.Status != domain.StatusNotStarted || in.DueDate != nil {
		t.Errorf("input = %+v", in)
	}

	_, err = taskForm{Priority: "x"}.Input()
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	for _, field := range []string{"priority", "title"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("missing error for %q in %v", field, verr.Fields)
		}
	}
}

func TestParseRedisAddr(t *testing.T) {
	tests := []struct {
		addr     string
		wantHost string
		wantPort int
	}{
		{"localhost:6380", "localhost", 6380},
		{":6379", "127.0.0.1", 6379},
		{"redis", "127.0.0.1", 6379},
		{"redis:abc", "redis", 6379},
	}
	for _, tt := range tests {
		host, port := parseRedisAddr(tt.addr)
		if host != tt.wantHost || port != tt.wantPort {
			t.Errorf("parseRedisAddr(%q) = (%q, %d), want (%q, %d)", tt.addr, host, port, tt.wantHost, tt.wantPort)
		}
	}
}
