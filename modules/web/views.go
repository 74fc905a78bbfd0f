package web

import (
	"time"

	domain "github.com/iineineno03k/todo-project/domain/todo"
	"github.com/iineineno03k/todo-project/modules/activity"
)

const timestampLayout = "2006-01-02 15:04"

// taskView is a task prepared for templates.
type taskView struct {
	ID              string
	Title           string
	Description     string
	Status          string
	StatusLabel     string
	NextStatusLabel string
	Priority        int
	DueDate         string
	Overdue         bool
	CreatedAt       string
	UpdatedAt       string
}

func newTaskView(t *domain.Task, now time.Time) taskView {
	return taskView{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		Status:          string(t.Status),
		StatusLabel:     t.Status.Label(),
		NextStatusLabel: t.Status.Next().Label(),
		Priority:        t.Priority,
		DueDate:         domain.FormatDueDate(t.DueDate),
		Overdue:         t.Overdue(now),
		CreatedAt:       t.CreatedAt.Format(timestampLayout),
		UpdatedAt:       t.UpdatedAt.Format(timestampLayout),
	}
}

func newTaskViews(tasks []*domain.Task, now time.Time) []taskView {
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, newTaskView(t, now))
	}
	return views
}

// statusOption is an entry of a status <select>.
type statusOption struct {
	Value    string
	Label    string
	Selected bool
}

func statusOptions(selected string) []statusOption {
	opts := make([]statusOption, 0, len(domain.Statuses()))
	for _, s := range domain.Statuses() {
		opts = append(opts, statusOption{
			Value:    string(s),
			Label:    s.Label(),
			Selected: string(s) == selected,
		})
	}
	return opts
}

// activityView is an activity feed line prepared for templates.
type activityView struct {
	Message string
	At      string
}

func newActivityViews(entries []activity.Entry) []activityView {
	views := make([]activityView, 0, len(entries))
	for _, e := range entries {
		views = append(views, activityView{
			Message: e.Message,
			At:      e.At.Format(timestampLayout),
		})
	}
	return views
}
