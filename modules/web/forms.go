package web

import (
	"strconv"
	"strings"

	domain "github.com/iineineno03k/todo-project/domain/todo"
)

// taskForm is the raw HTML form submission for a task.
type taskForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Status      string `form:"status"`
	Priority    string `form:"priority"`
	DueDate     string `form:"due_date"`
}

func formFromTask(v taskView) taskForm {
	return taskForm{
		Title:       v.Title,
		Description: v.Description,
		Status:      v.Status,
		Priority:    strconv.Itoa(v.Priority),
		DueDate:     v.DueDate,
	}
}

// Input converts the form into a task input. Fields that cannot be parsed
// are reported in the returned error alongside the input's own validation.
func (f taskForm) Input() (domain.Input, error) {
	verr := &domain.ValidationError{}
	in := domain.Input{
		Title:       f.Title,
		Description: f.Description,
		Status:      domain.Status(strings.TrimSpace(f.Status)),
	}

	if raw := strings.TrimSpace(f.Priority); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add("priority", "Enter a whole number.")
		} else {
			in.Priority = p
		}
	}

	due, err := domain.ParseDueDate(strings.TrimSpace(f.DueDate))
	if err != nil {
		verr.Add("due_date", "Enter a valid date.")
	} else {
		in.DueDate = due
	}

	in = in.Normalize()
	if err := verr.OrNil(); err != nil {
		if vErr, ok := in.Validate().(*domain.ValidationError); ok {
			for field, msg := range vErr.Fields {
				verr.Add(field, msg)
			}
		}
		return in, verr
	}
	return in, nil
}
