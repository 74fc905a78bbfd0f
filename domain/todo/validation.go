package todo

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Input holds the user-editable fields of a task.
type Input struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Normalize trims the text fields, fills the default status and drops the
// clock part of the due date.
func (in Input) Normalize() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Status == "" {
		in.Status = StatusNotStarted
	}
	if in.DueDate != nil {
		d := TruncateDate(*in.DueDate)
		in.DueDate = &d
	}
	return in
}

// Validate checks a normalized input.
func (in Input) Validate() error {
	verr := &ValidationError{}

	switch n := utf8.RuneCountInString(in.Title); {
	case n == 0:
		verr.Add("title", "This field is required.")
	case n > TitleMaxLength:
		verr.Add("title", "Ensure this value has at most 100 characters.")
	}

	if !in.Status.Valid() {
		verr.Add("status", "Select a valid choice.")
	}

	if in.Priority < math.MinInt32 || in.Priority > math.MaxInt32 {
		verr.Add("priority", "Ensure this value fits in a 32-bit integer.")
	}

	return verr.OrNil()
}

// Apply copies the input onto t.
func (in Input) Apply(t *Task) {
	t.Title = in.Title
	t.Description = in.Description
	t.Status = in.Status
	t.Priority = in.Priority
	t.DueDate = in.DueDate
}
