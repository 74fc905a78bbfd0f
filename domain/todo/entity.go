// Package todo holds the Task entity and the rules that apply to it.
package todo

import "time"

// TitleMaxLength is the maximum number of characters in a title.
const TitleMaxLength = 100

// DateLayout is the wire and form format of a due date.
const DateLayout = "2006-01-02"

// Task is a single to-do item.
type Task struct {
	ID          string     `gorm:"primarykey;size:36" json:"id"`
	Title       string     `gorm:"size:100;not null" json:"title"`
	Description string     `gorm:"type:text;not null;default:''" json:"description"`
	Status      Status     `gorm:"size:20;not null;default:not_started;index" json:"status"`
	Priority    int        `gorm:"not null;default:0;index:idx_tasks_ordering,priority:1" json:"priority"`
	DueDate     *time.Time `gorm:"type:date;index:idx_tasks_ordering,priority:2" json:"due_date,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;index:idx_tasks_ordering,priority:3" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

// TableName returns the table name for Task model.
func (Task) TableName() string {
	return "tasks"
}

// Overdue reports whether the task has a due date before the day of now
// and is not done yet.
func (t *Task) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusDone {
		return false
	}
	return t.DueDate.Before(TruncateDate(now))
}

// TruncateDate drops the clock part of t, keeping its calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDueDate parses a YYYY-MM-DD date. The empty string means no due date.
func ParseDueDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FormatDueDate renders a due date the way ParseDueDate reads it.
func FormatDueDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(DateLayout)
}
