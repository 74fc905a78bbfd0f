package todo

// Status represents where a task is in its lifecycle.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// nextStatus is the status cycle. Every Status constant must have an entry.
var nextStatus = map[Status]Status{
	StatusNotStarted: StatusInProgress,
	StatusInProgress: StatusDone,
	StatusDone:       StatusNotStarted,
}

var statusLabels = map[Status]string{
	StatusNotStarted: "Not started",
	StatusInProgress: "In progress",
	StatusDone:       "Done",
}

// Statuses returns all statuses in cycle order.
func Statuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusDone}
}

// Next returns the status that follows s in the cycle
// not_started -> in_progress -> done -> not_started.
// An unknown status restarts the cycle at not_started.
func (s Status) Next() Status {
	if next, ok := nextStatus[s]; ok {
		return next
	}
	return StatusNotStarted
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := nextStatus[s]
	return ok
}

// Label returns the human readable name of the status.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}
