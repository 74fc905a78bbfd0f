package activity

import "context"

// RecentRequest is the request for the recent service.
type RecentRequest struct {
	Limit int `json:"limit,omitempty"`
}

// RecentResponse is the response for the recent service.
type RecentResponse struct {
	Entries []Entry `json:"entries"`
}

// ActivityPort defines the interface for reading the activity feed.
type ActivityPort interface {
	Recent(ctx context.Context, limit int) ([]Entry, error)
}
