package audit

import "context"

// Repository is read-only: rows are populated exclusively by database
// triggers, never by application writes.
type Repository interface {
	ListForPost(ctx context.Context, postID int, limit, offset int) ([]*Entry, error)
}
