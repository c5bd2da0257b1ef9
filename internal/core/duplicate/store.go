package duplicate

import "context"

// Repository is the persistence contract for duplicate groups.
type Repository interface {
	Get(ctx context.Context, id int) (*Group, error)
	List(ctx context.Context, resolved *bool, groupType *GroupType) ([]*Group, error)
	Delete(ctx context.Context, id int) error

	// CreateGroup persists a new group with its entries in one statement
	// pair, used by the find-duplicates job.
	CreateGroup(ctx context.Context, g *Group) (*Group, error)

	// RemoveEntry deletes one post's membership row from a group without
	// touching the group itself.
	RemoveEntry(ctx context.Context, groupID, postID int) error

	// CountEntries reports how many posts remain in a group.
	CountEntries(ctx context.Context, groupID int) (int, error)

	// MarkResolved flips a group's isResolved flag.
	MarkResolved(ctx context.Context, groupID int, resolved bool) error

	// DeleteIfEmpty deletes the group row when it has fewer than 2 entries
	// left, returning whether it deleted.
	DeleteIfEmpty(ctx context.Context, groupID int) (bool, error)

	// MarkAllUnresolved flips every group's isResolved flag to false.
	MarkAllUnresolved(ctx context.Context) error
}
