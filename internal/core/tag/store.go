package tag

import "context"

// MergeGroup is a set of tags sharing the same sanitized name, produced by
// the sanitize-tag-names job's grouping pass (§4.6.7).
type MergeGroup struct {
	SanitizedName string
	TagIDs        []int
}

// Repository is the persistence contract for tags and tag categories.
type Repository interface {
	Create(ctx context.Context, t *Tag) (*Tag, error)
	Update(ctx context.Context, t *Tag) error
	Delete(ctx context.Context, id int) error
	Get(ctx context.Context, id int) (*Tag, error)
	GetByName(ctx context.Context, name string) (*Tag, error)
	List(ctx context.Context) ([]*Tag, error)

	CreateCategory(ctx context.Context, c *TagCategory) (*TagCategory, error)
	UpdateCategory(ctx context.Context, c *TagCategory) error
	DeleteCategory(ctx context.Context, id int) error
	ListCategories(ctx context.Context) ([]*TagCategory, error)

	// RecountPostCounts recomputes every tag's denormalized PostCount from
	// core.posttag, used after bulk tag-assignment changes (folder tagging,
	// sanitize merge).
	RecountPostCounts(ctx context.Context) error

	// FindSanitizeGroups groups tags by sanitized name, including groups of
	// a single tag, for the sanitize-tag-names job.
	FindSanitizeGroups(ctx context.Context) ([]MergeGroup, error)

	// MergeInto reassigns every PostTag row from each of loserIDs onto
	// winnerID (deduping by (postId, source)), adopts winnerID's category
	// from a loser if winnerID has none, renames winnerID to
	// sanitizedName, and deletes the loser rows — all in one transaction.
	MergeInto(ctx context.Context, winnerID int, loserIDs []int, sanitizedName string) error
}
