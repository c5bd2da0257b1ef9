package library

import "context"

// Repository is the persistence contract for libraries and their ignored
// prefixes. Implementations must cascade post/exclusion/prefix deletion
// when a library is deleted.
type Repository interface {
	Create(ctx context.Context, lib *Library) (*Library, error)
	Update(ctx context.Context, lib *Library) error
	Delete(ctx context.Context, id int) error
	Get(ctx context.Context, id int) (*Library, error)
	List(ctx context.Context) ([]*Library, error)

	AddIgnoredPrefix(ctx context.Context, libraryID int, relPath string) error
	RemoveIgnoredPrefix(ctx context.Context, libraryID int, relPath string) error
	ListIgnoredPrefixes(ctx context.Context, libraryID int) ([]string, error)
}
