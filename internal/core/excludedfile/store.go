package excludedfile

import "context"

// Repository is the persistence contract for excluded files.
type Repository interface {
	Create(ctx context.Context, e *ExcludedFile) (*ExcludedFile, error)

	// ListByLibrary returns every excluded file for libraryID, keyed
	// implicitly by RelativePath — used by the synchronizer's snapshot
	// step to skip reimporting them.
	ListByLibrary(ctx context.Context, libraryID int) ([]*ExcludedFile, error)

	// DeleteStale removes the given excluded-file rows, used by the
	// cleanup-invalid-exclusions job once it has determined which rows no
	// longer correspond to a valid exclusion.
	DeleteStale(ctx context.Context, libraryID int, staleIDs []int) error
}
