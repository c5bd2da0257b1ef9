package post

import "context"

// ExistingInfo is the lightweight snapshot of a persisted post used by the
// library synchronizer to detect updates, moves, and orphans without
// loading full Post rows.
type ExistingInfo struct {
	ID                 int
	RelativePath       string
	ContentHash        string
	SizeBytes          int64
	FileModifiedUnix    int64
	FileIdentityDevice *string
	FileIdentityValue  *string
}

// UpdateFields describes a content/metadata change applied to an existing post.
type UpdateFields struct {
	PostID             int
	SizeBytes          int64
	FileModifiedDate   int64 // unix seconds
	ContentHash        string
	FileIdentityDevice *string
	FileIdentityValue  *string
	ResetDerived       bool // clears width/height/pdqHash256 when hash changed
}

// MoveFields describes a post whose relative path changed but whose identity
// (and therefore row) is preserved.
type MoveFields struct {
	PostID           int
	NewRelativePath  string
	SizeBytes        int64
	FileModifiedDate int64
	ContentHash      string
	ContentType      string
	FileIdentityDevice *string
	FileIdentityValue  *string
}

// MetadataFields is the result of metadata extraction for one post.
type MetadataFields struct {
	PostID      int
	Width       int
	Height      int
	ContentType string
}

// DuplicateSignature is the minimal projection used by the find-duplicates job.
type DuplicateSignature struct {
	ID          int
	ContentHash string
	PdqHash256  *string
	ContentType string
}

// Repository is the persistence contract for posts, their tag assignments,
// and their external-URL sources.
type Repository interface {
	// # Library sync

	// SnapshotExisting returns the lightweight identity/hash snapshot of
	// every post in libraryID, keyed implicitly by RelativePath — callers
	// build their own maps from the returned slice.
	SnapshotExisting(ctx context.Context, libraryID int) ([]ExistingInfo, error)

	// InsertBatch inserts up to len(posts) new rows transactionally,
	// returning the assigned IDs in the same order. Used by the ingestion
	// pipeline's batched flush (§4.1).
	InsertBatch(ctx context.Context, posts []*Post) ([]int, error)

	// ApplyUpdates and ApplyMoves are invoked once per sync in a single
	// transactional pass (§4.2 step 6).
	ApplyUpdates(ctx context.Context, updates []UpdateFields) error
	ApplyMoves(ctx context.Context, moves []MoveFields) error

	// DeleteOrphans removes posts whose relative path is no longer present
	// on disk, in batches of 100 paths.
	DeleteOrphans(ctx context.Context, libraryID int, relativePaths []string) error

	// ListTaggedByContentHash returns, for every other post in libraryID
	// sharing contentHash, its non-folder tag assignments — used by the
	// tag-inheritance rule (§4.3).
	ListTaggedByContentHash(ctx context.Context, libraryID int, contentHash string, excludePostID int) ([]TagAssignment, error)
	CopyTagAssignments(ctx context.Context, postID int, assignments []TagAssignment) error

	// # Derived-data jobs

	ListNeedingMetadata(ctx context.Context, all bool, limit, offset int) ([]*Post, error)
	WriteMetadataBatch(ctx context.Context, fields []MetadataFields) error

	ListNeedingSimilarity(ctx context.Context, all bool, limit, offset int) ([]*Post, error)
	WriteSimilarityHash(ctx context.Context, postID int, pdqHash256 string) error

	ListForThumbnails(ctx context.Context, all bool, limit, offset int) ([]*Post, error)

	ListDistinctLibraryContentHashes(ctx context.Context) (map[int][]string, error)

	ListFolderTagBatch(ctx context.Context, afterID int, limit int) ([]*Post, error)
	ReplaceFolderTags(ctx context.Context, postID int, tagIDs []int) (added, removed int, err error)

	ListDuplicateSignatures(ctx context.Context) ([]DuplicateSignature, error)

	// # Duplicate resolver / general access

	Get(ctx context.Context, id int) (*Post, error)
	GetByRelativePath(ctx context.Context, libraryID int, relativePath string) (*Post, error)
	Delete(ctx context.Context, id int) error

	MergeTagsAndSources(ctx context.Context, keepPostID int, tags []TagAssignment, sources []Source) error

	ListByIDs(ctx context.Context, ids []int) ([]*Post, error)
}
