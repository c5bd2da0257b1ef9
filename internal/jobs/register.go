package jobs

import (
	"log/slog"

	"github.com/booruoss/booru/internal/core/duplicate"
	"github.com/booruoss/booru/internal/core/excludedfile"
	"github.com/booruoss/booru/internal/core/library"
	"github.com/booruoss/booru/internal/core/post"
	"github.com/booruoss/booru/internal/core/tag"
	"github.com/booruoss/booru/internal/ingest"
)

// Job keys, stable across releases since they are persisted in
// JobExecution/ScheduledJob rows.
const (
	KeyScanAllLibraries        = "scan_all_libraries"
	KeyExtractMetadata         = "extract_metadata"
	KeyComputeSimilarity       = "compute_similarity"
	KeyGenerateThumbnails      = "generate_thumbnails"
	KeyCleanupOrphanThumbnails = "cleanup_orphaned_thumbnails"
	KeyApplyFolderTags         = "apply_folder_tags"
	KeySanitizeTagNames        = "sanitize_tag_names"
	KeyFindDuplicates          = "find_duplicates"
	KeyCleanupInvalidExclusions = "cleanup_invalid_exclusions"
)

// Dependencies bundles everything the derived-data jobs (§4.6) need. It is
// assembled once at startup and handed to RegisterDerivedDataJobs.
type Dependencies struct {
	Libraries    library.Repository
	Posts        post.Repository
	Tags         *tag.Service
	Duplicates   duplicate.Repository
	Excluded     excludedfile.Repository
	Synchronizer *ingest.Synchronizer

	ThumbnailRoot   string
	ThumbnailMaxDim uint

	MetadataParallelism   int
	ThumbnailParallelism  int
	SimilarityParallelism int

	BaseSimilarity      float64
	CrossTypeSimilarity float64

	Logger *slog.Logger
}

// RegisterDerivedDataJobs registers every job from §4.6 on engine.
func RegisterDerivedDataJobs(engine *Engine, deps Dependencies) {
	engine.Register(Descriptor{
		Key: KeyScanAllLibraries, DisplayName: "Scan All Libraries",
		Description: "Synchronizes every configured library against its catalog rows.",
		SupportsAllMode: false, DisplayOrder: 1,
		Execute: deps.scanAllLibraries,
	})
	engine.Register(Descriptor{
		Key: KeyExtractMetadata, DisplayName: "Extract Metadata",
		Description: "Reads image/video dimensions and content type for each post.",
		SupportsAllMode: true, DisplayOrder: 2,
		Execute: deps.extractMetadata,
	})
	engine.Register(Descriptor{
		Key: KeyComputeSimilarity, DisplayName: "Compute Similarity",
		Description: "Computes a perceptual hash for each image post.",
		SupportsAllMode: true, DisplayOrder: 3,
		Execute: deps.computeSimilarity,
	})
	engine.Register(Descriptor{
		Key: KeyGenerateThumbnails, DisplayName: "Generate Thumbnails",
		Description: "Generates a thumbnail image for each post.",
		SupportsAllMode: true, DisplayOrder: 4,
		Execute: deps.generateThumbnails,
	})
	engine.Register(Descriptor{
		Key: KeyCleanupOrphanThumbnails, DisplayName: "Cleanup Orphaned Thumbnails",
		Description: "Removes thumbnail files no longer backed by a post.",
		SupportsAllMode: false, DisplayOrder: 5,
		Execute: deps.cleanupOrphanedThumbnails,
	})
	engine.Register(Descriptor{
		Key: KeyApplyFolderTags, DisplayName: "Apply Folder Tags",
		Description: "Derives and applies folder-path tags for each post.",
		SupportsAllMode: false, DisplayOrder: 6,
		Execute: deps.applyFolderTags,
	})
	engine.Register(Descriptor{
		Key: KeySanitizeTagNames, DisplayName: "Sanitize Tag Names",
		Description: "Normalizes tag names and merges duplicates.",
		SupportsAllMode: false, DisplayOrder: 7,
		Execute: deps.sanitizeTagNames,
	})
	engine.Register(Descriptor{
		Key: KeyFindDuplicates, DisplayName: "Find Duplicates",
		Description: "Groups posts into exact and perceptual duplicate sets.",
		SupportsAllMode: false, DisplayOrder: 8,
		Execute: deps.findDuplicates,
	})
	engine.Register(Descriptor{
		Key: KeyCleanupInvalidExclusions, DisplayName: "Cleanup Invalid Exclusions",
		Description: "Removes excluded-file records no longer matching a missing or changed file.",
		SupportsAllMode: false, DisplayOrder: 9,
		Execute: deps.cleanupInvalidExclusions,
	})
}
