package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/booruoss/booru/internal/core/excludedfile"
	"github.com/booruoss/booru/internal/core/library"
	"github.com/booruoss/booru/internal/core/post"
)

// SyncResult reports the outcome of one library synchronization pass
// (§4.2 step 9).
type SyncResult struct {
	FilesScanned   int
	Added          int
	Updated        int
	Moved          int
	OrphansRemoved int
	Excluded       int
	Ignored        int
	TagsInherited  int
	Errors         []error
}

// Synchronizer reconciles a library's on-disk state with its catalog rows,
// per the nine-step algorithm of §4.2: enumerate, snapshot, scan, flush,
// resolve moves, apply updates/moves, inherit tags, remove orphans, report.
type Synchronizer struct {
	posts     post.Repository
	excluded  excludedfile.Repository
	logger    *slog.Logger
	workers   int
}

func NewSynchronizer(posts post.Repository, excluded excludedfile.Repository, logger *slog.Logger, workers int) *Synchronizer {
	if workers < 1 {
		workers = 1
	}
	return &Synchronizer{posts: posts, excluded: excluded, logger: logger, workers: workers}
}

// Sync runs one full synchronization pass for lib.
func (s *Synchronizer) Sync(ctx context.Context, lib *library.Library) (*SyncResult, error) {
	start := time.Now()
	result := &SyncResult{}

	// Step 2: snapshot existing state.
	existing, err := s.posts.SnapshotExisting(ctx, lib.ID)
	if err != nil {
		return nil, err
	}
	existingByRelPath := make(map[string]post.ExistingInfo, len(existing))
	existingByIdentity := make(map[string]post.ExistingInfo, len(existing))
	for _, e := range existing {
		existingByRelPath[e.RelativePath] = e
		if e.FileIdentityDevice != nil && e.FileIdentityValue != nil {
			existingByIdentity[identityKey(*e.FileIdentityDevice, *e.FileIdentityValue)] = e
		}
	}

	excludedRows, err := s.excluded.ListByLibrary(ctx, lib.ID)
	if err != nil {
		return nil, err
	}
	excludedByRelPath := make(map[string]*excludedfile.ExcludedFile, len(excludedRows))
	for _, e := range excludedRows {
		excludedByRelPath[e.RelativePath] = e
	}

	// Step 1+3: enumerate and scan, bounded by s.workers (fan-out/fan-in
	// over the library root).
	scanned, ignored, scanErrs := Scan(lib.Path, lib, s.workers)
	result.FilesScanned = len(scanned)
	result.Ignored = ignored
	result.Errors = append(result.Errors, scanErrs...)

	seenRelPaths := make(map[string]bool, len(scanned))
	movedOldRelPaths := make(map[string]bool)

	pipeline := NewPipeline(s.posts)
	var updates []post.UpdateFields
	var moves []post.MoveFields
	var newlyInsertedContentHashByIndex []string
	var newlyInsertedRelPathByIndex []string

	for _, f := range scanned {
		seenRelPaths[f.RelativePath] = true

		if exc, ok := excludedByRelPath[f.RelativePath]; ok {
			hash, err := HashFile(f.AbsolutePath)
			if err == nil && hash == exc.ContentHash {
				result.Excluded++
				continue
			}
		}

		if existingInfo, ok := existingByRelPath[f.RelativePath]; ok {
			if existingInfo.SizeBytes == f.Size && existingInfo.FileModifiedUnix == f.ModTime.Unix() {
				continue
			}

			hash, err := HashFile(f.AbsolutePath)
			if err != nil {
				result.Errors = append(result.Errors, err)
				continue
			}
			device, value := identityStrings(f)
			updates = append(updates, post.UpdateFields{
				PostID:             existingInfo.ID,
				SizeBytes:          f.Size,
				FileModifiedDate:   f.ModTime.Unix(),
				ContentHash:        hash,
				FileIdentityDevice: device,
				FileIdentityValue:  value,
				ResetDerived:       hash != existingInfo.ContentHash,
			})
			continue
		}

		// Step 5 (partial): a file at a new relative path may be a moved
		// sibling if its device/inode identity matches an existing row.
		if f.HasIdentity {
			key := identityKey(f.Identity.Device, f.Identity.Inode)
			if existingInfo, ok := existingByIdentity[key]; ok && existingInfo.RelativePath != f.RelativePath {
				contentType, _ := ContentTypeForPath(f.RelativePath)
				moves = append(moves, post.MoveFields{
					PostID:             existingInfo.ID,
					NewRelativePath:    f.RelativePath,
					SizeBytes:          f.Size,
					FileModifiedDate:   f.ModTime.Unix(),
					ContentHash:        existingInfo.ContentHash,
					ContentType:        contentType,
					FileIdentityDevice: &f.Identity.Device,
					FileIdentityValue:  &f.Identity.Inode,
				})
				// The old relative path no longer exists on disk under its
				// former name, but it was accounted for by this move, not
				// abandoned — step 8 must not count it as an orphan.
				movedOldRelPaths[existingInfo.RelativePath] = true
				continue
			}
		}

		hash, err := HashFile(f.AbsolutePath)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		device, value := identityStrings(f)
		np := &post.Post{
			LibraryID:          lib.ID,
			RelativePath:       f.RelativePath,
			ContentHash:        hash,
			SizeBytes:          f.Size,
			FileModifiedDate:   f.ModTime,
			FileIdentityDevice: device,
			FileIdentityValue:  value,
		}
		if err := pipeline.Enqueue(ctx, np); err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		newlyInsertedContentHashByIndex = append(newlyInsertedContentHashByIndex, hash)
		newlyInsertedRelPathByIndex = append(newlyInsertedRelPathByIndex, f.RelativePath)
	}

	// Step 4: flush the ingestion pipeline.
	if err := pipeline.Close(ctx); err != nil {
		return nil, err
	}
	insertedIDs := pipeline.InsertedIDs()
	result.Added = len(insertedIDs)

	// Step 6: apply updates and moves transactionally.
	if err := s.posts.ApplyUpdates(ctx, updates); err != nil {
		return nil, err
	}
	result.Updated = len(updates)

	if err := s.posts.ApplyMoves(ctx, moves); err != nil {
		return nil, err
	}
	result.Moved = len(moves)

	// Step 7: copy inherited tags for newly ingested posts (§4.3).
	for i, postID := range insertedIDs {
		if i >= len(newlyInsertedContentHashByIndex) {
			break
		}
		copied, err := s.inheritTags(ctx, lib.ID, postID, newlyInsertedContentHashByIndex[i])
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		result.TagsInherited += copied
	}

	// Step 8: remove orphans — rows whose relative path was not seen
	// during this scan — in batches of 100.
	orphans := make([]string, 0)
	for relPath := range existingByRelPath {
		if !seenRelPaths[relPath] && !movedOldRelPaths[relPath] {
			orphans = append(orphans, relPath)
		}
	}
	if err := s.removeOrphansInBatches(ctx, lib.ID, orphans); err != nil {
		return nil, err
	}
	result.OrphansRemoved = len(orphans)

	s.logger.InfoContext(ctx, "library_synced",
		slog.Int("library_id", lib.ID),
		slog.Int("added", result.Added),
		slog.Int("updated", result.Updated),
		slog.Int("moved", result.Moved),
		slog.Int("orphans_removed", result.OrphansRemoved),
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func (s *Synchronizer) inheritTags(ctx context.Context, libraryID, postID int, contentHash string) (int, error) {
	assignments, err := s.posts.ListTaggedByContentHash(ctx, libraryID, contentHash, postID)
	if err != nil {
		return 0, err
	}
	if len(assignments) == 0 {
		return 0, nil
	}
	if err := s.posts.CopyTagAssignments(ctx, postID, assignments); err != nil {
		return 0, err
	}
	return len(assignments), nil
}

func (s *Synchronizer) removeOrphansInBatches(ctx context.Context, libraryID int, relativePaths []string) error {
	const batchSize = 100
	for start := 0; start < len(relativePaths); start += batchSize {
		end := start + batchSize
		if end > len(relativePaths) {
			end = len(relativePaths)
		}
		if err := s.posts.DeleteOrphans(ctx, libraryID, relativePaths[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func identityKey(device, value string) string {
	return device + ":" + value
}

func identityStrings(f ScannedFile) (*string, *string) {
	if !f.HasIdentity {
		return nil, nil
	}
	device := f.Identity.Device
	value := f.Identity.Inode
	return &device, &value
}
