package jobs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/booruoss/booru/internal/media"
)

// cleanupOrphanedThumbnails implements §4.6.5: compute the set of
// thumbnail paths that should exist (one per distinct (libraryId,
// contentHash) pair) and delete any file under the thumbnail root that
// isn't in that set.
func (d Dependencies) cleanupOrphanedThumbnails(jobCtx *Context) (string, error) {
	byLibrary, err := d.Posts.ListDistinctLibraryContentHashes(jobCtx)
	if err != nil {
		return "", err
	}

	required := make(map[string]bool)
	for libraryID, hashes := range byLibrary {
		for _, hash := range hashes {
			required[media.ThumbnailPath(d.ThumbnailRoot, libraryID, hash)] = true
		}
	}

	var deleted, failed, scanned int
	walkErr := filepath.WalkDir(d.ThumbnailRoot, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			failed++
			return nil
		}
		if entry.IsDir() {
			return nil
		}

		select {
		case <-jobCtx.Done():
			return jobCtx.Err()
		default:
		}

		scanned++
		if !required[path] {
			if err := os.Remove(path); err != nil {
				failed++
			} else {
				deleted++
			}
		}
		if scanned%500 == 0 {
			jobCtx.Reporter.Update(State{ActivityText: "cleaning orphaned thumbnails", ProgressCurrent: intPtr(scanned)})
		}
		return nil
	})
	if walkErr != nil && walkErr != jobCtx.Err() {
		return "", walkErr
	}

	return fmt.Sprintf("scanned=%d deleted=%d failed=%d", scanned, deleted, failed), nil
}
