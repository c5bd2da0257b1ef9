package jobs

import (
	"fmt"
)

// scanAllLibraries implements §4.6.1: run the library synchronizer against
// every configured library, weighting per-library progress into one 0-100
// bar, and report aggregate totals.
func (d Dependencies) scanAllLibraries(jobCtx *Context) (string, error) {
	libs, err := d.Libraries.List(jobCtx)
	if err != nil {
		return "", err
	}

	var scanned, added, updated, moved, removed int
	var failures int

	for i, lib := range libs {
		select {
		case <-jobCtx.Done():
			return fmt.Sprintf("cancelled after %d/%d libraries", i, len(libs)), jobCtx.Err()
		default:
		}

		jobCtx.Reporter.Update(State{
			ActivityText:    fmt.Sprintf("scanning %s", lib.Name),
			ProgressCurrent: intPtr(i),
			ProgressTotal:   intPtr(len(libs)),
		})

		result, err := d.Synchronizer.Sync(jobCtx, lib)
		if err != nil {
			failures++
			d.Logger.Error("library_sync_failed", "library_id", lib.ID, "error", err)
			continue
		}

		scanned += result.FilesScanned
		added += result.Added
		updated += result.Updated
		moved += result.Moved
		removed += result.OrphansRemoved
	}

	jobCtx.Reporter.Update(State{
		ActivityText:    "done",
		ProgressCurrent: intPtr(len(libs)),
		ProgressTotal:   intPtr(len(libs)),
	})

	summary := fmt.Sprintf("scanned=%d added=%d updated=%d moved=%d removed=%d libraries_failed=%d",
		scanned, added, updated, moved, removed, failures)
	return summary, nil
}
