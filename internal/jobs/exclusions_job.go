package jobs

import (
	"fmt"
	"os"

	"github.com/booruoss/booru/internal/ingest"
	"github.com/booruoss/booru/internal/platform/safepath"
)

const exclusionsBatchSize = 500

// cleanupInvalidExclusions implements §4.6.9: for each excluded file,
// remove the exclusion once the file is gone or its content has changed,
// applying removals in batches of 500 per library.
func (d Dependencies) cleanupInvalidExclusions(jobCtx *Context) (string, error) {
	libs, err := d.Libraries.List(jobCtx)
	if err != nil {
		return "", err
	}

	var checked, removed int

	for _, lib := range libs {
		select {
		case <-jobCtx.Done():
			return fmt.Sprintf("cancelled after checking %d", checked), jobCtx.Err()
		default:
		}

		excluded, err := d.Excluded.ListByLibrary(jobCtx, lib.ID)
		if err != nil {
			return "", err
		}

		var stale []int
		for _, e := range excluded {
			checked++

			abs, err := safepath.Resolve(lib.Path, e.RelativePath)
			if err != nil {
				stale = append(stale, e.ID)
				continue
			}

			if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
				stale = append(stale, e.ID)
				continue
			}

			hash, err := ingest.HashFile(abs)
			if err != nil || hash != e.ContentHash {
				stale = append(stale, e.ID)
			}
		}

		for start := 0; start < len(stale); start += exclusionsBatchSize {
			end := start + exclusionsBatchSize
			if end > len(stale) {
				end = len(stale)
			}
			if err := d.Excluded.DeleteStale(jobCtx, lib.ID, stale[start:end]); err != nil {
				return "", err
			}
		}
		removed += len(stale)

		jobCtx.Reporter.Update(State{ActivityText: "cleaning invalid exclusions", ProgressCurrent: intPtr(checked)})
	}

	return fmt.Sprintf("checked=%d removed=%d", checked, removed), nil
}
