package jobs

import (
	"fmt"
	"sync"

	"github.com/booruoss/booru/internal/core/post"
	"github.com/booruoss/booru/internal/media"
	"github.com/booruoss/booru/internal/platform/safepath"
)

const metadataBatchSize = 100

// extractMetadata implements §4.6.2: batch over posts missing (or, in All
// mode, every) width/contentType, resolving dimensions with a bounded
// worker pool and writing results back per batch.
func (d Dependencies) extractMetadata(jobCtx *Context) (string, error) {
	all := jobCtx.Mode == ModeAll
	libPaths, err := d.libraryPaths(jobCtx)
	if err != nil {
		return "", err
	}

	var processed, failed int
	offset := 0

	for {
		select {
		case <-jobCtx.Done():
			return fmt.Sprintf("cancelled after %d processed", processed), jobCtx.Err()
		default:
		}

		batch, err := d.Posts.ListNeedingMetadata(jobCtx, all, metadataBatchSize, offset)
		if err != nil {
			return "", err
		}
		if len(batch) == 0 {
			break
		}

		results := d.extractBatch(jobCtx, batch, libPaths, &failed)

		if err := d.Posts.WriteMetadataBatch(jobCtx, results); err != nil {
			return "", err
		}

		processed += len(batch)
		offset += metadataBatchSize
		jobCtx.Reporter.Update(State{
			ActivityText:    "extracting metadata",
			ProgressCurrent: intPtr(processed),
		})
	}

	return fmt.Sprintf("processed=%d failed=%d", processed, failed), nil
}

func (d Dependencies) extractBatch(jobCtx *Context, batch []*post.Post, libPaths map[int]string, failed *int) []post.MetadataFields {
	work := make(chan *post.Post, len(batch))
	for _, p := range batch {
		work <- p
	}
	close(work)

	results := make([]post.MetadataFields, 0, len(batch))
	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := d.MetadataParallelism
	if workers < 1 {
		workers = 1
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range work {
				root, ok := libPaths[p.LibraryID]
				if !ok {
					mu.Lock()
					*failed++
					mu.Unlock()
					continue
				}
				abs, err := safepath.Resolve(root, p.RelativePath)
				if err != nil {
					mu.Lock()
					*failed++
					mu.Unlock()
					continue
				}
				dims, err := media.ExtractDimensions(abs)
				if err != nil {
					mu.Lock()
					*failed++
					mu.Unlock()
					continue
				}
				mu.Lock()
				results = append(results, post.MetadataFields{
					PostID: p.ID, Width: dims.Width, Height: dims.Height, ContentType: dims.ContentType,
				})
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return results
}

// libraryPaths loads every library's root path once per job invocation,
// avoiding a repository round trip per post.
func (d Dependencies) libraryPaths(jobCtx *Context) (map[int]string, error) {
	libs, err := d.Libraries.List(jobCtx)
	if err != nil {
		return nil, err
	}
	paths := make(map[int]string, len(libs))
	for _, lib := range libs {
		paths[lib.ID] = lib.Path
	}
	return paths, nil
}
