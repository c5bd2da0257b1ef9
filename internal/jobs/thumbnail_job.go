package jobs

import (
	"fmt"
	"os"
	"sync"

	"github.com/booruoss/booru/internal/core/post"
	"github.com/booruoss/booru/internal/media"
	"github.com/booruoss/booru/internal/platform/safepath"
)

const thumbnailBatchSize = 100

// generateThumbnails implements §4.6.4: derive each post's deterministic
// thumbnail path from (libraryId, contentHash), skip existing files in
// Missing mode, and generate the rest with bounded parallelism.
func (d Dependencies) generateThumbnails(jobCtx *Context) (string, error) {
	missing := jobCtx.Mode != ModeAll
	libPaths, err := d.libraryPaths(jobCtx)
	if err != nil {
		return "", err
	}

	var processed, generated, skipped, failed int
	offset := 0

	for {
		select {
		case <-jobCtx.Done():
			return fmt.Sprintf("cancelled after %d processed", processed), jobCtx.Err()
		default:
		}

		batch, err := d.Posts.ListForThumbnails(jobCtx, !missing, thumbnailBatchSize, offset)
		if err != nil {
			return "", err
		}
		if len(batch) == 0 {
			break
		}

		g, s, f := d.generateBatch(batch, libPaths, missing)
		generated += g
		skipped += s
		failed += f

		processed += len(batch)
		offset += thumbnailBatchSize
		jobCtx.Reporter.Update(State{
			ActivityText:    "generating thumbnails",
			ProgressCurrent: intPtr(processed),
		})
	}

	return fmt.Sprintf("generated=%d skipped=%d failed=%d", generated, skipped, failed), nil
}

func (d Dependencies) generateBatch(batch []*post.Post, libPaths map[int]string, missing bool) (generated, skipped, failed int) {
	work := make(chan *post.Post, len(batch))
	for _, p := range batch {
		work <- p
	}
	close(work)

	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := d.ThumbnailParallelism
	if workers < 1 {
		workers = 1
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range work {
				dst := media.ThumbnailPath(d.ThumbnailRoot, p.LibraryID, p.ContentHash)

				if missing {
					if _, err := os.Stat(dst); err == nil {
						mu.Lock()
						skipped++
						mu.Unlock()
						continue
					}
				}

				root, ok := libPaths[p.LibraryID]
				if !ok {
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}
				src, err := safepath.Resolve(root, p.RelativePath)
				if err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}

				maxDim := d.ThumbnailMaxDim
				if maxDim == 0 {
					maxDim = 400
				}
				if err := media.GenerateThumbnail(src, dst, maxDim); err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}
				mu.Lock()
				generated++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return generated, skipped, failed
}
