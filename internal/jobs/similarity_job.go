package jobs

import (
	"fmt"
	"sync"

	"github.com/booruoss/booru/internal/core/post"
	"github.com/booruoss/booru/internal/media"
	"github.com/booruoss/booru/internal/platform/safepath"
)

const similarityBatchSize = 100

// computeSimilarity implements §4.6.3: for every image post (missing or
// all, per mode), compute a PDQ-256 perceptual hash with bounded
// parallelism and write it back.
func (d Dependencies) computeSimilarity(jobCtx *Context) (string, error) {
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

		batch, err := d.Posts.ListNeedingSimilarity(jobCtx, all, similarityBatchSize, offset)
		if err != nil {
			return "", err
		}
		if len(batch) == 0 {
			break
		}

		d.hashBatch(jobCtx, batch, libPaths, &failed)

		processed += len(batch)
		offset += similarityBatchSize
		jobCtx.Reporter.Update(State{
			ActivityText:    "computing similarity hashes",
			ProgressCurrent: intPtr(processed),
		})
	}

	return fmt.Sprintf("processed=%d failed=%d", processed, failed), nil
}

func (d Dependencies) hashBatch(jobCtx *Context, batch []*post.Post, libPaths map[int]string, failed *int) {
	work := make(chan *post.Post, len(batch))
	for _, p := range batch {
		work <- p
	}
	close(work)

	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := d.SimilarityParallelism
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
				hash, err := media.ComputePDQHash(abs)
				if err != nil {
					mu.Lock()
					*failed++
					mu.Unlock()
					continue
				}
				if err := d.Posts.WriteSimilarityHash(jobCtx, p.ID, hash); err != nil {
					mu.Lock()
					*failed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
}
