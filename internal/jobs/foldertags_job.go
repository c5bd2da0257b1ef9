package jobs

import (
	"fmt"

	"github.com/booruoss/booru/internal/core/post"
	"github.com/booruoss/booru/internal/core/tag"
	"github.com/booruoss/booru/internal/ingest"
	"github.com/booruoss/booru/internal/platform/apperr"
)

const folderTagsBatchSize = 500

// applyFolderTags implements §4.6.6: for each post, derive its folder-tag
// names from relativePath and reconcile the post's source=folder tag set
// to match, materializing Tag rows as needed.
func (d Dependencies) applyFolderTags(jobCtx *Context) (string, error) {
	var processed, added, removed, failed int
	afterID := 0

	for {
		select {
		case <-jobCtx.Done():
			return fmt.Sprintf("cancelled after %d processed", processed), jobCtx.Err()
		default:
		}

		batch, err := d.Posts.ListFolderTagBatch(jobCtx, afterID, folderTagsBatchSize)
		if err != nil {
			return "", err
		}
		if len(batch) == 0 {
			break
		}

		for _, p := range batch {
			a, r, err := d.applyFolderTagsToPost(jobCtx, p)
			if err != nil {
				failed++
				d.Logger.Error("apply_folder_tags_failed", "post_id", p.ID, "error", err)
				continue
			}
			added += a
			removed += r
		}

		processed += len(batch)
		afterID = batch[len(batch)-1].ID
		jobCtx.Reporter.Update(State{ActivityText: "applying folder tags", ProgressCurrent: intPtr(processed)})
	}

	return fmt.Sprintf("processed=%d tags_added=%d tags_removed=%d failed=%d", processed, added, removed, failed), nil
}

func (d Dependencies) applyFolderTagsToPost(jobCtx *Context, p *post.Post) (added, removed int, err error) {
	names := ingest.DeriveFolderTagNames(p.RelativePath)

	tagIDs := make([]int, 0, len(names))
	for _, name := range names {
		t, err := d.Tags.GetByName(jobCtx, name)
		if err != nil {
			if !apperr.IsNotFound(err) {
				return 0, 0, err
			}
			t, err = d.Tags.Create(jobCtx, name, nil)
			if err != nil {
				return 0, 0, err
			}
		}
		tagIDs = append(tagIDs, t.ID)
	}

	return d.Posts.ReplaceFolderTags(jobCtx, p.ID, tagIDs)
}
