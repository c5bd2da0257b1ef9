package jobs

import "fmt"

// sanitizeTagNames implements §4.6.7 by delegating the merge pass to the
// tag service, which already owns the sanitize/merge/recount logic.
func (d Dependencies) sanitizeTagNames(jobCtx *Context) (string, error) {
	jobCtx.Reporter.Update(State{ActivityText: "merging duplicate tag names"})

	groupsMerged, tagsRenamed, tagsRemoved, err := d.Tags.SanitizeAll(jobCtx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("groups_merged=%d tags_renamed=%d tags_removed=%d", groupsMerged, tagsRenamed, tagsRemoved), nil
}
