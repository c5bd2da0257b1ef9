package duplicate

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/booruoss/booru/internal/core/excludedfile"
	"github.com/booruoss/booru/internal/core/library"
	"github.com/booruoss/booru/internal/core/post"
	"github.com/booruoss/booru/internal/platform/apperr"
	"github.com/booruoss/booru/internal/platform/postgres"
	"github.com/booruoss/booru/internal/platform/safepath"
)

// Resolver implements the duplicate-resolution operations (§4.7). It
// depends on the post repository directly (not post.Service) so it can
// drive multi-step merges without forcing every Service method to exist
// for this one consumer.
type Resolver struct {
	groups    Repository
	posts     post.Repository
	libraries library.Repository
	excluded  excludedfile.Repository
	db        postgres.Beginner
	logger    *slog.Logger
}

func NewResolver(groups Repository, posts post.Repository, libraries library.Repository, excluded excludedfile.Repository, db postgres.Beginner, logger *slog.Logger) *Resolver {
	return &Resolver{groups: groups, posts: posts, libraries: libraries, excluded: excluded, db: db, logger: logger}
}

// runInTx wraps fn in a single transaction spanning every repository call it
// makes (§4.7.1: "all in a single transaction"; §7: "either fully applied or
// fully rolled back — one transaction per resolution").
func (r *Resolver) runInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return postgres.RunInTx(ctx, r.db, fn)
}

// Get returns a single group by ID.
func (r *Resolver) Get(ctx context.Context, groupID int) (*Group, error) {
	return r.groups.Get(ctx, groupID)
}

// List returns groups matching the given optional resolved/type filters.
func (r *Resolver) List(ctx context.Context, resolved *bool, groupType *GroupType) ([]*Group, error) {
	return r.groups.List(ctx, resolved, groupType)
}

// KeepOne keeps keepPostID, merging its siblings' tags and sources into it,
// recording each removed post as an ExcludedFile (by content hash, so a
// rescan does not reimport it), then deletes the sibling posts and the
// group (§4.7.1).
func (r *Resolver) KeepOne(ctx context.Context, groupID, keepPostID int) error {
	group, err := r.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}

	keep, err := r.posts.Get(ctx, keepPostID)
	if err != nil {
		return err
	}

	var mergeTags []post.TagAssignment
	var mergeSources []post.Source
	removed := make([]*post.Post, 0, len(group.Entries)-1)

	for _, e := range group.Entries {
		if e.PostID == keepPostID {
			continue
		}
		p, err := r.posts.Get(ctx, e.PostID)
		if err != nil {
			return err
		}
		for _, t := range p.Tags {
			if !keep.HasTagFromSource(t.TagID, t.Source) {
				mergeTags = append(mergeTags, t)
			}
		}
		mergeSources = append(mergeSources, p.Sources...)
		removed = append(removed, p)
	}

	return r.runInTx(ctx, func(ctx context.Context) error {
		if len(mergeTags) > 0 || len(mergeSources) > 0 {
			if err := r.posts.MergeTagsAndSources(ctx, keepPostID, mergeTags, mergeSources); err != nil {
				return err
			}
		}

		for _, p := range removed {
			if _, err := r.excluded.Create(ctx, &excludedfile.ExcludedFile{
				LibraryID:    p.LibraryID,
				RelativePath: p.RelativePath,
				ContentHash:  p.ContentHash,
				Reason:       excludedfile.ReasonDuplicateResolution,
			}); err != nil {
				return err
			}
			if err := r.posts.Delete(ctx, p.ID); err != nil {
				return err
			}
		}

		return r.groups.Delete(ctx, groupID)
	})
}

// ExcludeOne drops one post from a group without deleting it, reconciling
// the group afterward per §4.7.2's invariant: groups with fewer than 2
// entries cannot remain unresolved.
func (r *Resolver) ExcludeOne(ctx context.Context, groupID, postID int) error {
	count, err := r.groups.CountEntries(ctx, groupID)
	if err != nil {
		return err
	}
	if count < 2 {
		return apperr.ValidationError("group must have at least two entries to exclude one")
	}

	return r.runInTx(ctx, func(ctx context.Context) error {
		if err := r.groups.RemoveEntry(ctx, groupID, postID); err != nil {
			return err
		}
		return r.reconcile(ctx, groupID)
	})
}

// DeleteOneWithFile requires postID to have at least one same-folder peer
// remaining in the group (§4.7.3's safety rule), deletes the underlying
// file via a safe-subpath-bounded resolver, then removes the post row and
// reconciles the group.
func (r *Resolver) DeleteOneWithFile(ctx context.Context, groupID, postID int) error {
	group, err := r.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}

	target, err := r.posts.Get(ctx, postID)
	if err != nil {
		return err
	}

	hasSameFolderPeer := false
	for _, e := range group.Entries {
		if e.PostID == postID {
			continue
		}
		peer, err := r.posts.Get(ctx, e.PostID)
		if err != nil {
			return err
		}
		if peer.LibraryID == target.LibraryID && folderOf(peer.RelativePath) == folderOf(target.RelativePath) {
			hasSameFolderPeer = true
			break
		}
	}
	if !hasSameFolderPeer {
		return apperr.ValidationError("deleting a post requires a same-folder peer in the group")
	}

	lib, err := r.libraries.Get(ctx, target.LibraryID)
	if err != nil {
		return err
	}

	absPath, err := safepath.Resolve(lib.Path, target.RelativePath)
	if err != nil {
		return apperr.ValidationError(err.Error())
	}
	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return apperr.Internal(err)
	}

	return r.runInTx(ctx, func(ctx context.Context) error {
		if err := r.posts.Delete(ctx, postID); err != nil {
			return err
		}
		return r.reconcile(ctx, groupID)
	})
}

// ResolveSameFolderGroup auto-resolves a group whose entries all share one
// folder, keeping the best-quality survivor: largest width×height, then
// largest size, then most recently modified, then highest ID (§4.7.4).
func (r *Resolver) ResolveSameFolderGroup(ctx context.Context, groupID int) error {
	group, err := r.groups.Get(ctx, groupID)
	if err != nil {
		return err
	}

	posts := make([]*post.Post, 0, len(group.Entries))
	for _, e := range group.Entries {
		p, err := r.posts.Get(ctx, e.PostID)
		if err != nil {
			return err
		}
		posts = append(posts, p)
	}
	if !allSameFolder(posts) {
		return apperr.ValidationError("group entries do not share a folder")
	}

	survivor := bestQuality(posts)
	return r.KeepOne(ctx, groupID, survivor.ID)
}

// ResolveAllExact resolves every unresolved exact-type group by keeping the
// best-quality survivor, §4.7.4 ordering (§4.7.5).
func (r *Resolver) ResolveAllExact(ctx context.Context) (int, error) {
	t := TypeExact
	resolved := false
	groups, err := r.groups.List(ctx, &resolved, &t)
	if err != nil {
		return 0, err
	}
	return r.resolveEachByBestQuality(ctx, groups)
}

// ResolveAll resolves every unresolved group regardless of type.
func (r *Resolver) ResolveAll(ctx context.Context) (int, error) {
	resolved := false
	groups, err := r.groups.List(ctx, &resolved, nil)
	if err != nil {
		return 0, err
	}
	return r.resolveEachByBestQuality(ctx, groups)
}

// ResolveAllSameFolder resolves every unresolved group whose entries share
// one folder. When exactOnly is true, only exact-type groups are considered.
func (r *Resolver) ResolveAllSameFolder(ctx context.Context, exactOnly bool) (int, error) {
	resolved := false
	var t *GroupType
	if exactOnly {
		v := TypeExact
		t = &v
	}
	groups, err := r.groups.List(ctx, &resolved, t)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, g := range groups {
		posts := make([]*post.Post, 0, len(g.Entries))
		ok := true
		for _, e := range g.Entries {
			p, err := r.posts.Get(ctx, e.PostID)
			if err != nil {
				return count, err
			}
			posts = append(posts, p)
		}
		if !allSameFolder(posts) {
			ok = false
		}
		if !ok {
			continue
		}
		if err := r.ResolveSameFolderGroup(ctx, g.ID); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// KeepAll marks a group resolved without removing any post.
func (r *Resolver) KeepAll(ctx context.Context, groupID int) error {
	return r.groups.MarkResolved(ctx, groupID, true)
}

// MarkUnresolved reverts a single group to the unresolved state.
func (r *Resolver) MarkUnresolved(ctx context.Context, groupID int) error {
	return r.groups.MarkResolved(ctx, groupID, false)
}

// MarkAllUnresolved reverts every group to the unresolved state.
func (r *Resolver) MarkAllUnresolved(ctx context.Context) error {
	return r.groups.MarkAllUnresolved(ctx)
}

func (r *Resolver) resolveEachByBestQuality(ctx context.Context, groups []*Group) (int, error) {
	count := 0
	for _, g := range groups {
		if len(g.Entries) == 0 {
			continue
		}
		posts := make([]*post.Post, 0, len(g.Entries))
		for _, e := range g.Entries {
			p, err := r.posts.Get(ctx, e.PostID)
			if err != nil {
				return count, err
			}
			posts = append(posts, p)
		}
		survivor := bestQuality(posts)
		if err := r.KeepOne(ctx, g.ID, survivor.ID); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (r *Resolver) reconcile(ctx context.Context, groupID int) error {
	deleted, err := r.groups.DeleteIfEmpty(ctx, groupID)
	if err != nil {
		return err
	}
	if deleted {
		return nil
	}

	count, err := r.groups.CountEntries(ctx, groupID)
	if err != nil {
		return err
	}
	if count < 2 {
		return r.groups.MarkResolved(ctx, groupID, true)
	}
	return nil
}

func folderOf(relativePath string) string {
	idx := strings.LastIndex(relativePath, "/")
	if idx < 0 {
		return ""
	}
	return relativePath[:idx]
}

func allSameFolder(posts []*post.Post) bool {
	if len(posts) == 0 {
		return true
	}
	libID := posts[0].LibraryID
	folder := folderOf(posts[0].RelativePath)
	for _, p := range posts[1:] {
		if p.LibraryID != libID || folderOf(p.RelativePath) != folder {
			return false
		}
	}
	return true
}

func bestQuality(posts []*post.Post) *post.Post {
	sorted := make([]*post.Post, len(posts))
	copy(sorted, posts)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Width*a.Height != b.Width*b.Height {
			return a.Width*a.Height > b.Width*b.Height
		}
		if a.SizeBytes != b.SizeBytes {
			return a.SizeBytes > b.SizeBytes
		}
		if !a.FileModifiedDate.Equal(b.FileModifiedDate) {
			return a.FileModifiedDate.After(b.FileModifiedDate)
		}
		return a.ID > b.ID
	})
	return sorted[0]
}
