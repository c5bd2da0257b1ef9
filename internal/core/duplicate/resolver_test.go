package duplicate

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/booruoss/booru/internal/core/excludedfile"
	"github.com/booruoss/booru/internal/core/library"
	"github.com/booruoss/booru/internal/core/post"
)

// fakeTx is a minimal pgx.Tx for tests: only Commit/Rollback are ever
// invoked, since the fake repositories in this file ignore the ambient
// transaction in ctx entirely and do their own in-memory bookkeeping.
type fakeTx struct {
	pgx.Tx
}

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

type fakeBeginner struct{}

func (fakeBeginner) Begin(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

// fakePosts is a minimal in-memory post.Repository covering only what the
// resolver touches; every other method panics if called so an accidental
// new dependency fails loudly instead of silently returning zero values.
type fakePosts struct {
	byID map[int]*post.Post
}

func newFakePosts(posts ...*post.Post) *fakePosts {
	f := &fakePosts{byID: map[int]*post.Post{}}
	for _, p := range posts {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakePosts) Get(_ context.Context, id int) (*post.Post, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (f *fakePosts) Delete(_ context.Context, id int) error {
	delete(f.byID, id)
	return nil
}

func (f *fakePosts) MergeTagsAndSources(_ context.Context, keepPostID int, tags []post.TagAssignment, sources []post.Source) error {
	p := f.byID[keepPostID]
	p.Tags = append(p.Tags, tags...)
	p.Sources = append(p.Sources, sources...)
	return nil
}

func (f *fakePosts) SnapshotExisting(context.Context, int) ([]post.ExistingInfo, error) { panic("unused") }
func (f *fakePosts) InsertBatch(context.Context, []*post.Post) ([]int, error)           { panic("unused") }
func (f *fakePosts) ApplyUpdates(context.Context, []post.UpdateFields) error            { panic("unused") }
func (f *fakePosts) ApplyMoves(context.Context, []post.MoveFields) error                { panic("unused") }
func (f *fakePosts) DeleteOrphans(context.Context, int, []string) error                 { panic("unused") }
func (f *fakePosts) ListTaggedByContentHash(context.Context, int, string, int) ([]post.TagAssignment, error) {
	panic("unused")
}
func (f *fakePosts) CopyTagAssignments(context.Context, int, []post.TagAssignment) error { panic("unused") }
func (f *fakePosts) ListNeedingMetadata(context.Context, bool, int, int) ([]*post.Post, error) {
	panic("unused")
}
func (f *fakePosts) WriteMetadataBatch(context.Context, []post.MetadataFields) error { panic("unused") }
func (f *fakePosts) ListNeedingSimilarity(context.Context, bool, int, int) ([]*post.Post, error) {
	panic("unused")
}
func (f *fakePosts) WriteSimilarityHash(context.Context, int, string) error { panic("unused") }
func (f *fakePosts) ListForThumbnails(context.Context, bool, int, int) ([]*post.Post, error) {
	panic("unused")
}
func (f *fakePosts) ListDistinctLibraryContentHashes(context.Context) (map[int][]string, error) {
	panic("unused")
}
func (f *fakePosts) ListFolderTagBatch(context.Context, int, int) ([]*post.Post, error) { panic("unused") }
func (f *fakePosts) ReplaceFolderTags(context.Context, int, []int) (int, int, error)    { panic("unused") }
func (f *fakePosts) ListDuplicateSignatures(context.Context) ([]post.DuplicateSignature, error) {
	panic("unused")
}
func (f *fakePosts) GetByRelativePath(context.Context, int, string) (*post.Post, error) { panic("unused") }
func (f *fakePosts) ListByIDs(_ context.Context, ids []int) ([]*post.Post, error) {
	out := make([]*post.Post, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.byID[id])
	}
	return out, nil
}

// fakeGroups is a minimal in-memory duplicate.Repository.
type fakeGroups struct {
	byID map[int]*Group
}

func newFakeGroups(groups ...*Group) *fakeGroups {
	f := &fakeGroups{byID: map[int]*Group{}}
	for _, g := range groups {
		f.byID[g.ID] = g
	}
	return f
}

func (f *fakeGroups) Get(_ context.Context, id int) (*Group, error) {
	g, ok := f.byID[id]
	if !ok {
		return nil, errNotFound
	}
	return g, nil
}

func (f *fakeGroups) List(_ context.Context, resolved *bool, groupType *GroupType) ([]*Group, error) {
	var out []*Group
	for _, g := range f.byID {
		if resolved != nil && g.IsResolved != *resolved {
			continue
		}
		if groupType != nil && g.Type != *groupType {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeGroups) Delete(_ context.Context, id int) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeGroups) CreateGroup(_ context.Context, g *Group) (*Group, error) {
	f.byID[g.ID] = g
	return g, nil
}

func (f *fakeGroups) RemoveEntry(_ context.Context, groupID, postID int) error {
	g := f.byID[groupID]
	for i, e := range g.Entries {
		if e.PostID == postID {
			g.Entries = append(g.Entries[:i], g.Entries[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeGroups) CountEntries(_ context.Context, groupID int) (int, error) {
	g, ok := f.byID[groupID]
	if !ok {
		return 0, nil
	}
	return len(g.Entries), nil
}

func (f *fakeGroups) MarkResolved(_ context.Context, groupID int, resolved bool) error {
	if g, ok := f.byID[groupID]; ok {
		g.IsResolved = resolved
	}
	return nil
}

func (f *fakeGroups) DeleteIfEmpty(_ context.Context, groupID int) (bool, error) {
	g, ok := f.byID[groupID]
	if !ok || len(g.Entries) >= 2 {
		return false, nil
	}
	delete(f.byID, groupID)
	return true, nil
}

func (f *fakeGroups) MarkAllUnresolved(_ context.Context) error {
	for _, g := range f.byID {
		g.IsResolved = false
	}
	return nil
}

type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var errNotFound = notFoundError{}

func newResolver(posts *fakePosts, groups *fakeGroups) *Resolver {
	return NewResolver(groups, posts, library.Repository(nil), excludedfile.Repository(nil), fakeBeginner{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestResolver_KeepOne_MergesAndDeletesSiblings(t *testing.T) {
	keep := &post.Post{ID: 1, LibraryID: 1, RelativePath: "a.jpg", ContentHash: "h1"}
	sibling := &post.Post{ID: 2, LibraryID: 1, RelativePath: "b.jpg", ContentHash: "h1",
		Tags: []post.TagAssignment{{TagID: 10, Source: post.SourceManual}}}

	posts := newFakePosts(keep, sibling)
	groups := newFakeGroups(&Group{ID: 100, Entries: []Entry{{PostID: 1}, {PostID: 2}}})

	// excludedfile.Create is hit by KeepOne; swap in a fake that records calls.
	excl := &fakeExcluded{}
	r := NewResolver(groups, posts, library.Repository(nil), excl, fakeBeginner{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if err := r.KeepOne(context.Background(), 100, 1); err != nil {
		t.Fatalf("KeepOne: %v", err)
	}

	if _, ok := posts.byID[2]; ok {
		t.Fatal("sibling post should have been deleted")
	}
	if !keep.HasTag(10) {
		t.Fatal("keep post should have inherited sibling's tag")
	}
	if len(excl.created) != 1 || excl.created[0].RelativePath != "b.jpg" {
		t.Fatalf("expected one excluded-file record for the sibling, got %+v", excl.created)
	}
	if _, ok := groups.byID[100]; ok {
		t.Fatal("group should have been deleted after KeepOne")
	}
}

func TestResolver_ExcludeOne_RequiresAtLeastTwoEntries(t *testing.T) {
	groups := newFakeGroups(&Group{ID: 1, Entries: []Entry{{PostID: 1}}})
	r := newResolver(newFakePosts(), groups)

	if err := r.ExcludeOne(context.Background(), 1, 1); err == nil {
		t.Fatal("expected an error excluding from a single-entry group")
	}
}

func TestResolver_ExcludeOne_DeletesGroupWhenBelowThreshold(t *testing.T) {
	groups := newFakeGroups(&Group{ID: 1, Entries: []Entry{{PostID: 1}, {PostID: 2}}})
	r := newResolver(newFakePosts(), groups)

	if err := r.ExcludeOne(context.Background(), 1, 2); err != nil {
		t.Fatalf("ExcludeOne: %v", err)
	}

	if _, ok := groups.byID[1]; ok {
		t.Fatal("group with fewer than 2 remaining entries must be deleted")
	}
}

func TestBestQuality_PrefersResolutionThenSizeThenRecencyThenID(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	a := &post.Post{ID: 1, Width: 100, Height: 100, SizeBytes: 500, FileModifiedDate: older}
	b := &post.Post{ID: 2, Width: 200, Height: 200, SizeBytes: 100, FileModifiedDate: older} // larger resolution wins
	c := &post.Post{ID: 3, Width: 200, Height: 200, SizeBytes: 900, FileModifiedDate: older} // same resolution, bigger size wins
	d := &post.Post{ID: 4, Width: 200, Height: 200, SizeBytes: 900, FileModifiedDate: newer} // same again, newer wins

	if got := bestQuality([]*post.Post{a, b}); got.ID != 2 {
		t.Fatalf("expected post 2 (higher resolution), got %d", got.ID)
	}
	if got := bestQuality([]*post.Post{b, c}); got.ID != 3 {
		t.Fatalf("expected post 3 (larger size at equal resolution), got %d", got.ID)
	}
	if got := bestQuality([]*post.Post{c, d}); got.ID != 4 {
		t.Fatalf("expected post 4 (more recently modified), got %d", got.ID)
	}

	e := &post.Post{ID: 5, Width: 200, Height: 200, SizeBytes: 900, FileModifiedDate: newer} // identical to d, higher ID wins
	if got := bestQuality([]*post.Post{d, e}); got.ID != 5 {
		t.Fatalf("expected post 5 (higher ID on a full tie), got %d", got.ID)
	}
}

func TestResolver_ResolveSameFolderGroup_RejectsMixedFolders(t *testing.T) {
	p1 := &post.Post{ID: 1, LibraryID: 1, RelativePath: "folderA/a.jpg"}
	p2 := &post.Post{ID: 2, LibraryID: 1, RelativePath: "folderB/b.jpg"}

	posts := newFakePosts(p1, p2)
	groups := newFakeGroups(&Group{ID: 1, Entries: []Entry{{PostID: 1}, {PostID: 2}}})
	r := newResolver(posts, groups)

	if err := r.ResolveSameFolderGroup(context.Background(), 1); err == nil {
		t.Fatal("expected an error resolving a group spanning two folders")
	}
}

// fakeExcluded is a minimal in-memory excludedfile.Repository recording
// every Create call for assertions.
type fakeExcluded struct {
	created []*excludedfile.ExcludedFile
}

func (f *fakeExcluded) Create(_ context.Context, e *excludedfile.ExcludedFile) (*excludedfile.ExcludedFile, error) {
	f.created = append(f.created, e)
	return e, nil
}

func (f *fakeExcluded) ListByLibrary(context.Context, int) ([]*excludedfile.ExcludedFile, error) {
	panic("unused")
}

func (f *fakeExcluded) DeleteStale(context.Context, int, []int) error { panic("unused") }
