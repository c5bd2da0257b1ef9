package tag

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository is a minimal in-memory Repository covering what Service
// exercises in these tests.
type fakeRepository struct {
	tags           map[int]*Tag
	mergeCalls     []mergeCall
	recountCalled  bool
	sanitizeGroups []MergeGroup
}

type mergeCall struct {
	winnerID      int
	loserIDs      []int
	sanitizedName string
}

func newFakeRepository(tags ...*Tag) *fakeRepository {
	f := &fakeRepository{tags: map[int]*Tag{}}
	for _, t := range tags {
		f.tags[t.ID] = t
	}
	return f
}

func (f *fakeRepository) Create(context.Context, *Tag) (*Tag, error) { panic("unused") }
func (f *fakeRepository) Update(_ context.Context, t *Tag) error {
	existing, ok := f.tags[t.ID]
	if !ok {
		return ErrNotFoundStub{}
	}
	existing.Name = t.Name
	existing.TagCategoryID = t.TagCategoryID
	return nil
}
func (f *fakeRepository) Delete(context.Context, int) error { panic("unused") }
func (f *fakeRepository) Get(_ context.Context, id int) (*Tag, error) {
	t, ok := f.tags[id]
	if !ok {
		return nil, ErrNotFoundStub{}
	}
	return t, nil
}
func (f *fakeRepository) GetByName(context.Context, string) (*Tag, error) { panic("unused") }
func (f *fakeRepository) List(context.Context) ([]*Tag, error)            { panic("unused") }

func (f *fakeRepository) CreateCategory(context.Context, *TagCategory) (*TagCategory, error) {
	panic("unused")
}
func (f *fakeRepository) UpdateCategory(context.Context, *TagCategory) error { panic("unused") }
func (f *fakeRepository) DeleteCategory(context.Context, int) error          { panic("unused") }
func (f *fakeRepository) ListCategories(context.Context) ([]*TagCategory, error) {
	panic("unused")
}

func (f *fakeRepository) RecountPostCounts(context.Context) error {
	f.recountCalled = true
	return nil
}

func (f *fakeRepository) FindSanitizeGroups(context.Context) ([]MergeGroup, error) {
	return f.sanitizeGroups, nil
}

func (f *fakeRepository) MergeInto(_ context.Context, winnerID int, loserIDs []int, sanitizedName string) error {
	f.mergeCalls = append(f.mergeCalls, mergeCall{winnerID: winnerID, loserIDs: loserIDs, sanitizedName: sanitizedName})
	for _, id := range loserIDs {
		delete(f.tags, id)
	}
	if t, ok := f.tags[winnerID]; ok {
		t.Name = sanitizedName
	}
	return nil
}

type ErrNotFoundStub struct{}

func (ErrNotFoundStub) Error() string { return "not found" }

func testSvcLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_SanitizeAll_RenamesLoneUnsanitizedTag(t *testing.T) {
	repo := newFakeRepository(&Tag{ID: 1, Name: "Blue  Eyes"})
	repo.sanitizeGroups = []MergeGroup{{SanitizedName: "blue_eyes", TagIDs: []int{1}}}
	svc := NewService(repo, testSvcLogger())

	groupsMerged, tagsRenamed, tagsRemoved, err := svc.SanitizeAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, groupsMerged)
	assert.Equal(t, 1, tagsRenamed)
	assert.Equal(t, 0, tagsRemoved)
	assert.Equal(t, "blue_eyes", repo.tags[1].Name)
	assert.True(t, repo.recountCalled)
	assert.Empty(t, repo.mergeCalls)
}

func TestService_SanitizeAll_SkipsLoneTagAlreadySanitized(t *testing.T) {
	repo := newFakeRepository(&Tag{ID: 1, Name: "blue_eyes"})
	repo.sanitizeGroups = []MergeGroup{{SanitizedName: "blue_eyes", TagIDs: []int{1}}}
	svc := NewService(repo, testSvcLogger())

	_, tagsRenamed, _, err := svc.SanitizeAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, tagsRenamed)
}

func TestService_SanitizeAll_MergesGroupOfTwoByHighestPostCount(t *testing.T) {
	repo := newFakeRepository(
		&Tag{ID: 1, Name: "Blue Eyes", PostCount: 3},
		&Tag{ID: 2, Name: "blue_eyes", PostCount: 9},
	)
	repo.sanitizeGroups = []MergeGroup{{SanitizedName: "blue_eyes", TagIDs: []int{1, 2}}}
	svc := NewService(repo, testSvcLogger())

	groupsMerged, tagsRenamed, tagsRemoved, err := svc.SanitizeAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, groupsMerged)
	assert.Equal(t, 0, tagsRenamed)
	assert.Equal(t, 1, tagsRemoved)
	require.Len(t, repo.mergeCalls, 1)
	assert.Equal(t, 2, repo.mergeCalls[0].winnerID)
	assert.Equal(t, []int{1}, repo.mergeCalls[0].loserIDs)
}
