package jobs

import (
	"context"
	"testing"

	"github.com/booruoss/booru/internal/core/duplicate"
)

func testBackground() context.Context { return context.Background() }

// fakeDuplicateRepo is a minimal in-memory duplicate.Repository recording
// every group CreateGroup persists, for assertions in this package's tests.
type fakeDuplicateRepo struct {
	created []*duplicate.Group
}

func newFakeDuplicateRepo() *fakeDuplicateRepo { return &fakeDuplicateRepo{} }

func (f *fakeDuplicateRepo) Get(context.Context, int) (*duplicate.Group, error) { panic("unused") }
func (f *fakeDuplicateRepo) List(context.Context, *bool, *duplicate.GroupType) ([]*duplicate.Group, error) {
	return nil, nil
}
func (f *fakeDuplicateRepo) Delete(context.Context, int) error { return nil }
func (f *fakeDuplicateRepo) CreateGroup(_ context.Context, g *duplicate.Group) (*duplicate.Group, error) {
	f.created = append(f.created, g)
	return g, nil
}
func (f *fakeDuplicateRepo) RemoveEntry(context.Context, int, int) error    { panic("unused") }
func (f *fakeDuplicateRepo) CountEntries(context.Context, int) (int, error) { panic("unused") }
func (f *fakeDuplicateRepo) MarkResolved(context.Context, int, bool) error  { panic("unused") }
func (f *fakeDuplicateRepo) DeleteIfEmpty(context.Context, int) (bool, error) {
	panic("unused")
}
func (f *fakeDuplicateRepo) MarkAllUnresolved(context.Context) error { return nil }

func TestGroupSignature_OrderIndependentGivenSortedInput(t *testing.T) {
	if got, want := groupSignature([]int{1, 2, 3}), "1,2,3"; got != want {
		t.Fatalf("groupSignature = %q, want %q", got, want)
	}
}

func TestPairKey_IsOrderInsensitive(t *testing.T) {
	if pairKey(3, 1) != pairKey(1, 3) {
		t.Fatal("pairKey should normalize order")
	}
}

func TestMarkCoveredPairs_CoversEveryCombination(t *testing.T) {
	covered := make(map[[2]int]bool)
	markCoveredPairs(covered, []int{1, 2, 3})

	want := [][2]int{{1, 2}, {1, 3}, {2, 3}}
	for _, p := range want {
		if !covered[p] {
			t.Fatalf("expected pair %v to be covered", p)
		}
	}
	if len(covered) != len(want) {
		t.Fatalf("expected exactly %d covered pairs, got %d", len(want), len(covered))
	}
}

func TestHighestDegreeVertex_PicksMostConnectedThenLowestID(t *testing.T) {
	edges := make(map[int]map[int]int)
	addEdge(edges, 1, 2, 90)
	addEdge(edges, 1, 3, 90)
	addEdge(edges, 2, 3, 90)
	addEdge(edges, 4, 5, 90) // separate component, degree 1 each

	remaining := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	v, ok := highestDegreeVertex(edges, remaining)
	if !ok {
		t.Fatal("expected a vertex")
	}
	// vertices 1,2,3 all have degree 2 within this remaining set; lowest id wins.
	if v != 1 {
		t.Fatalf("highestDegreeVertex = %d, want 1", v)
	}
}

func TestSortedNeighbors_OrdersByWeightThenID(t *testing.T) {
	edges := make(map[int]map[int]int)
	addEdge(edges, 1, 2, 70)
	addEdge(edges, 1, 3, 95)
	addEdge(edges, 1, 4, 95)

	remaining := map[int]bool{1: true, 2: true, 3: true, 4: true}
	got := sortedNeighbors(1, edges, remaining)
	want := []int{3, 4, 2}
	if len(got) != len(want) {
		t.Fatalf("sortedNeighbors = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sortedNeighbors = %v, want %v", got, want)
		}
	}
}

func TestMedianSimilarity_EvenAndOddCounts(t *testing.T) {
	edges := make(map[int]map[int]int)
	addEdge(edges, 1, 2, 80)
	addEdge(edges, 1, 3, 90)
	addEdge(edges, 2, 3, 100)

	if got := medianSimilarity([]int{1, 2, 3}, edges); got != 90 {
		t.Fatalf("median of {80,90,100} = %v, want 90", got)
	}

	edges2 := make(map[int]map[int]int)
	addEdge(edges2, 1, 2, 80)
	if got := medianSimilarity([]int{1, 2}, edges2); got != 80 {
		t.Fatalf("median of a single pair = %v, want 80", got)
	}

	edges3 := make(map[int]map[int]int)
	addEdge(edges3, 1, 2, 80)
	addEdge(edges3, 1, 3, 90)
	if got := medianSimilarity([]int{1, 2, 3}, edges3); got != 85 {
		t.Fatalf("median of {80,90} = %v, want 85", got)
	}
}

func TestEmitPerceptualGroups_ExtendsCliqueAndExcludesUnconnected(t *testing.T) {
	// 1-2-3 form a triangle (mutual matches); 4 only matches 1, not 2 or 3,
	// so it must not join the group despite being a neighbor of the pivot.
	edges := make(map[int]map[int]int)
	addEdge(edges, 1, 2, 90)
	addEdge(edges, 1, 3, 90)
	addEdge(edges, 2, 3, 90)
	addEdge(edges, 1, 4, 85)

	fake := newFakeDuplicateRepo()
	deps := Dependencies{Duplicates: fake}

	created, err := deps.emitPerceptualGroups(&Context{Context: testBackground()}, edges, map[string]bool{})
	if err != nil {
		t.Fatalf("emitPerceptualGroups: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 group created, got %d", created)
	}
	if len(fake.created) != 1 {
		t.Fatalf("expected 1 group persisted, got %d", len(fake.created))
	}
	ids := entryIDs(fake.created[0])
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("expected group {1,2,3}, got %v", ids)
	}
}
