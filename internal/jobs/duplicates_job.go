package jobs

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/booruoss/booru/internal/core/duplicate"
	"github.com/booruoss/booru/internal/core/post"
	"github.com/booruoss/booru/internal/media"
)

// findDuplicates implements §4.6.8: an exact pass grouping posts sharing a
// content hash, followed by a perceptual pass grouping posts whose PDQ
// hashes fall within threshold, skipping anything already covered by a
// resolved group or the exact pass.
func (d Dependencies) findDuplicates(jobCtx *Context) (string, error) {
	resolvedSignatures, err := d.resolvedGroupSignatures(jobCtx)
	if err != nil {
		return "", err
	}

	if err := d.dropUnresolvedGroups(jobCtx); err != nil {
		return "", err
	}

	jobCtx.Reporter.Update(State{ActivityText: "loading post signatures"})
	sigs, err := d.Posts.ListDuplicateSignatures(jobCtx)
	if err != nil {
		return "", err
	}

	exactGroups, covered, err := d.exactPass(jobCtx, sigs, resolvedSignatures)
	if err != nil {
		return "", err
	}

	perceptualGroups, matchedPairs, err := d.perceptualPass(jobCtx, sigs, resolvedSignatures, covered)
	if err != nil {
		return "", err
	}

	summary := fmt.Sprintf("groups=%d exact=%d perceptual=%d matched_pairs=%d total_entries=%d",
		exactGroups+perceptualGroups, exactGroups, perceptualGroups, matchedPairs, len(sigs))
	return summary, nil
}

func (d Dependencies) resolvedGroupSignatures(jobCtx *Context) (map[string]bool, error) {
	resolved := true
	groups, err := d.Duplicates.List(jobCtx, &resolved, nil)
	if err != nil {
		return nil, err
	}

	signatures := make(map[string]bool, len(groups))
	for _, g := range groups {
		signatures[groupSignature(entryIDs(g))] = true
	}
	return signatures, nil
}

func (d Dependencies) dropUnresolvedGroups(jobCtx *Context) error {
	resolved := false
	groups, err := d.Duplicates.List(jobCtx, &resolved, nil)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if err := d.Duplicates.Delete(jobCtx, g.ID); err != nil {
			return err
		}
	}
	return nil
}

// exactPass groups signatures sharing a content hash. It returns the
// number of groups created and the set of post-ID pairs it covered, so the
// perceptual pass does not re-suggest them.
func (d Dependencies) exactPass(jobCtx *Context, sigs []post.DuplicateSignature, resolved map[string]bool) (int, map[[2]int]bool, error) {
	byHash := make(map[string][]int)
	for _, s := range sigs {
		key := strings.ToLower(s.ContentHash)
		byHash[key] = append(byHash[key], s.ID)
	}

	covered := make(map[[2]int]bool)
	created := 0

	for _, ids := range byHash {
		if len(ids) < 2 {
			continue
		}
		sort.Ints(ids)
		markCoveredPairs(covered, ids)

		sig := groupSignature(ids)
		if resolved[sig] {
			continue
		}

		g := &duplicate.Group{
			Type:         duplicate.TypeExact,
			IsResolved:   false,
			DetectedDate: time.Now(),
			Entries:      entriesFor(ids),
		}
		if _, err := d.Duplicates.CreateGroup(jobCtx, g); err != nil {
			return created, covered, err
		}
		created++
	}

	jobCtx.Reporter.Update(State{ActivityText: fmt.Sprintf("exact pass: %d groups", created)})
	return created, covered, nil
}

// perceptualPass compares every pair of posts with a valid 256-bit hash,
// forms similarity edges meeting threshold, then builds groups by greedy
// clique extension (§4.6.8).
func (d Dependencies) perceptualPass(jobCtx *Context, sigs []post.DuplicateSignature, resolved map[string]bool, covered map[[2]int]bool) (int, int, error) {
	valid := make([]post.DuplicateSignature, 0, len(sigs))
	for _, s := range sigs {
		if s.PdqHash256 != nil && len(*s.PdqHash256) == 64 {
			valid = append(valid, s)
		}
	}
	sort.Slice(valid, func(i, j int) bool { return valid[i].ID < valid[j].ID })

	edges := make(map[int]map[int]int)
	matchedPairs := 0

	for i := 0; i < len(valid); i++ {
		select {
		case <-jobCtx.Done():
			return 0, matchedPairs, jobCtx.Err()
		default:
		}

		for j := i + 1; j < len(valid); j++ {
			a, b := valid[i], valid[j]
			pair := pairKey(a.ID, b.ID)
			if covered[pair] {
				continue
			}

			dist := media.HammingDistance256(*a.PdqHash256, *b.PdqHash256)
			if dist < 0 {
				continue
			}
			similarity := 1 - float64(dist)/256

			threshold := d.BaseSimilarity
			if !strings.HasPrefix(a.ContentType, "image/") || !strings.HasPrefix(b.ContentType, "image/") {
				threshold = math.Max(d.BaseSimilarity, d.CrossTypeSimilarity)
			}
			if similarity < threshold {
				continue
			}

			addEdge(edges, a.ID, b.ID, int(math.Round(similarity*100)))
			matchedPairs++
		}
	}

	created, err := d.emitPerceptualGroups(jobCtx, edges, resolved)
	return created, matchedPairs, err
}

// emitPerceptualGroups builds groups from the similarity graph by repeated
// clique extension: pick the highest-remaining-degree vertex, then greedily
// add neighbours (highest similarity first, ties by lowest id) that are
// connected to every current group member (§4.6.8).
func (d Dependencies) emitPerceptualGroups(jobCtx *Context, edges map[int]map[int]int, resolved map[string]bool) (int, error) {
	remaining := make(map[int]bool, len(edges))
	for v := range edges {
		remaining[v] = true
	}

	created := 0
	for len(remaining) > 0 {
		pivot, ok := highestDegreeVertex(edges, remaining)
		if !ok {
			break
		}

		group := []int{pivot}
		groupSet := map[int]bool{pivot: true}

		for _, candidate := range sortedNeighbors(pivot, edges, remaining) {
			if groupSet[candidate] {
				continue
			}
			connectedToAll := true
			for member := range groupSet {
				if _, ok := edges[candidate][member]; !ok {
					connectedToAll = false
					break
				}
			}
			if connectedToAll {
				group = append(group, candidate)
				groupSet[candidate] = true
			}
		}

		if len(group) >= 2 {
			sort.Ints(group)
			sig := groupSignature(group)
			if !resolved[sig] {
				percent := medianSimilarity(group, edges)
				g := &duplicate.Group{
					Type:              duplicate.TypePerceptual,
					SimilarityPercent: &percent,
					IsResolved:        false,
					DetectedDate:      time.Now(),
					Entries:           entriesFor(group),
				}
				if _, err := d.Duplicates.CreateGroup(jobCtx, g); err != nil {
					return created, err
				}
				created++
			}
		}

		for _, v := range group {
			delete(remaining, v)
		}
	}

	return created, nil
}

func highestDegreeVertex(edges map[int]map[int]int, remaining map[int]bool) (int, bool) {
	best, bestDegree := -1, -1
	for v := range remaining {
		degree := 0
		for n := range edges[v] {
			if remaining[n] {
				degree++
			}
		}
		if degree == 0 {
			continue
		}
		if degree > bestDegree || (degree == bestDegree && v < best) {
			best, bestDegree = v, degree
		}
	}
	return best, best != -1
}

func sortedNeighbors(v int, edges map[int]map[int]int, remaining map[int]bool) []int {
	neighbors := make([]int, 0, len(edges[v]))
	for n := range edges[v] {
		if remaining[n] {
			neighbors = append(neighbors, n)
		}
	}
	sort.Slice(neighbors, func(i, j int) bool {
		wi, wj := edges[v][neighbors[i]], edges[v][neighbors[j]]
		if wi != wj {
			return wi > wj
		}
		return neighbors[i] < neighbors[j]
	})
	return neighbors
}

func medianSimilarity(group []int, edges map[int]map[int]int) float64 {
	var weights []int
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			if w, ok := edges[group[i]][group[j]]; ok {
				weights = append(weights, w)
			}
		}
	}
	if len(weights) == 0 {
		return 0
	}
	sort.Ints(weights)
	mid := len(weights) / 2
	if len(weights)%2 == 1 {
		return float64(weights[mid])
	}
	return float64(weights[mid-1]+weights[mid]) / 2
}

func entryIDs(g *duplicate.Group) []int {
	ids := make([]int, 0, len(g.Entries))
	for _, e := range g.Entries {
		ids = append(ids, e.PostID)
	}
	sort.Ints(ids)
	return ids
}

func entriesFor(ids []int) []duplicate.Entry {
	entries := make([]duplicate.Entry, len(ids))
	for i, id := range ids {
		entries[i] = duplicate.Entry{PostID: id}
	}
	return entries
}

func groupSignature(sortedIDs []int) string {
	parts := make([]string, len(sortedIDs))
	for i, id := range sortedIDs {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func pairKey(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}

func markCoveredPairs(covered map[[2]int]bool, ids []int) {
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			covered[pairKey(ids[i], ids[j])] = true
		}
	}
}

func addEdge(edges map[int]map[int]int, a, b, percent int) {
	if edges[a] == nil {
		edges[a] = make(map[int]int)
	}
	if edges[b] == nil {
		edges[b] = make(map[int]int)
	}
	edges[a][b] = percent
	edges[b][a] = percent
}
