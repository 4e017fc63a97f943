package hnsw

import (
	"maps"
	"sort"

	"github.com/sanonone/kektorindex/pkg/core/distance"
	"github.com/sanonone/kektorindex/pkg/core/filter"
	"github.com/sanonone/kektorindex/pkg/core/types"
)

// noSlot marks the absence of an excluded slot in searchLayer.
const noSlot = ^uint32(0)

// greedyDescend walks from ep down to layer stop+1, moving on each layer to
// the neighbour most similar to q until no move improves. It returns the
// final slot and its score.
func (h *Index) greedyDescend(s *scratch, q []float32, ep uint32, epScore float64, from, stop int) (uint32, float64) {
	for layer := from; layer > stop; layer-- {
		improved := true
		for improved {
			improved = false
			n := h.nodes[ep]
			if layer >= len(n.connections) {
				break
			}
			for _, nb := range n.connections[layer] {
				if sc := h.score(s, q, nb); sc > epScore {
					ep, epScore = nb, sc
					improved = true
				}
			}
		}
	}
	return ep, epScore
}

// searchLayer runs a bounded best-first expansion on one layer starting from
// eps, and returns up to ef candidates sorted by score, best first. The
// excluded slot may be traversed but never appears in the results.
func (h *Index) searchLayer(s *scratch, q []float32, eps []uint32, ef, layer int, exclude uint32) []types.Candidate {
	visited := s.visited
	frontier := &s.frontier
	results := &s.results
	visited.ClearAll()
	*frontier = (*frontier)[:0]
	*results = (*results)[:0]

	admit := func(c types.Candidate) {
		frontier.push(c)
		if c.Slot == exclude {
			return
		}
		results.push(c)
		if results.Len() > ef {
			results.pop()
		}
	}

	for _, ep := range eps {
		if visited.Test(uint(ep)) {
			continue
		}
		visited.Set(uint(ep))
		admit(types.Candidate{Slot: ep, Score: h.score(s, q, ep)})
	}

	for frontier.Len() > 0 {
		cur := frontier.pop()
		if results.Len() >= ef && cur.Score < results.peek().Score {
			break
		}

		n := h.nodes[cur.Slot]
		if layer >= len(n.connections) {
			continue
		}
		for _, nb := range n.connections[layer] {
			if visited.Test(uint(nb)) {
				continue
			}
			visited.Set(uint(nb))

			sc := h.score(s, q, nb)
			if results.Len() < ef || sc > results.peek().Score {
				admit(types.Candidate{Slot: nb, Score: sc})
			}
		}
	}

	out := make([]types.Candidate, results.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = results.pop()
	}
	return out
}

// knn returns up to ef live candidates for q on layer 0, best first.
// Callers hold a lock and have checked that the graph is not empty.
func (h *Index) knn(s *scratch, q []float32, ef int) []types.Candidate {
	ep := h.entry
	epScore := h.score(s, q, ep)
	ep, _ = h.greedyDescend(s, q, ep, epScore, h.topLevel, 0)
	return h.searchLayer(s, q, []uint32{ep}, ef, 0, noSlot)
}

// Search returns the k records most similar to query that satisfy f.
//
// The base layer is explored with ef = max(ef, k) (ef <= 0 selects the
// configured EfSearch). When a filter is given, all ef candidates are tested
// before truncating to k. Results are ordered by score, highest first, with
// ties broken by id.
func (h *Index) Search(query []float32, k, ef int, f filter.Filter) ([]types.SearchResult, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.dim != 0 && len(query) != h.dim {
		return nil, &distance.DimensionError{Expected: h.dim, Actual: len(query)}
	}
	if k <= 0 || !h.hasEntry {
		return []types.SearchResult{}, nil
	}

	if ef <= 0 {
		ef = h.cfg.EfSearch
	}
	if ef < k {
		ef = k
	}

	s := h.getScratch()
	defer h.putScratch(s)
	cands := h.knn(s, query, ef)

	out := make([]types.SearchResult, 0, min(k, len(cands)))
	for _, c := range cands {
		n := h.nodes[c.Slot]
		if !filter.Matches(f, n.metadata) {
			continue
		}
		out = append(out, types.SearchResult{
			ID:       n.id,
			Score:    c.Score,
			Content:  n.content,
			Metadata: maps.Clone(n.metadata),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
