package hnsw

import (
	"maps"
	"sort"

	"github.com/sanonone/kektorindex/pkg/core/distance"
	"github.com/sanonone/kektorindex/pkg/core/types"
)

// Add stores rec and links it into the graph. Storing an id that already
// exists replaces the previous record: the new vector is linked into a fresh
// slot and the old one is detached in the same critical section, so readers
// never observe the id missing or duplicated.
//
// Add either completes fully or leaves the index untouched.
func (h *Index) Add(rec types.Record) error {
	if rec.ID == "" {
		return ErrEmptyID
	}
	if len(rec.Embedding) == 0 {
		return ErrEmptyEmbedding
	}

	vec := append([]float32(nil), rec.Embedding...)
	level := h.randomLevel()

	// Phase 1, read lock: descend the upper layers.
	ep, epNode, err := h.prepare(vec, level)
	if err != nil {
		return err
	}

	// Phase 2, write lock: link.
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.dim != 0 && len(vec) != h.dim {
		return &distance.DimensionError{Expected: h.dim, Actual: len(vec)}
	}

	n := newNode(rec.ID, level)
	h.encode(n, vec)
	n.metadata = maps.Clone(rec.Metadata)
	n.content = rec.Content

	oldSlot, replacing := h.ids.Get(rec.ID)
	exclude := noSlot
	if replacing {
		exclude = oldSlot
	}

	prevEntry, prevHasEntry, prevTop, prevDim := h.entry, h.hasEntry, h.topLevel, h.dim
	slot := h.allocate(n)

	committed := false
	defer func() {
		if committed {
			return
		}
		if r := recover(); r != nil {
			h.stripReferences(slot)
			h.release(slot)
			h.entry, h.hasEntry, h.topLevel, h.dim = prevEntry, prevHasEntry, prevTop, prevDim
			panic(r)
		}
	}()

	if h.dim == 0 {
		h.dim = len(vec)
	}

	if h.hasEntry {
		// The descent ran against an older graph; fall back to the entry
		// point if its result was deleted (or its slot reused) meanwhile.
		if epNode == nil || h.nodes[ep] != epNode {
			ep, _ = h.descend(vec, level)
		}
		h.link(slot, vec, ep, exclude)
	}

	if !h.hasEntry || level > h.topLevel {
		h.entry, h.hasEntry, h.topLevel = slot, true, level
	}

	if replacing {
		h.detach(oldSlot)
	}
	h.ids.Set(rec.ID, slot)

	committed = true
	return nil
}

// prepare checks the dimension and runs the read-only part of an insert.
// epNode is nil when the graph was empty.
func (h *Index) prepare(vec []float32, level int) (uint32, *node, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.dim != 0 && len(vec) != h.dim {
		return 0, nil, &distance.DimensionError{Expected: h.dim, Actual: len(vec)}
	}
	if !h.hasEntry {
		return 0, nil, nil
	}
	ep, epNode := h.descend(vec, level)
	return ep, epNode, nil
}

// descend returns the node reached by greedy search from the entry point
// down to layer level+1. Callers hold a lock and the graph is not empty.
func (h *Index) descend(q []float32, level int) (uint32, *node) {
	s := h.getScratch()
	defer h.putScratch(s)

	ep := h.entry
	ep, _ = h.greedyDescend(s, q, ep, h.score(s, q, ep), h.topLevel, level)
	return ep, h.nodes[ep]
}

// link connects slot on layers min(level, topLevel)..0, starting from ep.
// Must be called under the write lock.
func (h *Index) link(slot uint32, q []float32, ep uint32, exclude uint32) {
	s := h.getScratch()
	defer h.putScratch(s)

	n := h.nodes[slot]
	m := h.cfg.M
	eps := []uint32{ep}

	for layer := min(n.level, h.topLevel); layer >= 0; layer-- {
		cands := h.searchLayer(s, q, eps, h.cfg.EfConstruction, layer, exclude)

		selected := make([]uint32, 0, m)
		for _, c := range cands {
			if c.Slot == slot {
				continue
			}
			selected = append(selected, c.Slot)
			if len(selected) == m {
				break
			}
		}
		n.connections[layer] = selected

		for _, nb := range selected {
			other := h.nodes[nb]
			other.connections[layer] = append(other.connections[layer], slot)
			if len(other.connections[layer]) > m {
				h.prune(s, other, layer)
			}
		}

		if len(cands) > 0 {
			eps = eps[:0]
			for _, c := range cands {
				eps = append(eps, c.Slot)
			}
		}
	}
}

// prune shrinks n's layer list back to M by re-scoring every neighbour
// against n's own vector and keeping the M best.
func (h *Index) prune(s *scratch, n *node, layer int) {
	base := h.vectorOf(n, s.bufB)
	conns := n.connections[layer]

	scored := make([]types.Candidate, len(conns))
	for i, c := range conns {
		scored[i] = types.Candidate{Slot: c, Score: h.score(s, base, c)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	kept := make([]uint32, h.cfg.M)
	for i := range kept {
		kept[i] = scored[i].Slot
	}
	n.connections[layer] = kept
}
