package hnsw

import (
	"sort"

	"github.com/sanonone/kektorindex/pkg/core/types"
)

// Delete removes id from the index. It reports whether id was present;
// deleting an unknown id is a no-op.
func (h *Index) Delete(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	slot, ok := h.ids.Get(id)
	if !ok {
		return false
	}
	h.detach(slot)
	h.ids.Delete(id)
	return true
}

// Clear removes every record. The dimension stays fixed.
func (h *Index) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nodes = nil
	h.free = nil
	h.ids.Clear()
	h.entry, h.hasEntry, h.topLevel = 0, false, -1
}

// repair is one planned link from a former neighbour of a deleted node to
// one of the deleted node's other neighbours.
type repair struct {
	from  uint32
	layer int
	to    []uint32
}

// detach unlinks slot from every layer of every node, frees it, and moves
// the entry point if needed. Former neighbours with room to spare are
// offered the deleted node's other neighbours, best first.
// Must be called under the write lock.
func (h *Index) detach(slot uint32) {
	dead := h.nodes[slot]

	// All scoring happens before the first mutation.
	repairs := h.planRepairs(dead, slot)

	h.stripReferences(slot)
	for _, r := range repairs {
		n := h.nodes[r.from]
		n.connections[r.layer] = append(n.connections[r.layer], r.to...)
	}
	h.release(slot)

	if h.hasEntry && h.entry == slot {
		h.chooseEntry()
	}
}

func (h *Index) planRepairs(dead *node, slot uint32) []repair {
	s := h.getScratch()
	defer h.putScratch(s)

	var repairs []repair
	for from, n := range h.nodes {
		if n == nil || uint32(from) == slot {
			continue
		}
		for layer := 0; layer < len(n.connections) && layer <= dead.level; layer++ {
			if !n.hasNeighbor(layer, slot) {
				continue
			}
			spare := h.cfg.M - len(n.connections[layer]) + 1
			if spare <= 0 {
				continue
			}

			base := h.vectorOf(n, s.bufB)
			var cands []types.Candidate
			for _, c := range dead.connections[layer] {
				if c == slot || c == uint32(from) || n.hasNeighbor(layer, c) {
					continue
				}
				cands = append(cands, types.Candidate{Slot: c, Score: h.score(s, base, c)})
			}
			if len(cands) == 0 {
				continue
			}
			sort.SliceStable(cands, func(i, j int) bool {
				return cands[i].Score > cands[j].Score
			})

			r := repair{from: uint32(from), layer: layer}
			for i := 0; i < len(cands) && i < spare; i++ {
				r.to = append(r.to, cands[i].Slot)
			}
			repairs = append(repairs, r)
		}
	}
	return repairs
}

// stripReferences removes slot from every adjacency list in the graph.
func (h *Index) stripReferences(slot uint32) {
	for _, n := range h.nodes {
		if n == nil {
			continue
		}
		for layer := range n.connections {
			n.removeNeighbor(layer, slot)
		}
	}
}

// chooseEntry promotes the live node with the highest level (lowest slot on
// ties) to entry point, or marks the graph empty.
func (h *Index) chooseEntry() {
	h.entry, h.hasEntry, h.topLevel = 0, false, -1
	for slot, n := range h.nodes {
		if n == nil {
			continue
		}
		if n.level > h.topLevel {
			h.entry, h.hasEntry, h.topLevel = uint32(slot), true, n.level
		}
	}
}
