package hnsw

import (
	"maps"

	"github.com/sanonone/kektorindex/pkg/core/distance"
	"github.com/sanonone/kektorindex/pkg/core/types"
)

// allocate places n in a free slot, reusing released ones first.
// Must be called under the write lock.
func (h *Index) allocate(n *node) uint32 {
	if k := len(h.free); k > 0 {
		slot := h.free[k-1]
		h.free = h.free[:k-1]
		h.nodes[slot] = n
		return slot
	}
	h.nodes = append(h.nodes, n)
	return uint32(len(h.nodes) - 1)
}

// release empties slot and returns it to the free list.
// Must be called under the write lock.
func (h *Index) release(slot uint32) {
	h.nodes[slot] = nil
	h.free = append(h.free, slot)
}

// encode copies v into the storage representation of the index.
func (h *Index) encode(n *node, v []float32) {
	if h.cfg.Precision == distance.Float16 {
		n.vec16 = distance.EncodeFloat16(v)
		return
	}
	n.vec = append([]float32(nil), v...)
}

// record builds a caller-owned copy of the record held in n.
func (h *Index) record(n *node) types.Record {
	var emb []float32
	if n.vec != nil {
		emb = append([]float32(nil), n.vec...)
	} else {
		emb = distance.DecodeFloat16(make([]float32, len(n.vec16)), n.vec16)
	}
	return types.Record{
		ID:        n.id,
		Embedding: emb,
		Metadata:  maps.Clone(n.metadata),
		Content:   n.content,
	}
}

// Get returns a copy of the record stored under id.
func (h *Index) Get(id string) (types.Record, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	slot, ok := h.ids.Get(id)
	if !ok {
		return types.Record{}, false
	}
	return h.record(h.nodes[slot]), true
}

// Contains reports whether id is stored.
func (h *Index) Contains(id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.ids.Get(id)
	return ok
}

// IDs returns every stored id in ascending order.
func (h *Index) IDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, h.ids.Len())
	h.ids.Scan(func(id string, _ uint32) bool {
		out = append(out, id)
		return true
	})
	return out
}

// Iterate calls fn for every record in id order until fn returns false.
// The read lock is held for the whole walk, so fn must not call back into
// the index for writes.
func (h *Index) Iterate(fn func(rec types.Record) bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.ids.Scan(func(_ string, slot uint32) bool {
		return fn(h.record(h.nodes[slot]))
	})
}
