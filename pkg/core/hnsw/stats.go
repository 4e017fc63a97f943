package hnsw

// Stats is a point-in-time summary of the graph shape. LayerNodes[l] is the
// number of nodes present on layer l and AvgDegree[l] their mean neighbour
// count.
type Stats struct {
	Nodes      int       `json:"nodes"`
	TopLevel   int       `json:"top_level"`
	EntryID    string    `json:"entry_id,omitempty"`
	LayerNodes []int     `json:"layer_nodes"`
	AvgDegree  []float64 `json:"avg_degree"`
	FreeSlots  int       `json:"free_slots"`
}

// Stats walks the graph under the read lock.
func (h *Index) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st := Stats{
		Nodes:     h.ids.Len(),
		TopLevel:  h.topLevel,
		FreeSlots: len(h.free),
	}
	if !h.hasEntry {
		return st
	}
	st.EntryID = h.nodes[h.entry].id

	st.LayerNodes = make([]int, h.topLevel+1)
	edges := make([]int, h.topLevel+1)
	for _, n := range h.nodes {
		if n == nil {
			continue
		}
		for l, conns := range n.connections {
			st.LayerNodes[l]++
			edges[l] += len(conns)
		}
	}
	st.AvgDegree = make([]float64, len(edges))
	for l := range edges {
		if st.LayerNodes[l] > 0 {
			st.AvgDegree[l] = float64(edges[l]) / float64(st.LayerNodes[l])
		}
	}
	return st
}

// Neighbors returns the ids linked from id on layer. The second result is
// false when id is unknown or does not reach that layer.
func (h *Index) Neighbors(id string, layer int) ([]string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	slot, ok := h.ids.Get(id)
	if !ok {
		return nil, false
	}
	n := h.nodes[slot]
	if layer < 0 || layer >= len(n.connections) {
		return nil, false
	}
	out := make([]string, 0, len(n.connections[layer]))
	for _, nb := range n.connections[layer] {
		out = append(out, h.nodes[nb].id)
	}
	return out, true
}

// Level returns the top layer of id, or -1 if id is unknown.
func (h *Index) Level(id string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	slot, ok := h.ids.Get(id)
	if !ok {
		return -1
	}
	return h.nodes[slot].level
}
