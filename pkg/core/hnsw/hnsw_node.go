package hnsw

// node is a single graph vertex. It owns the record data of one id (the
// record store and the graph share the arena, so the two can never disagree)
// and its adjacency lists for layers 0..level.
type node struct {
	id    string
	level int

	// Exactly one of vec / vec16 is set, depending on the index precision.
	// Both are immutable once the node is published.
	vec   []float32
	vec16 []uint16

	metadata map[string]any
	content  any

	// connections[l] holds neighbour slots on layer l, at most M of them.
	connections [][]uint32
}

func newNode(id string, level int) *node {
	n := &node{
		id:          id,
		level:       level,
		connections: make([][]uint32, level+1),
	}
	return n
}

// hasNeighbor reports whether slot is already linked on layer.
func (n *node) hasNeighbor(layer int, slot uint32) bool {
	for _, s := range n.connections[layer] {
		if s == slot {
			return true
		}
	}
	return false
}

// removeNeighbor drops slot from layer, keeping the order of the rest.
func (n *node) removeNeighbor(layer int, slot uint32) bool {
	conns := n.connections[layer]
	for i, s := range conns {
		if s == slot {
			n.connections[layer] = append(conns[:i], conns[i+1:]...)
			return true
		}
	}
	return false
}
