// Package hnsw implements a Hierarchical Navigable Small World graph for
// approximate nearest neighbour search over fixed-dimension vectors.
//
// The index owns both the records (id, embedding, metadata, content) and the
// layered graph built over them, so every mutation keeps the two in step
// under a single reader/writer lock. Searches and the read-only descent of an
// insertion run concurrently under the read lock; linking, pruning, deletion
// and clearing take the write lock.
package hnsw

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/tidwall/btree"

	"github.com/sanonone/kektorindex/pkg/core/distance"
)

// Index is an in-memory HNSW graph. It is safe for concurrent use.
type Index struct {
	mu sync.RWMutex

	cfg Config
	dim int
	ml  float64
	sim distance.SimilarityFunc

	// nodes is the slot arena. Freed slots are nil and listed in free.
	nodes []*node
	free  []uint32
	// ids maps external ids to slots, ordered so iteration is by id.
	ids *btree.Map[string, uint32]

	entry    uint32
	hasEntry bool
	topLevel int

	rngMu sync.Mutex
	rng   *rand.Rand

	scratchPool sync.Pool
}

// scratch bundles the per-traversal buffers so concurrent searches never
// share state and steady-state traversals do not allocate.
type scratch struct {
	visited  *bitset.BitSet
	frontier maxHeap
	results  minHeap
	bufA     []float32
	bufB     []float32
}

// New creates an empty index. Zero values of Metric, Precision and Gamma are
// replaced by their defaults; everything else is validated strictly.
func New(cfg Config) (*Index, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}
	sim, err := distance.Get(cfg.Metric, distance.WithGamma(cfg.Gamma))
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	h := &Index{
		cfg:      cfg,
		dim:      cfg.Dimension,
		ml:       1.0 / math.Log(float64(cfg.M)),
		sim:      sim,
		ids:      btree.NewMap[string, uint32](32),
		topLevel: -1,
		rng:      rand.New(rand.NewSource(seed)),
	}
	h.scratchPool = sync.Pool{
		New: func() any {
			return &scratch{
				visited:  bitset.New(1024),
				frontier: make(maxHeap, 0, cfg.EfConstruction),
				results:  make(minHeap, 0, cfg.EfConstruction),
			}
		},
	}
	return h, nil
}

// Config returns the normalized construction parameters.
func (h *Index) Config() Config {
	return h.cfg
}

// Len returns the number of live records.
func (h *Index) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ids.Len()
}

// Dimension returns the fixed vector length, or 0 if not fixed yet.
func (h *Index) Dimension() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dim
}

// randomLevel draws min(MaxLevel, floor(-ln(U) * ml)) with U in (0,1].
func (h *Index) randomLevel() int {
	h.rngMu.Lock()
	u := 1 - h.rng.Float64()
	h.rngMu.Unlock()

	level := int(math.Floor(-math.Log(u) * h.ml))
	if level > h.cfg.MaxLevel {
		level = h.cfg.MaxLevel
	}
	return level
}

func (h *Index) getScratch() *scratch {
	s := h.scratchPool.Get().(*scratch)
	if cap(s.bufA) < h.dim {
		s.bufA = make([]float32, h.dim)
		s.bufB = make([]float32, h.dim)
	}
	return s
}

func (h *Index) putScratch(s *scratch) {
	s.visited.ClearAll()
	s.frontier = s.frontier[:0]
	s.results = s.results[:0]
	h.scratchPool.Put(s)
}

// vectorOf returns the float32 view of n, decoding into buf when the index
// stores half precision.
func (h *Index) vectorOf(n *node, buf []float32) []float32 {
	if n.vec != nil {
		return n.vec
	}
	if cap(buf) < len(n.vec16) {
		buf = make([]float32, len(n.vec16))
	}
	return distance.DecodeFloat16(buf[:cap(buf)], n.vec16)
}

// score is the similarity of q to the node in slot. q must not alias
// s.bufA. Callers hold a lock.
func (h *Index) score(s *scratch, q []float32, slot uint32) float64 {
	v := h.vectorOf(h.nodes[slot], s.bufA)
	sc, err := h.sim(q, v)
	if err != nil {
		return math.Inf(-1)
	}
	return sc
}
