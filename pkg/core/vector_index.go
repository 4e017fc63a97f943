package core

import (
	"maps"
	"sort"
	"sync"

	"github.com/sanonone/kektorindex/pkg/core/distance"
	"github.com/sanonone/kektorindex/pkg/core/filter"
	"github.com/sanonone/kektorindex/pkg/core/hnsw"
	"github.com/sanonone/kektorindex/pkg/core/types"
)

// VectorIndex is the contract shared by the graph index and the exact
// baseline, so a Collection can run on either.
type VectorIndex interface {
	// Add stores rec, replacing any record with the same id.
	Add(rec types.Record) error
	// Delete removes id and reports whether it was present.
	Delete(id string) bool
	// Search returns up to k records ordered by decreasing similarity.
	// ef widens the candidate list where the implementation has one.
	Search(query []float32, k, ef int, f filter.Filter) ([]types.SearchResult, error)
	Get(id string) (types.Record, bool)
	Len() int
	Clear()
	// Dimension is 0 until fixed by configuration or by the first insert.
	Dimension() int
}

var (
	_ VectorIndex = (*hnsw.Index)(nil)
	_ VectorIndex = (*BruteForce)(nil)
)

// BruteForce is a VectorIndex that scores every stored vector on each query.
// It returns the exact top k and is used as the ground truth for recall.
type BruteForce struct {
	mu      sync.RWMutex
	sim     distance.SimilarityFunc
	dim     int
	records map[string]types.Record
}

// NewBruteForce creates an empty exact index. dimension 0 means "take it from
// the first insert".
func NewBruteForce(metric distance.Metric, dimension int, opts ...distance.Option) (*BruteForce, error) {
	if dimension < 0 {
		return nil, ErrInvalidConfig
	}
	sim, err := distance.Get(metric, opts...)
	if err != nil {
		return nil, err
	}
	return &BruteForce{
		sim:     sim,
		dim:     dimension,
		records: make(map[string]types.Record),
	}, nil
}

// Add stores a copy of rec.
func (idx *BruteForce) Add(rec types.Record) error {
	if rec.ID == "" {
		return ErrEmptyID
	}
	if len(rec.Embedding) == 0 {
		return ErrEmptyEmbedding
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dim != 0 && len(rec.Embedding) != idx.dim {
		return &DimensionError{Expected: idx.dim, Actual: len(rec.Embedding)}
	}
	idx.dim = len(rec.Embedding)
	idx.records[rec.ID] = copyRecord(rec)
	return nil
}

// Delete removes a vector by its ID.
func (idx *BruteForce) Delete(id string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	_, ok := idx.records[id]
	delete(idx.records, id)
	return ok
}

// Search scores every record matching f and keeps the best k. ef is ignored.
func (idx *BruteForce) Search(query []float32, k, _ int, f filter.Filter) ([]types.SearchResult, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.dim != 0 && len(query) != idx.dim {
		return nil, &DimensionError{Expected: idx.dim, Actual: len(query)}
	}
	if k <= 0 || len(idx.records) == 0 {
		return []types.SearchResult{}, nil
	}

	results := make([]types.SearchResult, 0, len(idx.records))
	for id, rec := range idx.records {
		if !filter.Matches(f, rec.Metadata) {
			continue
		}
		score, err := idx.sim(query, rec.Embedding)
		if err != nil {
			return nil, err
		}
		results = append(results, types.SearchResult{
			ID:       id,
			Score:    score,
			Content:  rec.Content,
			Metadata: maps.Clone(rec.Metadata),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (idx *BruteForce) Get(id string) (types.Record, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	rec, ok := idx.records[id]
	if !ok {
		return types.Record{}, false
	}
	return copyRecord(rec), true
}

func (idx *BruteForce) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records)
}

// Clear drops every record. The dimension stays fixed.
func (idx *BruteForce) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.records = make(map[string]types.Record)
}

func (idx *BruteForce) Dimension() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dim
}

func copyRecord(rec types.Record) types.Record {
	rec.Embedding = append([]float32(nil), rec.Embedding...)
	rec.Metadata = maps.Clone(rec.Metadata)
	return rec
}
