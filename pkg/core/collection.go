package core

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sanonone/kektorindex/pkg/core/distance"
	"github.com/sanonone/kektorindex/pkg/core/filter"
	"github.com/sanonone/kektorindex/pkg/core/hnsw"
	"github.com/sanonone/kektorindex/pkg/core/types"
	"github.com/sanonone/kektorindex/pkg/metrics"
)

// Info describes a collection.
type Info = types.IndexInfo

// Collection is a named vector index with logging and metrics around it.
// All methods are safe for concurrent use.
type Collection struct {
	name   string
	cfg    hnsw.Config
	index  VectorIndex
	logger *slog.Logger
}

// NewCollection validates cfg and builds an empty collection.
func NewCollection(name string, cfg hnsw.Config, opts ...Option) (*Collection, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty collection name", ErrInvalidConfig)
	}
	o := buildOptions(opts)

	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}

	var index VectorIndex
	if o.bruteForce {
		index, err = NewBruteForce(cfg.Metric, cfg.Dimension, distance.WithGamma(cfg.Gamma))
	} else {
		index, err = hnsw.New(cfg)
	}
	if err != nil {
		return nil, err
	}

	c := &Collection{
		name:   name,
		cfg:    cfg,
		index:  index,
		logger: o.logger.With("collection", name),
	}
	metrics.TotalVectors.WithLabelValues(name).Set(0)
	return c, nil
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Store inserts or replaces a single embedding.
func (c *Collection) Store(id string, embedding []float32, metadata map[string]any) error {
	return c.StoreRecord(types.Record{ID: id, Embedding: embedding, Metadata: metadata})
}

// StoreRecord inserts or replaces rec. The collection keeps its own copy.
func (c *Collection) StoreRecord(rec types.Record) error {
	err := c.index.Add(rec)
	c.observe("store", err)
	if err != nil {
		c.logger.Debug("store failed", "id", rec.ID, "error", err)
		return fmt.Errorf("store %q: %w", rec.ID, err)
	}
	c.logger.Debug("stored", "id", rec.ID, "dimension", len(rec.Embedding))
	return nil
}

// BatchStore stores parallel slices of ids, embeddings and (optionally)
// metadata. The outer error is ErrBatchLength when the slices disagree; in
// that case nothing is stored. Otherwise the returned slice holds one entry
// per item, nil on success.
func (c *Collection) BatchStore(ids []string, embeddings [][]float32, metadatas []map[string]any) ([]error, error) {
	if len(ids) != len(embeddings) || (metadatas != nil && len(metadatas) != len(ids)) {
		return nil, fmt.Errorf("%w: %d ids, %d embeddings, %d metadata", ErrBatchLength, len(ids), len(embeddings), len(metadatas))
	}
	recs := make([]types.Record, len(ids))
	for i := range ids {
		recs[i] = types.Record{ID: ids[i], Embedding: embeddings[i]}
		if metadatas != nil {
			recs[i].Metadata = metadatas[i]
		}
	}
	return c.BatchStoreRecords(recs), nil
}

// BatchStoreRecords stores each record in order. A failing record does not
// stop the others.
func (c *Collection) BatchStoreRecords(recs []types.Record) []error {
	errs := make([]error, len(recs))
	failed := 0
	for i, rec := range recs {
		if err := c.index.Add(rec); err != nil {
			errs[i] = fmt.Errorf("store %q: %w", rec.ID, err)
			failed++
		}
	}

	status := metrics.StatusOK
	if failed > 0 {
		status = metrics.StatusError
		c.logger.Warn("batch store partially failed", "records", len(recs), "failed", failed)
	} else {
		c.logger.Debug("batch stored", "records", len(recs))
	}
	metrics.OperationsTotal.WithLabelValues(c.name, "batch_store", status).Inc()
	metrics.TotalVectors.WithLabelValues(c.name).Set(float64(c.index.Len()))
	return errs
}

// Search returns up to limit results using the configured EfSearch.
func (c *Collection) Search(query []float32, limit int, f filter.Filter) ([]types.SearchResult, error) {
	return c.SearchWithEf(query, limit, 0, f)
}

// SearchWithEf is Search with an explicit candidate list size. ef <= 0
// selects the configured EfSearch; values below limit are raised to limit.
func (c *Collection) SearchWithEf(query []float32, limit, ef int, f filter.Filter) ([]types.SearchResult, error) {
	start := time.Now()
	res, err := c.index.Search(query, limit, ef, f)
	metrics.SearchDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	metrics.OperationsTotal.WithLabelValues(c.name, "search", metrics.Status(err)).Inc()
	if err != nil {
		c.logger.Debug("search failed", "error", err)
		return nil, fmt.Errorf("search: %w", err)
	}
	c.logger.Debug("searched", "limit", limit, "results", len(res))
	return res, nil
}

// Get returns a copy of the record stored under id.
func (c *Collection) Get(id string) (types.Record, bool) {
	return c.index.Get(id)
}

// Delete removes id. Deleting a missing id is not an error; the result
// reports whether something was removed.
func (c *Collection) Delete(id string) bool {
	ok := c.index.Delete(id)
	c.observe("delete", nil)
	c.logger.Debug("deleted", "id", id, "found", ok)
	return ok
}

// Clear drops every record. A fixed dimension stays fixed.
func (c *Collection) Clear() {
	c.index.Clear()
	c.observe("clear", nil)
	c.logger.Info("collection cleared")
}

// Size returns the number of live records.
func (c *Collection) Size() int {
	return c.index.Len()
}

// Info reports the configuration and current size.
func (c *Collection) Info() Info {
	return Info{
		Name:           c.name,
		Metric:         c.cfg.Metric,
		Precision:      c.cfg.Precision,
		Dimension:      c.index.Dimension(),
		M:              c.cfg.M,
		EfConstruction: c.cfg.EfConstruction,
		EfSearch:       c.cfg.EfSearch,
		VectorCount:    c.index.Len(),
	}
}

// Stats exposes graph statistics. ok is false for brute-force collections.
func (c *Collection) Stats() (hnsw.Stats, bool) {
	g, ok := c.index.(*hnsw.Index)
	if !ok {
		return hnsw.Stats{}, false
	}
	return g.Stats(), true
}

func (c *Collection) observe(op string, err error) {
	metrics.OperationsTotal.WithLabelValues(c.name, op, metrics.Status(err)).Inc()
	metrics.TotalVectors.WithLabelValues(c.name).Set(float64(c.index.Len()))
}
