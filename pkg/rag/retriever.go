package rag

import (
	"context"
	"fmt"

	"github.com/sanonone/kektorindex/pkg/core/filter"
	"github.com/sanonone/kektorindex/pkg/core/types"
	"github.com/sanonone/kektorindex/pkg/embeddings"
)

// Retriever answers text queries against a collection.
type Retriever struct {
	store    Store
	embedder embeddings.Embedder
	minScore float64
	hasMin   bool
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithMinScore drops results scoring below s.
func WithMinScore(s float64) RetrieverOption {
	return func(r *Retriever) {
		r.minScore, r.hasMin = s, true
	}
}

func NewRetriever(store Store, embedder embeddings.Embedder, opts ...RetrieverOption) *Retriever {
	r := &Retriever{store: store, embedder: embedder}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve embeds query and returns up to limit matches satisfying f.
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int, f filter.Filter) ([]types.SearchResult, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}

	res, err := r.store.Search(vec, limit, f)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if !r.hasMin {
		return res, nil
	}

	// Results are sorted by score, so the cut-off is a prefix.
	for i, hit := range res {
		if hit.Score < r.minScore {
			return res[:i], nil
		}
	}
	return res, nil
}
