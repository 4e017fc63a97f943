// Package types holds the value types shared between the index, the
// collection surface and its collaborators.
package types

import "github.com/sanonone/kektorindex/pkg/core/distance"

// Record is one indexed document: an identifier, its embedding, the metadata
// used by filters and an opaque payload returned with search results.
type Record struct {
	ID        string         `json:"id"`
	Embedding []float32      `json:"embedding"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Content   any            `json:"content,omitempty"`
}

// SearchResult is a single ranked hit. Higher scores are more similar.
type SearchResult struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Content  any            `json:"content,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Candidate is the internal search unit: an arena slot and its similarity to
// the query.
type Candidate struct {
	Slot  uint32
	Score float64
}

// IndexInfo describes a collection for APIs and diagnostics.
type IndexInfo struct {
	Name           string             `json:"name"`
	Metric         distance.Metric    `json:"metric"`
	Precision      distance.Precision `json:"precision"`
	Dimension      int                `json:"dimension"`
	M              int                `json:"m"`
	EfConstruction int                `json:"ef_construction"`
	EfSearch       int                `json:"ef_search"`
	VectorCount    int                `json:"vector_count"`
}
