package rag

import (
	"github.com/sanonone/kektorindex/pkg/core"
	"github.com/sanonone/kektorindex/pkg/core/filter"
	"github.com/sanonone/kektorindex/pkg/core/types"
)

// Store is the part of a collection the indexing pipeline needs.
type Store interface {
	BatchStoreRecords(recs []types.Record) []error
	Search(query []float32, limit int, f filter.Filter) ([]types.SearchResult, error)
	Delete(id string) bool
}

var _ Store = (*core.Collection)(nil)

// Document is a piece of text to index. An empty ID gets a random UUID.
type Document struct {
	ID       string         `json:"id,omitempty"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Metadata keys written on chunk records.
const (
	MetaDocumentID = "document_id"
	MetaChunkIndex = "chunk_index"
	MetaChunkCount = "chunk_count"
)
