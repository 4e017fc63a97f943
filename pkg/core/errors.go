package core

import (
	"errors"

	"github.com/sanonone/kektorindex/pkg/core/distance"
	"github.com/sanonone/kektorindex/pkg/core/hnsw"
)

// Errors surfaced by collections. Use errors.Is to match them.
var (
	ErrDimensionMismatch = distance.ErrDimensionMismatch
	ErrInvalidConfig     = hnsw.ErrInvalidConfig
	ErrEmptyID           = hnsw.ErrEmptyID
	ErrEmptyEmbedding    = hnsw.ErrEmptyEmbedding

	ErrCollectionExists   = errors.New("collection already exists")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrBatchLength        = errors.New("batch slices have different lengths")
)

// DimensionError carries the expected and actual vector length.
type DimensionError = distance.DimensionError
