package hnsw

import (
	"errors"
	"fmt"
	"math"

	"github.com/sanonone/kektorindex/pkg/core/distance"
)

var (
	// ErrInvalidConfig is returned by New for unusable parameters.
	ErrInvalidConfig = errors.New("invalid index configuration")
	// ErrEmptyID is returned when a record has no identifier.
	ErrEmptyID = errors.New("empty id")
	// ErrEmptyEmbedding is returned for zero-length embeddings.
	ErrEmptyEmbedding = errors.New("empty embedding")
)

// Config holds the construction parameters of an Index.
type Config struct {
	// Dimension fixes the vector length up front. 0 means "take it from the
	// first successful insert". Once fixed it never changes, not even after
	// Clear.
	Dimension int `json:"dimension" yaml:"dimension" toml:"dimension"`
	// M is the maximum number of neighbours per node on every layer.
	M int `json:"m" yaml:"m" toml:"m"`
	// EfConstruction is the candidate list size used while linking a new node.
	EfConstruction int `json:"ef_construction" yaml:"ef_construction" toml:"ef_construction"`
	// EfSearch is the default candidate list size of a query.
	EfSearch int `json:"ef_search" yaml:"ef_search" toml:"ef_search"`
	// Metric is the similarity function. Empty means cosine.
	Metric distance.Metric `json:"metric" yaml:"metric" toml:"metric"`
	// MaxLevel caps the level a node can be assigned.
	MaxLevel int `json:"max_level" yaml:"max_level" toml:"max_level"`
	// Gamma is the RBF kernel width. 0 means distance.DefaultGamma.
	Gamma float64 `json:"gamma,omitempty" yaml:"gamma,omitempty" toml:"gamma,omitempty"`
	// Precision selects vector storage. Empty means float32.
	Precision distance.Precision `json:"precision" yaml:"precision" toml:"precision"`
	// Seed drives level assignment. 0 seeds from the clock.
	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"`
}

// DefaultConfig returns the parameters used when nothing else is specified.
func DefaultConfig() Config {
	return Config{
		M:              16,
		EfConstruction: 200,
		EfSearch:       100,
		Metric:         distance.Cosine,
		MaxLevel:       6,
		Gamma:          distance.DefaultGamma,
		Precision:      distance.Float32,
	}
}

// Normalize fills the optional fields and validates the rest. New calls it;
// it is exported so callers can validate a configuration up front.
func (c Config) Normalize() (Config, error) {
	if c.Metric == "" {
		c.Metric = distance.Cosine
	}
	metric, err := distance.ParseMetric(string(c.Metric))
	if err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.Metric = metric
	precision, err := distance.ParsePrecision(string(c.Precision))
	if err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c.Precision = precision
	if c.Gamma == 0 {
		c.Gamma = distance.DefaultGamma
	}

	switch {
	case c.M < 2:
		return c, fmt.Errorf("%w: m must be at least 2, got %d", ErrInvalidConfig, c.M)
	case c.EfConstruction <= 0:
		return c, fmt.Errorf("%w: ef_construction must be positive, got %d", ErrInvalidConfig, c.EfConstruction)
	case c.EfSearch <= 0:
		return c, fmt.Errorf("%w: ef_search must be positive, got %d", ErrInvalidConfig, c.EfSearch)
	case c.MaxLevel < 0:
		return c, fmt.Errorf("%w: max_level must not be negative, got %d", ErrInvalidConfig, c.MaxLevel)
	case c.Dimension < 0:
		return c, fmt.Errorf("%w: dimension must not be negative, got %d", ErrInvalidConfig, c.Dimension)
	case c.Gamma < 0 || math.IsNaN(c.Gamma) || math.IsInf(c.Gamma, 0):
		return c, fmt.Errorf("%w: gamma must be a positive finite number, got %v", ErrInvalidConfig, c.Gamma)
	}
	return c, nil
}
