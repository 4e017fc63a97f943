// Package distance provides the similarity metrics used to rank vectors.
//
// Every metric is exposed as a similarity: a larger value always means "closer".
// Metrics that are naturally distances (Euclidean, Manhattan) are converted with
// 1/(1+d), so the graph index can order candidates the same way regardless of
// the configured metric.
//
// The package uses runtime CPU detection to dispatch to the most efficient
// kernel available: Gonum BLAS (SIMD) when the CPU exposes AVX2 or ASIMD, and
// plain Go loops otherwise.
package distance

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Metric identifies a similarity function.
type Metric string

const (
	// Cosine is dot(a,b)/(|a||b|), 0 when either norm is 0.
	Cosine Metric = "cosine"
	// DotProduct is the raw inner product. Use it with pre-normalized vectors.
	DotProduct Metric = "dot"
	// Euclidean is 1/(1+L2(a,b)), in (0,1].
	Euclidean Metric = "euclidean"
	// Manhattan is 1/(1+L1(a,b)), in (0,1].
	Manhattan Metric = "manhattan"
	// Angular is 1 - arccos(cosine)/pi, in [0,1].
	Angular Metric = "angular"
	// RBF is the Gaussian kernel exp(-gamma*|a-b|^2), in (0,1].
	RBF Metric = "rbf"
)

// DefaultGamma is the RBF kernel width used when none is configured.
const DefaultGamma = 1.0

var (
	// ErrDimensionMismatch is matched by every *DimensionError.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrUnsupportedMetric is returned for unknown metric names.
	ErrUnsupportedMetric = errors.New("unsupported metric")
)

// DimensionError reports two vectors (or a vector and an index) whose
// lengths disagree.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Is lets errors.Is(err, ErrDimensionMismatch) match.
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// SimilarityFunc scores two equal-length vectors. Larger is more similar.
type SimilarityFunc func(a, b []float32) (float64, error)

type options struct {
	gamma float64
}

// Option tunes metric construction.
type Option func(*options)

// WithGamma sets the RBF kernel width. Ignored by other metrics.
func WithGamma(gamma float64) Option {
	return func(o *options) {
		o.gamma = gamma
	}
}

// Metrics lists every supported metric.
func Metrics() []Metric {
	return []Metric{Cosine, DotProduct, Euclidean, Manhattan, Angular, RBF}
}

// Valid reports whether m is a supported metric.
func (m Metric) Valid() bool {
	switch m {
	case Cosine, DotProduct, Euclidean, Manhattan, Angular, RBF:
		return true
	}
	return false
}

// ParseMetric resolves a metric name, accepting a few common aliases.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cosine", "cos":
		return Cosine, nil
	case "dot", "dot_product", "dotproduct", "ip", "inner_product":
		return DotProduct, nil
	case "euclidean", "l2":
		return Euclidean, nil
	case "manhattan", "l1":
		return Manhattan, nil
	case "angular":
		return Angular, nil
	case "rbf", "gaussian":
		return RBF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMetric, s)
}

// Get returns the similarity function for m.
func Get(m Metric, opts ...Option) (SimilarityFunc, error) {
	o := options{gamma: DefaultGamma}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	switch m {
	case Cosine:
		return cosineSimilarity, nil
	case DotProduct:
		return dotSimilarity, nil
	case Euclidean:
		return euclideanSimilarity, nil
	case Manhattan:
		return manhattanSimilarity, nil
	case Angular:
		return angularSimilarity, nil
	case RBF:
		if o.gamma <= 0 || math.IsNaN(o.gamma) || math.IsInf(o.gamma, 0) {
			return nil, fmt.Errorf("rbf gamma must be a positive finite number, got %v", o.gamma)
		}
		gamma := o.gamma
		return func(a, b []float32) (float64, error) {
			if err := checkDims(a, b); err != nil {
				return 0, err
			}
			return math.Exp(-gamma * float64(kernels.sqL2(a, b))), nil
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedMetric, string(m))
}

// Score computes the similarity of a and b under m.
func Score(a, b []float32, m Metric, opts ...Option) (float64, error) {
	fn, err := Get(m, opts...)
	if err != nil {
		return 0, err
	}
	return fn(a, b)
}

func checkDims(a, b []float32) error {
	if len(a) != len(b) {
		return &DimensionError{Expected: len(a), Actual: len(b)}
	}
	return nil
}

func cosine(a, b []float32) float64 {
	na := kernels.norm(a)
	nb := kernels.norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return kernels.dot(a, b) / (na * nb)
}

func cosineSimilarity(a, b []float32) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	return cosine(a, b), nil
}

func dotSimilarity(a, b []float32) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	return kernels.dot(a, b), nil
}

func euclideanSimilarity(a, b []float32) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	return 1 / (1 + math.Sqrt(float64(kernels.sqL2(a, b)))), nil
}

func manhattanSimilarity(a, b []float32) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	return 1 / (1 + float64(kernels.l1(a, b))), nil
}

func angularSimilarity(a, b []float32) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	c := math.Max(-1, math.Min(1, cosine(a, b)))
	return 1 - math.Acos(c)/math.Pi, nil
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	return kernels.norm(v)
}
