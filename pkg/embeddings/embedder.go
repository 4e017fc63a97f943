// Package embeddings turns text into vectors through an external service.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sanonone/kektorindex/pkg/config"
	"github.com/sanonone/kektorindex/pkg/metrics"
)

const defaultTimeout = 60 * time.Second

// ErrEmptyEmbedding is returned when the service answers without a vector.
var ErrEmptyEmbedding = errors.New("embedding service returned an empty vector")

// Embedder defines the interface for converting text into vector representations.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// New builds the embedder selected by cfg.Type ("ollama" when empty).
func New(cfg config.EmbedderConfig) (Embedder, error) {
	switch cfg.Type {
	case "", "ollama":
		return NewOllamaEmbedder(endpoint(cfg.URL, "http://localhost:11434", "/api/embeddings"), cfg.Model, cfg.Timeout.Std()), nil
	case "openai":
		return NewOpenAIEmbedder(endpoint(cfg.URL, "https://api.openai.com", "/v1/embeddings"), cfg.Model, cfg.APIKey, cfg.Timeout.Std()), nil
	default:
		return nil, fmt.Errorf("unknown embedder type %q", cfg.Type)
	}
}

// endpoint appends path to base unless base already ends with it.
func endpoint(base, fallback, path string) string {
	if base == "" {
		base = fallback
	}
	base = strings.TrimRight(base, "/")
	if strings.HasSuffix(base, path) {
		return base
	}
	return base + path
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// observe records the latency of one call.
func observe(provider string, start time.Time, err error) {
	metrics.EmbeddingDuration.WithLabelValues(provider, metrics.Status(err)).Observe(time.Since(start).Seconds())
}
