// Package core is the embedded surface of kektorindex: named collections of
// vectors backed by an HNSW graph (or an exact scan), plus a registry that
// keeps several of them side by side.
package core

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/tidwall/btree"

	"github.com/sanonone/kektorindex/pkg/core/hnsw"
	"github.com/sanonone/kektorindex/pkg/metrics"
)

// DB is a registry of independent collections. Each collection has its own
// lock; the registry lock only guards the name table.
type DB struct {
	mu          sync.RWMutex
	collections *btree.Map[string, *Collection]
	opts        []Option
	logger      *slog.Logger
}

// NewDB creates an empty registry. opts are applied to every collection it
// creates, before the per-call options.
func NewDB(opts ...Option) *DB {
	o := buildOptions(opts)
	return &DB{
		collections: btree.NewMap[string, *Collection](0),
		opts:        opts,
		logger:      o.logger,
	}
}

// CreateCollection creates and registers a new collection.
func (s *DB) CreateCollection(name string, cfg hnsw.Config, opts ...Option) (*Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections.Get(name); ok {
		return nil, fmt.Errorf("%w: %q", ErrCollectionExists, name)
	}

	all := make([]Option, 0, len(s.opts)+len(opts))
	all = append(all, s.opts...)
	all = append(all, opts...)
	c, err := NewCollection(name, cfg, all...)
	if err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}

	s.collections.Set(name, c)
	s.logger.Info("collection created", "collection", name, "metric", c.cfg.Metric, "dimension", c.cfg.Dimension, "m", c.cfg.M)
	return c, nil
}

// Collection looks a collection up by name.
func (s *DB) Collection(name string) (*Collection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collections.Get(name)
}

// MustCollection is Collection returning ErrCollectionNotFound instead of a
// boolean.
func (s *DB) MustCollection(name string) (*Collection, error) {
	c, ok := s.Collection(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCollectionNotFound, name)
	}
	return c, nil
}

// DropCollection removes a collection and all of its records.
func (s *DB) DropCollection(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections.Delete(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrCollectionNotFound, name)
	}
	c.Clear()
	metrics.Forget(name)
	s.logger.Info("collection dropped", "collection", name)
	return nil
}

// Collections returns the registered names in sorted order.
func (s *DB) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, s.collections.Len())
	s.collections.Scan(func(name string, _ *Collection) bool {
		names = append(names, name)
		return true
	})
	return names
}

// Info returns the description of every collection, sorted by name.
func (s *DB) Info() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Info, 0, s.collections.Len())
	s.collections.Scan(func(_ string, c *Collection) bool {
		out = append(out, c.Info())
		return true
	})
	return out
}
