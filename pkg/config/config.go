// Package config loads the kektorindex server configuration from YAML or
// TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/sanonone/kektorindex/pkg/core/distance"
	"github.com/sanonone/kektorindex/pkg/core/hnsw"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the top-level structure of a configuration file.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level" json:"log_level"`
	// MetricsAddr enables the Prometheus endpoint when not empty (e.g. ":9091").
	MetricsAddr string             `yaml:"metrics_addr" toml:"metrics_addr" json:"metrics_addr"`
	Embedder    EmbedderConfig     `yaml:"embedder" toml:"embedder" json:"embedder"`
	Collections []CollectionConfig `yaml:"collections" toml:"collections" json:"collections"`
}

// EmbedderConfig selects and configures the embedding service.
type EmbedderConfig struct {
	Type    string   `yaml:"type" toml:"type" json:"type"` // "ollama" or "openai"
	URL     string   `yaml:"url" toml:"url" json:"url"`
	Model   string   `yaml:"model" toml:"model" json:"model"`
	APIKey  string   `yaml:"api_key" toml:"api_key" json:"api_key"`
	Timeout Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
}

// CollectionConfig declares a collection created at startup. Zero values
// take the index defaults.
type CollectionConfig struct {
	Name           string             `yaml:"name" toml:"name" json:"name"`
	Dimension      int                `yaml:"dimension" toml:"dimension" json:"dimension"`
	Metric         distance.Metric    `yaml:"metric" toml:"metric" json:"metric"`
	Precision      distance.Precision `yaml:"precision" toml:"precision" json:"precision"`
	M              int                `yaml:"m" toml:"m" json:"m"`
	EfConstruction int                `yaml:"ef_construction" toml:"ef_construction" json:"ef_construction"`
	EfSearch       int                `yaml:"ef_search" toml:"ef_search" json:"ef_search"`
	// MaxLevel is a pointer so that an explicit 0 (single layer) differs
	// from "not set".
	MaxLevel   *int    `yaml:"max_level" toml:"max_level" json:"max_level"`
	Gamma      float64 `yaml:"gamma" toml:"gamma" json:"gamma"`
	Seed       int64   `yaml:"seed" toml:"seed" json:"seed"`
	BruteForce bool    `yaml:"brute_force" toml:"brute_force" json:"brute_force"`
}

// Default returns a working configuration for a local Ollama.
func Default() Config {
	return Config{
		LogLevel: "info",
		Embedder: EmbedderConfig{
			Type:    "ollama",
			URL:     "http://localhost:11434",
			Model:   "nomic-embed-text",
			Timeout: Duration(60 * time.Second),
		},
	}
}

// IndexConfig converts the declaration into index parameters.
func (c CollectionConfig) IndexConfig() hnsw.Config {
	cfg := hnsw.DefaultConfig()
	cfg.Dimension = c.Dimension
	cfg.Seed = c.Seed
	if c.Metric != "" {
		cfg.Metric = c.Metric
	}
	if c.Precision != "" {
		cfg.Precision = c.Precision
	}
	if c.M != 0 {
		cfg.M = c.M
	}
	if c.EfConstruction != 0 {
		cfg.EfConstruction = c.EfConstruction
	}
	if c.EfSearch != 0 {
		cfg.EfSearch = c.EfSearch
	}
	if c.MaxLevel != nil {
		cfg.MaxLevel = *c.MaxLevel
	}
	if c.Gamma != 0 {
		cfg.Gamma = c.Gamma
	}
	return cfg
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return l, nil
}

// Load reads path, expanding ${VAR} references from the environment, and
// decodes it strictly: unknown keys are errors. The format follows the file
// extension (.yaml, .yml or .toml). An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	data := []byte(os.ExpandEnv(string(raw)))

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("YAML syntax error in %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("TOML syntax error in %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("%w: unsupported config extension %q", ErrInvalid, ext)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Embedder.Type {
	case "", "ollama", "openai":
	default:
		return fmt.Errorf("%w: unknown embedder type %q", ErrInvalid, c.Embedder.Type)
	}
	if c.Embedder.Timeout < 0 {
		return fmt.Errorf("%w: negative embedder timeout", ErrInvalid)
	}

	seen := make(map[string]bool, len(c.Collections))
	for i, col := range c.Collections {
		if col.Name == "" {
			return fmt.Errorf("%w: collection #%d has no name", ErrInvalid, i)
		}
		if seen[col.Name] {
			return fmt.Errorf("%w: duplicate collection %q", ErrInvalid, col.Name)
		}
		seen[col.Name] = true
		if _, err := col.IndexConfig().Normalize(); err != nil {
			return fmt.Errorf("%w: collection %q: %w", ErrInvalid, col.Name, err)
		}
	}
	return nil
}
