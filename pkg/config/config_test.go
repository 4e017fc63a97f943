package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/kektorindex/pkg/core/distance"
	"github.com/sanonone/kektorindex/pkg/core/hnsw"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("KEKTOR_TEST_KEY", "sk-secret")
	path := writeFile(t, "kektor.yaml", `
log_level: debug
metrics_addr: ":9091"
embedder:
  type: openai
  url: https://api.openai.com
  model: text-embedding-3-small
  api_key: ${KEKTOR_TEST_KEY}
  timeout: 15s
collections:
  - name: docs
    dimension: 384
    metric: euclidean
    m: 32
    max_level: 0
  - name: notes
    brute_force: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9091", cfg.MetricsAddr)
	assert.Equal(t, "sk-secret", cfg.Embedder.APIKey)
	assert.Equal(t, 15*time.Second, cfg.Embedder.Timeout.Std())
	require.Len(t, cfg.Collections, 2)

	docs := cfg.Collections[0].IndexConfig()
	assert.Equal(t, 384, docs.Dimension)
	assert.Equal(t, distance.Euclidean, docs.Metric)
	assert.Equal(t, 32, docs.M)
	assert.Equal(t, 0, docs.MaxLevel)
	assert.Equal(t, hnsw.DefaultConfig().EfConstruction, docs.EfConstruction)

	notes := cfg.Collections[1]
	assert.True(t, notes.BruteForce)
	assert.Equal(t, hnsw.DefaultConfig().MaxLevel, notes.IndexConfig().MaxLevel)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "kektor.toml", `
log_level = "warn"

[embedder]
type = "ollama"
model = "mxbai-embed-large"
timeout = "2m"

[[collections]]
name = "kb"
dimension = 1024
precision = "float16"
ef_search = 64
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "mxbai-embed-large", cfg.Embedder.Model)
	// Not in the file: default kept.
	assert.Equal(t, "http://localhost:11434", cfg.Embedder.URL)
	assert.Equal(t, 2*time.Minute, cfg.Embedder.Timeout.Std())
	require.Len(t, cfg.Collections, 1)

	kb := cfg.Collections[0].IndexConfig()
	assert.Equal(t, distance.Float16, kb.Precision)
	assert.Equal(t, 64, kb.EfSearch)
	assert.Equal(t, 1024, kb.Dimension)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	yamlPath := writeFile(t, "bad.yaml", "log_levle: debug\n")
	_, err := Load(yamlPath)
	assert.Error(t, err)

	tomlPath := writeFile(t, "bad.toml", "metrics_adr = \":1\"\n")
	_, err = Load(tomlPath)
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "conf.json", "{}"))
	assert.ErrorIs(t, err, ErrInvalid)

	cases := map[string]string{
		"bad level":      "log_level: loud\n",
		"bad embedder":   "embedder:\n  type: cohere\n",
		"unnamed":        "collections:\n  - dimension: 3\n",
		"duplicate":      "collections:\n  - name: a\n  - name: a\n",
		"bad metric":     "collections:\n  - name: a\n    metric: hamming\n",
		"bad m":          "collections:\n  - name: a\n    m: 1\n",
		"negative level": "collections:\n  - name: a\n    max_level: -1\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.yaml", content))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Std())

	require.NoError(t, json.Unmarshal([]byte(`1000`), &d))
	assert.Equal(t, time.Microsecond, d.Std())

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	out, err := json.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.JSONEq(t, `"2s"`, string(out))

	path := writeFile(t, "d.yaml", "embedder:\n  timeout: 5000000000\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Embedder.Timeout.Std())
}

func TestLevel(t *testing.T) {
	l, err := Config{LogLevel: "DEBUG"}.Level()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", l.String())
}

func TestLoadAcceptsMetricAndPrecisionAliases(t *testing.T) {
	path := writeFile(t, "aliases.yaml", `
collections:
  - name: compact
    metric: l2
    precision: f16
  - name: scores
    metric: ip
    precision: HALF
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Collections, 2)

	compact, err := cfg.Collections[0].IndexConfig().Normalize()
	require.NoError(t, err)
	assert.Equal(t, distance.Euclidean, compact.Metric)
	assert.Equal(t, distance.Float16, compact.Precision)

	scores, err := cfg.Collections[1].IndexConfig().Normalize()
	require.NoError(t, err)
	assert.Equal(t, distance.DotProduct, scores.Metric)
	assert.Equal(t, distance.Float16, scores.Precision)

	idx, err := hnsw.New(cfg.Collections[0].IndexConfig())
	require.NoError(t, err)
	assert.Equal(t, distance.Float16, idx.Config().Precision)
}
