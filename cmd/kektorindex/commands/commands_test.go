package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanonone/kektorindex/pkg/config"
)

func TestRunBench(t *testing.T) {
	report, err := runBench(benchOptions{
		N: 400, Dim: 16, Queries: 20, K: 10,
		M: 16, EfConstruction: 100, EfSearch: 100,
		Seed: 1, Metric: "cosine", Precision: "float32",
	})
	require.NoError(t, err)
	assert.Equal(t, 400, report.Vectors)
	assert.GreaterOrEqual(t, report.Recall, 0.9)
	assert.LessOrEqual(t, report.Recall, 1.0)
	assert.NotEmpty(t, report.Backend)
	assert.LessOrEqual(t, report.MeanLatency, report.P99Latency)
}

func TestRunBenchValidation(t *testing.T) {
	_, err := runBench(benchOptions{N: 0, Dim: 4, Queries: 1, K: 1, Metric: "cosine"})
	assert.Error(t, err)
	_, err = runBench(benchOptions{N: 10, Dim: 4, Queries: 1, K: 1, M: 16, EfConstruction: 10, EfSearch: 10, Metric: "hamming"})
	assert.Error(t, err)
}

func TestBenchCommandJSON(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"bench", "--n", "200", "--dim", "8", "--queries", "5", "--json"})
	require.NoError(t, root.Execute())

	var report map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.EqualValues(t, 200, report["vectors"])
	assert.Contains(t, report, "recall")
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "kektorindex dev")
}

func TestBuildDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kektor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
collections:
  - name: kb
    dimension: 4
  - name: exact
    brute_force: true
`), 0o600))

	g := &globalFlags{configPath: path, logLevel: "debug"}
	cfg, err := g.load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)

	db, err := buildDB(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, []string{"exact", "kb"}, db.Collections())

	kb, ok := db.Collection("kb")
	require.True(t, ok)
	assert.Equal(t, 4, kb.Info().Dimension)

	exact, ok := db.Collection("exact")
	require.True(t, ok)
	_, isGraph := exact.Stats()
	assert.False(t, isGraph)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	g := &globalFlags{logLevel: "chatty"}
	_, err := g.load()
	assert.ErrorIs(t, err, config.ErrInvalid)
}
