// Package commands defines the Cobra commands of the kektorindex binary.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sanonone/kektorindex/pkg/config"
)

// Set at build time via -ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

type globalFlags struct {
	configPath string
	logLevel   string
}

// NewRootCmd constructs the root command all subcommands attach to.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "kektorindex",
		Short: "In-memory HNSW vector index for retrieval-augmented generation",
		Long: `kektorindex keeps embeddings in an in-memory HNSW graph and answers
approximate nearest-neighbour queries with metadata filtering.

'serve' exposes collections as MCP tools over stdio, 'bench' measures
recall and latency against an exact scan.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to a YAML or TOML config file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")

	root.AddCommand(
		newServeCmd(g),
		newBenchCmd(g),
		newVersionCmd(),
	)
	return root
}

// load reads the config file and applies the flag overrides.
func (g *globalFlags) load() (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	return cfg, cfg.Validate()
}

// newLogger writes JSON to stderr; stdout belongs to the MCP transport.
func newLogger(cfg config.Config) *slog.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
