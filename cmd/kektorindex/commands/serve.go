package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	kmcp "github.com/sanonone/kektorindex/internal/mcp"
	"github.com/sanonone/kektorindex/pkg/config"
	"github.com/sanonone/kektorindex/pkg/core"
	"github.com/sanonone/kektorindex/pkg/embeddings"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var (
		metricsAddr       string
		defaultCollection string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve collections as MCP tools over stdio",
		Long: `Start an MCP server on stdin/stdout exposing the tools store_document,
search, delete_document and collection_info.

Collections listed in the config file are created at startup; others are
created on first store with default parameters.

Examples:
  kektorindex serve --config kektor.yaml
  kektorindex serve --metrics-addr :9091`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				cfg.MetricsAddr = metricsAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, defaultCollection, newLogger(cfg))
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9091)")
	cmd.Flags().StringVar(&defaultCollection, "collection", kmcp.DefaultCollection, "Collection used when a tool call names none")
	return cmd
}

// buildDB creates the collections declared in cfg.
func buildDB(cfg config.Config, log *slog.Logger) (*core.DB, error) {
	db := core.NewDB(core.WithLogger(log))
	for _, c := range cfg.Collections {
		var opts []core.Option
		if c.BruteForce {
			opts = append(opts, core.WithBruteForce())
		}
		if _, err := db.CreateCollection(c.Name, c.IndexConfig(), opts...); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func serve(ctx context.Context, cfg config.Config, defaultCollection string, log *slog.Logger) error {
	db, err := buildDB(cfg, log)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	embedder, err := embeddings.New(cfg.Embedder)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	srv, err := kmcp.NewServer(db, embedder,
		kmcp.WithLogger(log),
		kmcp.WithDefaultCollection(defaultCollection))
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		httpServer := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		eg.Go(func() error {
			log.Info("metrics endpoint listening", "addr", cfg.MetricsAddr)
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			<-ctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	eg.Go(func() error {
		// The session ends when the client closes stdin; stop everything else too.
		defer cancel()
		log.Info("mcp server running on stdio", "collections", db.Collections(), "embedder", cfg.Embedder.Type)
		if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	})

	err = eg.Wait()
	log.Info("server stopped")
	return err
}
