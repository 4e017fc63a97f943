// Package mcp exposes collections as Model Context Protocol tools, so an
// agent can store and retrieve documents by meaning.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/kektorindex/pkg/core"
	"github.com/sanonone/kektorindex/pkg/core/hnsw"
	"github.com/sanonone/kektorindex/pkg/embeddings"
)

const (
	// Version is reported to MCP clients.
	Version = "0.1.0"

	DefaultCollection = "documents"
	defaultLimit      = 5
)

// Server serves the tools over a DB.
type Server struct {
	db         *core.DB
	embedder   embeddings.Embedder
	collection string
	newConfig  func() hnsw.Config
	logger     *slog.Logger
	server     *mcp.Server
}

// Option configures a Server.
type Option func(*Server)

// WithDefaultCollection names the collection used when a call omits one.
func WithDefaultCollection(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.collection = name
		}
	}
}

// WithCollectionConfig sets the parameters of collections created on demand.
func WithCollectionConfig(cfg hnsw.Config) Option {
	return func(s *Server) { s.newConfig = func() hnsw.Config { return cfg } }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer builds the MCP server and registers its tools and resources.
func NewServer(db *core.DB, embedder embeddings.Embedder, opts ...Option) (*Server, error) {
	if db == nil || embedder == nil {
		return nil, fmt.Errorf("mcp: db and embedder are required")
	}
	s := &Server{
		db:         db,
		embedder:   embedder,
		collection: DefaultCollection,
		newConfig:  hnsw.DefaultConfig,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "kektorindex",
		Version: Version,
	}, nil)

	if err := s.registerTools(); err != nil {
		return nil, err
	}
	s.registerResources()
	return s, nil
}

// Run serves over stdio until ctx ends or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over t.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) registerTools() error {
	storeSchema, err := jsonschema.For[StoreDocumentArgs](nil)
	if err != nil {
		return fmt.Errorf("store_document schema: %w", err)
	}
	searchSchema, err := jsonschema.For[SearchArgs](nil)
	if err != nil {
		return fmt.Errorf("search schema: %w", err)
	}
	deleteSchema, err := jsonschema.For[DeleteDocumentArgs](nil)
	if err != nil {
		return fmt.Errorf("delete_document schema: %w", err)
	}
	infoSchema, err := jsonschema.For[CollectionInfoArgs](nil)
	if err != nil {
		return fmt.Errorf("collection_info schema: %w", err)
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "store_document",
		Description: "Embed a text and store it, with optional metadata, in a collection.",
		InputSchema: storeSchema,
	}, instrument(s.logger, "store_document", s.handleStoreDocument))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the stored documents most similar in meaning to a query, optionally filtered by metadata.",
		InputSchema: searchSchema,
	}, instrument(s.logger, "search", s.handleSearch))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document by id.",
		InputSchema: deleteSchema,
	}, instrument(s.logger, "delete_document", s.handleDeleteDocument))

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "collection_info",
		Description: "Describe one collection or all of them: metric, dimension, size and graph parameters.",
		InputSchema: infoSchema,
	}, instrument(s.logger, "collection_info", s.handleCollectionInfo))

	return nil
}
