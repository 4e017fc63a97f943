package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/kektorindex/pkg/core"
	"github.com/sanonone/kektorindex/pkg/core/filter"
	"github.com/sanonone/kektorindex/pkg/rag"
)

func (s *Server) collectionName(name string) string {
	if name == "" {
		return s.collection
	}
	return name
}

// ensureCollection returns the named collection, creating it with the
// server's default parameters if missing.
func (s *Server) ensureCollection(name string) (*core.Collection, error) {
	if c, ok := s.db.Collection(name); ok {
		return c, nil
	}
	c, err := s.db.CreateCollection(name, s.newConfig())
	if errors.Is(err, core.ErrCollectionExists) {
		// Lost a race with another call.
		return s.db.MustCollection(name)
	}
	return c, err
}

func (s *Server) handleStoreDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	args StoreDocumentArgs,
) (*mcp.CallToolResult, StoreDocumentResult, error) {
	name := s.collectionName(args.Collection)
	col, err := s.ensureCollection(name)
	if err != nil {
		return nil, StoreDocumentResult{}, err
	}

	ix := rag.NewIndexer(col, s.embedder, rag.WithIndexerLogger(s.logger))
	ids, errs, err := ix.Index(ctx, []rag.Document{{ID: args.ID, Text: args.Text, Metadata: args.Metadata}})
	if err != nil {
		return nil, StoreDocumentResult{}, err
	}
	if errs[0] != nil {
		return nil, StoreDocumentResult{}, errs[0]
	}
	return nil, StoreDocumentResult{ID: ids[0], Collection: name, Status: "stored"}, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	args SearchArgs,
) (*mcp.CallToolResult, SearchResult, error) {
	col, err := s.db.MustCollection(s.collectionName(args.Collection))
	if err != nil {
		return nil, SearchResult{}, err
	}

	var f filter.Filter
	if len(args.Filter) > 0 {
		if f, err = filter.FromMap(args.Filter); err != nil {
			return nil, SearchResult{}, fmt.Errorf("filter: %w", err)
		}
	}

	limit := args.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var opts []rag.RetrieverOption
	if args.MinScore != nil {
		opts = append(opts, rag.WithMinScore(*args.MinScore))
	}
	hits, err := rag.NewRetriever(col, s.embedder, opts...).Retrieve(ctx, args.Query, limit, f)
	if err != nil {
		return nil, SearchResult{}, err
	}

	out := SearchResult{Results: make([]SearchHit, len(hits)), Count: len(hits)}
	for i, h := range hits {
		text, _ := h.Content.(string)
		out.Results[i] = SearchHit{ID: h.ID, Score: h.Score, Text: text, Metadata: h.Metadata}
	}
	return nil, out, nil
}

func (s *Server) handleDeleteDocument(
	_ context.Context,
	_ *mcp.CallToolRequest,
	args DeleteDocumentArgs,
) (*mcp.CallToolResult, DeleteDocumentResult, error) {
	col, err := s.db.MustCollection(s.collectionName(args.Collection))
	if err != nil {
		return nil, DeleteDocumentResult{}, err
	}
	return nil, DeleteDocumentResult{ID: args.ID, Deleted: col.Delete(args.ID)}, nil
}

func (s *Server) handleCollectionInfo(
	_ context.Context,
	_ *mcp.CallToolRequest,
	args CollectionInfoArgs,
) (*mcp.CallToolResult, CollectionInfoResult, error) {
	if args.Collection == "" {
		return nil, CollectionInfoResult{Collections: s.db.Info()}, nil
	}
	col, err := s.db.MustCollection(args.Collection)
	if err != nil {
		return nil, CollectionInfoResult{}, err
	}
	return nil, CollectionInfoResult{Collections: []core.Info{col.Info()}}, nil
}
