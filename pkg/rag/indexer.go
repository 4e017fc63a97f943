// Package rag feeds text documents into a collection and retrieves them by
// natural-language query, with an external embedding service in between.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sanonone/kektorindex/pkg/core/types"
	"github.com/sanonone/kektorindex/pkg/embeddings"
)

const defaultConcurrency = 4

// ErrEmptyDocument is reported for documents without text.
var ErrEmptyDocument = errors.New("document has no text")

// Indexer embeds documents and stores them in a collection.
type Indexer struct {
	store       Store
	embedder    embeddings.Embedder
	splitter    Splitter
	concurrency int
	logger      *slog.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithConcurrency bounds the number of embedding calls in flight.
func WithConcurrency(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.concurrency = n
		}
	}
}

// WithSplitter cuts every document into chunks stored as separate records.
// Chunk ids are "<document id>_<n>" unless the document fits in one chunk.
func WithSplitter(s Splitter) IndexerOption {
	return func(ix *Indexer) { ix.splitter = s }
}

// WithIndexerLogger sets the logger. Defaults to slog.Default().
func WithIndexerLogger(l *slog.Logger) IndexerOption {
	return func(ix *Indexer) {
		if l != nil {
			ix.logger = l
		}
	}
}

func NewIndexer(store Store, embedder embeddings.Embedder, opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		store:       store,
		embedder:    embedder,
		concurrency: defaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// chunk is one record to embed, tied back to its document.
type chunk struct {
	doc  int
	id   string
	text string
	meta map[string]any
	vec  []float32
	err  error
}

// Index embeds and stores docs. It returns the id of every document (in
// input order, generated where missing) and one error slot per document, nil
// when the document was stored completely. A document with a chunk that fails
// to embed or to store is not stored at all: chunks already written are
// deleted again. The other documents are unaffected. The outer error
// is only set when ctx ends before the work is done.
func (ix *Indexer) Index(ctx context.Context, docs []Document) ([]string, []error, error) {
	ids := make([]string, len(docs))
	docErrs := make([][]error, len(docs))
	var chunks []*chunk

	for i, doc := range docs {
		ids[i] = doc.ID
		if ids[i] == "" {
			ids[i] = uuid.NewString()
		}
		if doc.Text == "" {
			docErrs[i] = append(docErrs[i], ErrEmptyDocument)
			continue
		}
		chunks = append(chunks, ix.split(i, ids[i], doc)...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.concurrency)
	for _, c := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vec, err := ix.embedder.Embed(gctx, c.text)
			if err != nil {
				c.err = fmt.Errorf("embed %q: %w", c.id, err)
				return nil
			}
			c.vec = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ids, nil, err
	}
	if err := ctx.Err(); err != nil {
		return ids, nil, err
	}

	for _, c := range chunks {
		if c.err != nil {
			docErrs[c.doc] = append(docErrs[c.doc], c.err)
		}
	}

	recs := make([]types.Record, 0, len(chunks))
	owners := make([]int, 0, len(chunks))
	for _, c := range chunks {
		if len(docErrs[c.doc]) > 0 {
			continue
		}
		recs = append(recs, types.Record{ID: c.id, Embedding: c.vec, Metadata: c.meta, Content: c.text})
		owners = append(owners, c.doc)
	}
	storeErrs := ix.store.BatchStoreRecords(recs)
	for i, err := range storeErrs {
		if err != nil {
			docErrs[owners[i]] = append(docErrs[owners[i]], err)
		}
	}

	// A document with a rejected chunk is rolled back whole.
	stored := 0
	for i, rec := range recs {
		if storeErrs[i] != nil {
			continue
		}
		if len(docErrs[owners[i]]) > 0 {
			ix.store.Delete(rec.ID)
			continue
		}
		stored++
	}

	errs := make([]error, len(docs))
	failed := 0
	for i := range docs {
		errs[i] = errors.Join(docErrs[i]...)
		if errs[i] != nil {
			failed++
			ix.logger.Warn("document not indexed", "id", ids[i], "error", errs[i])
		}
	}
	ix.logger.Info("documents indexed", "documents", len(docs), "records", stored, "failed", failed)
	return ids, errs, nil
}

// split turns doc into the chunks to embed.
func (ix *Indexer) split(i int, id string, doc Document) []*chunk {
	if ix.splitter == nil {
		return []*chunk{{doc: i, id: id, text: doc.Text, meta: maps.Clone(doc.Metadata)}}
	}
	texts := ix.splitter.SplitText(doc.Text)
	if len(texts) <= 1 {
		return []*chunk{{doc: i, id: id, text: doc.Text, meta: maps.Clone(doc.Metadata)}}
	}

	out := make([]*chunk, len(texts))
	for n, text := range texts {
		meta := maps.Clone(doc.Metadata)
		if meta == nil {
			meta = make(map[string]any, 3)
		}
		meta[MetaDocumentID] = id
		meta[MetaChunkIndex] = n
		meta[MetaChunkCount] = len(texts)
		out[n] = &chunk{doc: i, id: fmt.Sprintf("%s_%d", id, n), text: text, meta: meta}
	}
	return out
}
