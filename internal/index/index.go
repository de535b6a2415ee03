// Package index builds the segment collection and retrieves context from it.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"assistant/internal/domain"
)

// BuildStats describes the outcome of a Build call.
type BuildStats struct {
	Segments int
	Reused   bool
}

// Builder chunks a document, embeds each segment and upserts the pairs into
// the vector store.
type Builder struct {
	chunker  domain.Chunker
	embedder domain.Embedder
	store    domain.VectorStore
	log      *slog.Logger
}

func NewBuilder(chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{chunker: chunker, embedder: embedder, store: store, log: log}
}

// Build populates the store from the document. A collection that already
// holds segments is reused unchanged, making the call safe to repeat.
func (b *Builder) Build(ctx context.Context, doc domain.Document) (BuildStats, error) {
	count, err := b.store.Count(ctx)
	if err != nil {
		return BuildStats{}, fmt.Errorf("count collection: %w", err)
	}
	if count > 0 {
		b.log.Info("reusing existing collection", "segments", count)
		return BuildStats{Segments: count, Reused: true}, nil
	}
	return b.populate(ctx, doc)
}

// Rebuild clears the collection and populates it from scratch.
func (b *Builder) Rebuild(ctx context.Context, doc domain.Document) (BuildStats, error) {
	if err := b.store.Clear(ctx); err != nil {
		return BuildStats{}, fmt.Errorf("clear collection: %w", err)
	}
	return b.populate(ctx, doc)
}

func (b *Builder) populate(ctx context.Context, doc domain.Document) (BuildStats, error) {
	segments, err := b.chunker.Chunk(doc)
	if err != nil {
		return BuildStats{}, fmt.Errorf("chunk document: %w", err)
	}
	if len(segments) == 0 {
		return BuildStats{}, fmt.Errorf("document %s produced no segments", doc.Path)
	}
	vectors := make([][]float64, len(segments))
	for i := range segments {
		vec, err := b.embedder.Embed(ctx, segments[i].Text)
		if err != nil {
			return BuildStats{}, fmt.Errorf("embed segment %d: %w", i, err)
		}
		vectors[i] = vec
	}
	if err := b.store.Init(ctx, b.embedder.Dimension()); err != nil {
		return BuildStats{}, fmt.Errorf("init collection: %w", err)
	}
	if err := b.store.Upsert(ctx, segments, vectors); err != nil {
		return BuildStats{}, fmt.Errorf("upsert segments: %w", err)
	}
	b.log.Info("collection built", "segments", len(segments), "dimension", b.embedder.Dimension())
	return BuildStats{Segments: len(segments)}, nil
}

// Retriever embeds a query and returns the top-k most similar segments.
type Retriever struct {
	embedder domain.Embedder
	store    domain.VectorStore
}

func NewRetriever(embedder domain.Embedder, store domain.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve returns up to k segments ordered by descending similarity.
// k <= 0 and an empty collection both yield an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return []domain.SearchResult{}, nil
	}
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return r.store.Search(ctx, vec, k)
}

// JoinContext concatenates retrieved segment texts into one context string.
func JoinContext(results []domain.SearchResult) string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Segment.Text)
	}
	return strings.Join(texts, "\n\n")
}
