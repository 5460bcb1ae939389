package index

import (
	"context"
	"fmt"
)

// Embedder turns text into vectors. Implemented by EmbedClient.
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// Index combines the embedder and the vector store into the semantic search
// collaborator consumed by the recommendation pipeline.
type Index struct {
	store    *Store
	embedder Embedder
}

// New creates a semantic index over the given store and embedder.
func New(store *Store, embedder Embedder) *Index {
	return &Index{store: store, embedder: embedder}
}

// Search embeds the query text and returns the topK closest assessments by
// cosine distance, ascending.
func (ix *Index) Search(ctx context.Context, text string, topK int) ([]Result, error) {
	vec, err := ix.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return ix.store.Search(ctx, vec, topK)
}

// Count reports the number of indexed assessments.
func (ix *Index) Count() int {
	return ix.store.Count()
}
