package index

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assesskit/assessrec/internal/catalog"
)

// Indexer builds the embedding index from catalog entries.
type Indexer struct {
	store    *Store
	embedder Embedder
	logger   *zap.Logger
}

// NewIndexer creates an indexer over the given store and embedder.
func NewIndexer(store *Store, embedder Embedder, logger *zap.Logger) *Indexer {
	return &Indexer{store: store, embedder: embedder, logger: logger}
}

// Index embeds and stores every catalog entry. An already populated store is
// left untouched unless force is set, in which case it is rebuilt from
// scratch.
func (in *Indexer) Index(ctx context.Context, items []catalog.Assessment, force bool) error {
	if existing := in.store.Count(); existing > 0 {
		if !force {
			in.logger.Info("index already populated, skipping",
				zap.Int("assessments", existing),
			)
			return nil
		}
		if err := in.store.Reset(ctx); err != nil {
			return fmt.Errorf("reset index: %w", err)
		}
	}

	for i := range items {
		doc := items[i].DocumentText()

		vec, err := in.embedder.EmbedDocument(ctx, doc)
		if err != nil {
			return fmt.Errorf("embed %q: %w", items[i].Name, err)
		}

		if err := in.store.Upsert(ctx, uuid.New().String(), items[i], vec); err != nil {
			return fmt.Errorf("store %q: %w", items[i].Name, err)
		}

		if (i+1)%100 == 0 {
			in.logger.Info("indexing progress",
				zap.Int("done", i+1),
				zap.Int("total", len(items)),
			)
		}
	}

	in.logger.Info("indexed assessments", zap.Int("count", len(items)))
	return nil
}
