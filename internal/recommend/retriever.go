package recommend

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/assesskit/assessrec/internal/catalog"
	"github.com/assesskit/assessrec/internal/index"
)

// Searcher is the semantic search collaborator: results ordered by cosine
// distance ascending, best first. Implemented by index.Index.
type Searcher interface {
	Search(ctx context.Context, text string, topK int) ([]index.Result, error)
}

// Retriever produces the ranked candidate set for a resolved query. A
// failing searcher is fatal for the request: without candidates no
// recommendation is possible.
type Retriever struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewRetriever creates a retriever over the given searcher.
func NewRetriever(searcher Searcher, logger *zap.Logger) *Retriever {
	return &Retriever{searcher: searcher, logger: logger}
}

// Retrieve returns up to topK candidates in collaborator order, converting
// cosine distance d to a similarity score round(1-d, 3). An empty result is
// not an error.
func (r *Retriever) Retrieve(ctx context.Context, text string, topK int) ([]catalog.Candidate, error) {
	results, err := r.searcher.Search(ctx, text, topK)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	candidates := make([]catalog.Candidate, 0, len(results))
	for _, res := range results {
		candidates = append(candidates, catalog.Candidate{
			Assessment: res.Assessment,
			Score:      roundScore(1 - res.Distance),
		})
	}

	r.logger.Debug("retrieved candidates", zap.Int("count", len(candidates)))
	return candidates, nil
}

func roundScore(v float64) float64 {
	return math.Round(v*1000) / 1000
}
