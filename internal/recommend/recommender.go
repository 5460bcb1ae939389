package recommend

import (
	"context"

	"go.uber.org/zap"

	"github.com/assesskit/assessrec/internal/ai"
	"github.com/assesskit/assessrec/internal/catalog"
)

const (
	// candidateTopK is how many semantic candidates are offered to the
	// provider for reranking.
	candidateTopK = 35

	// maxResultsCeiling caps a single response regardless of what the
	// caller asked for.
	maxResultsCeiling = 10
	defaultMaxResults = 10
)

// Recommender runs the two-stage pipeline: resolve the query, retrieve
// semantic candidates, ask the provider chain for a selection, parse it and
// return score-free assessments. The only fatal per-request path is the
// retrieval step.
type Recommender struct {
	resolver  *Resolver
	retriever *Retriever
	chain     *ai.Chain
	logger    *zap.Logger
}

// New wires the pipeline components together. All handles are immutable
// after construction; a Recommender is safe for concurrent use.
func New(resolver *Resolver, retriever *Retriever, chain *ai.Chain, logger *zap.Logger) *Recommender {
	return &Recommender{
		resolver:  resolver,
		retriever: retriever,
		chain:     chain,
		logger:    logger,
	}
}

// Recommend returns at most min(maxResults, 10) assessments for the query,
// unique by url, without similarity scores.
func (r *Recommender) Recommend(ctx context.Context, query string, maxResults int) ([]catalog.Assessment, error) {
	maxResults = clampMaxResults(maxResults)

	resolved := r.resolver.Resolve(ctx, query)

	candidates, err := r.retriever.Retrieve(ctx, resolved, candidateTopK)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		r.logger.Info("no candidates for query, returning empty result")
		return []catalog.Assessment{}, nil
	}

	prompt := BuildPrompt(resolved, candidates, maxResults)

	raw, err := r.chain.Select(ctx, prompt)
	if err != nil {
		return nil, err
	}

	selection := ParseSelection(raw, candidates, maxResults)

	r.logger.Info("recommendation ready",
		zap.Int("candidates", len(candidates)),
		zap.Int("selected", len(selection)),
	)
	return selection, nil
}

func clampMaxResults(n int) int {
	if n <= 0 {
		return defaultMaxResults
	}
	if n > maxResultsCeiling {
		return maxResultsCeiling
	}
	return n
}
