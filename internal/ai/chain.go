package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultCallTimeout = 60 * time.Second

// Chain tries providers strictly in order until one returns usable text.
// Every per-provider fault stays inside the chain; the only error callers
// can see is the request deadline expiring.
type Chain struct {
	providers   []Provider
	callTimeout time.Duration
	logger      *zap.Logger
}

// NewChain builds a fallback chain over the configured providers. At least
// one provider is required.
func NewChain(providers []Provider, callTimeout time.Duration, logger *zap.Logger) (*Chain, error) {
	if len(providers) == 0 {
		return nil, errors.New("at least one provider is required")
	}
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}

	return &Chain{
		providers:   providers,
		callTimeout: callTimeout,
		logger:      logger,
	}, nil
}

// Names lists the configured provider names in fallback order.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return names
}

// Select returns the first provider's non-empty response, or "" when every
// provider failed. A provider failure never surfaces as an error; an error
// is returned only when the request context is done, since a selection made
// under an expired deadline would silently bias the result.
func (c *Chain) Select(ctx context.Context, prompt string) (string, error) {
	for _, provider := range c.providers {
		text, err := c.call(ctx, provider, prompt)

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		if err != nil {
			c.logger.Warn("provider call failed, trying next",
				zap.String("provider", provider.Name()),
				zap.Error(err),
			)
			continue
		}

		if strings.TrimSpace(text) == "" {
			c.logger.Warn("provider returned empty text, trying next",
				zap.String("provider", provider.Name()),
			)
			continue
		}

		c.logger.Debug("provider selection succeeded",
			zap.String("provider", provider.Name()),
		)
		return text, nil
	}

	c.logger.Warn("all providers exhausted")
	return "", nil
}

func (c *Chain) call(ctx context.Context, provider Provider, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	return provider.Generate(callCtx, prompt)
}
