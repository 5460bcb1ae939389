package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultEmbedBaseURL = "http://localhost:11434/api/embed"
	defaultEmbedModel   = "nomic-embed-text"
	embedMaxRetries     = 3
	embedInitialDelay   = 1 * time.Second
)

// sleep is swapped out in tests to avoid real backoff delays.
var sleep = time.Sleep

// EmbedClient talks to an Ollama-compatible embedding endpoint. It uses the
// nomic task prefixes: "search_document: " for indexing and
// "search_query: " for queries, so both sides of the asymmetric retrieval
// land in the same space.
type EmbedClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// EmbedOption configures an EmbedClient.
type EmbedOption func(*EmbedClient)

// WithEmbedBaseURL sets the inference server URL.
func WithEmbedBaseURL(url string) EmbedOption {
	return func(c *EmbedClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithEmbedModel sets the embedding model name.
func WithEmbedModel(model string) EmbedOption {
	return func(c *EmbedClient) {
		if model != "" {
			c.model = model
		}
	}
}

// NewEmbedClient creates an embedding client. Defaults to a local Ollama
// instance with nomic-embed-text.
func NewEmbedClient(opts ...EmbedOption) *EmbedClient {
	c := &EmbedClient{
		baseURL: defaultEmbedBaseURL,
		model:   defaultEmbedModel,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// EmbedDocument embeds a text for indexing.
func (c *EmbedClient) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return c.embed(ctx, "search_document: "+text)
}

// EmbedQuery embeds a search query.
func (c *EmbedClient) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return c.embed(ctx, "search_query: "+query)
}

func (c *EmbedClient) embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	var lastErr error
	delay := embedInitialDelay

	for attempt := 0; attempt < embedMaxRetries; attempt++ {
		if attempt > 0 {
			sleep(delay)
			delay *= 2
		}

		vec, retryable, err := c.doEmbed(ctx, body)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", embedMaxRetries, lastErr)
}

func (c *EmbedClient) doEmbed(ctx context.Context, body []byte) (vec []float32, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("embed request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read embed response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= http.StatusInternalServerError,
			fmt.Errorf("embed endpoint returned status %d: %s", resp.StatusCode, payload)
	}

	var decoded embedResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, false, fmt.Errorf("decode embed response: %w", err)
	}

	if len(decoded.Embeddings) == 0 || len(decoded.Embeddings[0]) == 0 {
		return nil, false, fmt.Errorf("embed endpoint returned no embeddings")
	}

	return decoded.Embeddings[0], false, nil
}
