package recommend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/assesskit/assessrec/internal/logger"
)

const (
	fetchTimeout       = 30 * time.Second
	maxResolvedTextLen = 5000
)

// Tags whose subtrees carry markup or chrome rather than page content.
var skippedTags = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"footer": true,
}

// Resolver turns a URL-shaped query into the text of the page it points to.
// Resolution is best-effort: any fetch or extraction problem falls back to
// the literal query, silently.
type Resolver struct {
	client *http.Client
	logger *zap.Logger
}

// NewResolver creates a resolver with a bounded fetch timeout. Redirects are
// followed by default.
func NewResolver(log *zap.Logger) *Resolver {
	return &Resolver{
		client: &http.Client{Timeout: fetchTimeout},
		logger: log,
	}
}

// Resolve returns the fetched page text for URL queries, the query itself
// otherwise. It never returns an error.
func (r *Resolver) Resolve(ctx context.Context, query string) string {
	if !strings.HasPrefix(query, "http://") && !strings.HasPrefix(query, "https://") {
		return query
	}

	text, err := r.fetch(ctx, query)
	if err != nil || text == "" {
		r.logger.Debug("url content resolution failed, keeping literal query",
			zap.String("url", logger.TruncateForLog(query, 200)),
			zap.Error(err),
		)
		return query
	}

	r.logger.Debug("resolved url query to page text",
		zap.String("url", logger.TruncateForLog(query, 200)),
		zap.Int("text_length", len(text)),
	)
	return text
}

func (r *Resolver) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create fetch request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch url: status %d", resp.StatusCode)
	}

	text, err := ExtractText(resp.Body)
	if err != nil {
		return "", fmt.Errorf("extract page text: %w", err)
	}

	return truncateRunes(text, maxResolvedTextLen), nil
}

// ExtractText parses HTML and returns the visible text with script, style,
// nav and footer subtrees removed and whitespace collapsed.
func ExtractText(r io.Reader) (string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var words []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			words = append(words, strings.Fields(n.Data)...)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return strings.Join(words, " "), nil
}
