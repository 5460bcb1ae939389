package crawl

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/assesskit/assessrec/internal/catalog"
)

const (
	defaultCatalogURL = "https://www.shl.com/products/product-catalog/"
	defaultPageCount  = 33
	pageSize          = 12
	pageRetries       = 2
	retryDelay        = 2 * time.Second
	pagePause         = 500 * time.Millisecond
)

// sleep is swapped out in tests.
var sleep = time.Sleep

// Crawler walks the paginated product catalog and collects assessment
// records. Individual page failures are logged and skipped; only a
// cancelled context aborts the crawl.
type Crawler struct {
	client     *http.Client
	catalogURL string
	logger     *zap.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithCatalogURL overrides the catalog base URL.
func WithCatalogURL(url string) Option {
	return func(c *Crawler) {
		if url != "" {
			c.catalogURL = url
		}
	}
}

// New creates a crawler for the product catalog.
func New(logger *zap.Logger, opts ...Option) *Crawler {
	c := &Crawler{
		client:     &http.Client{Timeout: 30 * time.Second},
		catalogURL: defaultCatalogURL,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run crawls up to the given number of catalog pages, deduplicates entries
// by url and enriches each with a description from its detail page. A zero
// page count crawls the whole known catalog.
func (c *Crawler) Run(ctx context.Context, pages int) ([]catalog.Assessment, error) {
	if pages <= 0 {
		pages = defaultPageCount
	}

	var all []catalog.Assessment
	for page := 0; page < pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := page * pageSize
		items, err := c.crawlPage(ctx, start)
		if err != nil {
			c.logger.Warn("catalog page failed, skipping",
				zap.Int("start", start),
				zap.Error(err),
			)
			continue
		}

		all = append(all, items...)
		c.logger.Info("catalog page crawled",
			zap.Int("page", page+1),
			zap.Int("items", len(items)),
			zap.Int("total", len(all)),
		)
		sleep(pagePause)
	}

	all = dedupeByURL(all)
	c.logger.Info("unique assessments collected", zap.Int("count", len(all)))

	for i := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		desc, err := c.fetchDescription(ctx, all[i].URL)
		if err != nil {
			c.logger.Debug("description fetch failed",
				zap.String("url", all[i].URL),
				zap.Error(err),
			)
			continue
		}
		all[i].Description = desc
	}

	for i := range all {
		all[i].Normalize()
	}
	return all, nil
}

func (c *Crawler) crawlPage(ctx context.Context, start int) ([]catalog.Assessment, error) {
	url := fmt.Sprintf("%s?start=%d&type=1", c.catalogURL, start)

	var lastErr error
	for attempt := 0; attempt < pageRetries; attempt++ {
		if attempt > 0 {
			sleep(retryDelay)
		}

		items, err := c.fetchPage(ctx, url)
		if err == nil {
			return items, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Crawler) fetchPage(ctx context.Context, url string) ([]catalog.Assessment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog page returned status %d", resp.StatusCode)
	}

	return ParseCatalogPage(resp.Body)
}

func (c *Crawler) fetchDescription(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("detail page returned status %d", resp.StatusCode)
	}

	return ParseDescription(resp.Body)
}

func dedupeByURL(items []catalog.Assessment) []catalog.Assessment {
	seen := make(map[string]bool, len(items))
	out := make([]catalog.Assessment, 0, len(items))
	for _, item := range items {
		if item.URL == "" || seen[item.URL] {
			continue
		}
		seen[item.URL] = true
		out = append(out, item)
	}
	return out
}
