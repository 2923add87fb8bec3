/* news.go
 * Contains the client for the esports news provider
 */

package external

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"e-network/api/metrics"
	"e-network/api/shared"
)

// NewsClient fetches articles from the news provider
type NewsClient struct {
	fetcher
}

// NewNewsClient creates a news client. The api key, when set, is sent in the X-Api-Key header
func NewNewsClient(cfg ClientConfig, logger *zap.Logger, m *metrics.Metrics) *NewsClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := cfg.Token
	return &NewsClient{fetcher{
		source:  "news",
		baseURL: cfg.BaseURL,
		setAuth: func(r *http.Request) {
			if key != "" {
				r.Header.Set("X-Api-Key", key)
			}
		},
		httpClient: newHTTPClient(cfg.Timeout),
		limiter:    newLimiter(cfg.RPS, cfg.Burst),
		logger:     logger,
		metrics:    m,
	}}
}

// FetchArticles returns the latest articles with plain text summaries
func (c *NewsClient) FetchArticles(ctx context.Context) ([]Article, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: news provider not configured", shared.ErrUpstreamUnavailable)
	}
	body, err := c.get(ctx, "/articles", url.Values{})
	if err != nil {
		return nil, fmt.Errorf("error fetching articles: %w", err)
	}
	return ParseArticles(body)
}
