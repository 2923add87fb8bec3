/* pandascore.go
 * Contains the client for the PandaScore match provider. Typed fetches return shared.Match values; Relay passes
 * raw responses through for the proxy routes
 */

package external

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"e-network/api/metrics"
	"e-network/api/shared"
)

// DefaultPandaScoreURL is used when no base url is configured
const DefaultPandaScoreURL = "https://api.pandascore.co"

// maxPerPage is the largest page size the provider accepts
const maxPerPage = 100

// ClientConfig holds the settings for an upstream client
type ClientConfig struct {
	BaseURL string
	Token   string
	RPS     float64
	Burst   int
	Timeout time.Duration
}

// Client fetches matches, leagues and teams from PandaScore. It is safe for concurrent use
type Client struct {
	fetcher
}

// NewClient creates a PandaScore client.
// Preconditions: Receives a client config, a logger and optional metrics (nil disables them)
// Postconditions: Returns a client whose requests share one rate limiter
func NewClient(cfg ClientConfig, logger *zap.Logger, m *metrics.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultPandaScoreURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	token := cfg.Token
	return &Client{fetcher{
		source:  "pandascore",
		baseURL: cfg.BaseURL,
		setAuth: func(r *http.Request) {
			if token != "" {
				r.Header.Set("Authorization", "Bearer "+token)
			}
		},
		httpClient: newHTTPClient(cfg.Timeout),
		limiter:    newLimiter(cfg.RPS, cfg.Burst),
		logger:     logger,
		metrics:    m,
	}}
}

// FetchUpcomingMatches returns every upcoming match the provider lists, in provider order
func (c *Client) FetchUpcomingMatches(ctx context.Context) ([]shared.Match, error) {
	body, err := c.get(ctx, "/matches/upcoming", url.Values{"per_page": {fmt.Sprint(maxPerPage)}})
	if err != nil {
		return nil, fmt.Errorf("error fetching upcoming matches: %w", err)
	}
	return ParseMatches(body)
}

// FetchMatchesByIDs returns the matches with the given ids. Ids are requested in batches of the provider's page
// size, an empty list returns an empty result without a request
func (c *Client) FetchMatchesByIDs(ctx context.Context, ids []shared.ID) ([]shared.Match, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[shared.ID]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id.String())
	}

	matches := make([]shared.Match, 0, len(unique))
	for start := 0; start < len(unique); start += maxPerPage {
		end := start + maxPerPage
		if end > len(unique) {
			end = len(unique)
		}
		batch := unique[start:end]
		query := url.Values{
			"filter[id]": {strings.Join(batch, ",")},
			"per_page":   {fmt.Sprint(len(batch))},
		}
		body, err := c.get(ctx, "/matches", query)
		if err != nil {
			return nil, fmt.Errorf("error fetching matches by id: %w", err)
		}
		parsed, err := ParseMatches(body)
		if err != nil {
			return nil, err
		}
		matches = append(matches, parsed...)
	}
	return matches, nil
}

// FetchMatch returns the details of a single match
func (c *Client) FetchMatch(ctx context.Context, id shared.ID) (*shared.Match, error) {
	if id == "" {
		return nil, fmt.Errorf("empty match id")
	}
	body, err := c.get(ctx, "/matches/"+url.PathEscape(id.String()), url.Values{})
	if err != nil {
		return nil, fmt.Errorf("error fetching match %s: %w", id, err)
	}
	return ParseMatch(body)
}

// FetchLeagues returns the most recently modified leagues
func (c *Client) FetchLeagues(ctx context.Context) ([]League, error) {
	body, err := c.get(ctx, "/leagues", recentlyModified())
	if err != nil {
		return nil, fmt.Errorf("error fetching leagues: %w", err)
	}
	return ParseLeagues(body)
}

// FetchTeams returns the most recently modified teams
func (c *Client) FetchTeams(ctx context.Context) ([]Team, error) {
	body, err := c.get(ctx, "/teams", recentlyModified())
	if err != nil {
		return nil, fmt.Errorf("error fetching teams: %w", err)
	}
	return ParseTeams(body)
}

func recentlyModified() url.Values {
	return url.Values{
		"sort":     {"-modified_at"},
		"per_page": {fmt.Sprint(maxPerPage)},
	}
}
