/* fetch.go
 * Contains the HTTP plumbing shared by the match and news clients: admission through the rate limiter, auth
 * headers, gzip decoding and outcome metrics
 */

package external

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"e-network/api/metrics"
	"e-network/api/shared"
)

const userAgent = "ENetworkFetcher/1.0"

// maxBodyBytes caps how much of an upstream body is read
const maxBodyBytes = 8 << 20

type fetcher struct {
	source     string
	baseURL    string
	setAuth    func(*http.Request)
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// newLimiter returns a limiter admitting rps requests per second. A non-positive rps disables limiting
func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// do performs a GET against path below the base url and returns the decoded response.
// Preconditions: Receives a context, a path starting with / and an already encoded query string
// Postconditions: Returns the upstream status code, content type and body, or an error wrapping
// shared.ErrUpstreamUnavailable if the request could not be completed
func (f *fetcher) do(ctx context.Context, path string, rawQuery string) (*RelayResponse, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		f.metrics.Upstream(f.source, "throttled")
		return nil, fmt.Errorf("%w: waiting for rate limiter: %v", shared.ErrUpstreamUnavailable, err)
	}

	target, err := url.Parse(strings.TrimRight(f.baseURL, "/") + path)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url: %v", shared.ErrUpstreamUnavailable, err)
	}
	target.RawQuery = rawQuery

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrUpstreamUnavailable, err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", userAgent)
	request.Header.Set("Accept-Encoding", "gzip")
	if f.setAuth != nil {
		f.setAuth(request)
	}

	response, err := f.httpClient.Do(request)
	if err != nil {
		f.metrics.Upstream(f.source, "error")
		f.logger.Warn("upstream request failed", zap.String("source", f.source), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrUpstreamUnavailable, err)
	}
	defer response.Body.Close()

	var reader io.Reader = response.Body
	if response.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(response.Body)
		if err != nil {
			f.metrics.Upstream(f.source, "error")
			return nil, fmt.Errorf("%w: failed to create gzip reader: %v", shared.ErrUpstreamUnavailable, err)
		}
		defer gz.Close()
		reader = gz
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		f.metrics.Upstream(f.source, "error")
		return nil, fmt.Errorf("%w: failed to read response body: %v", shared.ErrUpstreamUnavailable, err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		f.metrics.Upstream(f.source, "ok")
	} else {
		f.metrics.Upstream(f.source, "status_"+fmt.Sprint(response.StatusCode))
	}

	return &RelayResponse{
		StatusCode:  response.StatusCode,
		ContentType: response.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// get is do plus a status check, used by the typed fetch functions
func (f *fetcher) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := f.do(ctx, path, query.Encode())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("upstream returned non-200 status",
			zap.String("source", f.source), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: %s %s returned status %d", shared.ErrUpstreamUnavailable, f.source, path, resp.StatusCode)
	}
	return resp.Body, nil
}

// Relay forwards a GET to the provider and returns the response without interpreting it
func (f *fetcher) Relay(ctx context.Context, path string, rawQuery string) (*RelayResponse, error) {
	return f.do(ctx, path, rawQuery)
}
