// Package elastic provides a minimal Elasticsearch scroll client shared by
// all export workers: the initial sliced search, cursor continuation, and
// cursor cleanup, with endpoint parsing and a typed error taxonomy.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/esferry/esferry/pkg/query"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for engine requests.
var (
	engineRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "esferry_engine_requests_total",
		Help: "Total engine requests by operation and status",
	}, []string{"operation", "status"})

	engineRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "esferry_engine_request_duration_seconds",
		Help:    "Engine request duration in seconds by operation",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})
)

// ScrollWindow is the cursor validity window sent with every search and
// scroll request. The engine keeps a cursor alive for this long after the
// last request on it; a worker that stalls longer before its continuation
// request gets a remote-side expiry error on the next fetch. The window is
// not enforced locally.
const ScrollWindow = "1m"

// Client is a scroll client bound to one cluster address. One instance is
// shared by all export workers; the embedded *http.Client makes it safe
// for concurrent use without external locking.
type Client struct {
	httpClient *http.Client
	cluster    string
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Cluster is the base URL of the target cluster, e.g. "http://localhost:9200".
	Cluster string

	// HTTPClient overrides the underlying HTTP client (for testing).
	HTTPClient *http.Client
}

// New creates a scroll client bound to the configured cluster address.
func New(cfg Config) (*Client, error) {
	if cfg.Cluster == "" {
		return nil, &ConfigError{Reason: "cluster address is required"}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// No request timeout: long scroll round-trips on large pages are
		// legitimate, and the scroll window is the engine's own deadline.
		httpClient = &http.Client{}
	}

	return &Client{
		httpClient: httpClient,
		cluster:    cfg.Cluster,
		logger:     log.With().Str("component", "elastic").Logger(),
	}, nil
}

// Search issues the initial sliced search request for one worker and opens
// its cursor chain.
func (c *Client) Search(ctx context.Context, index string, q query.Query) (*Page, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, &TransportError{Op: "search", Err: err}
	}

	// Index names may carry characters reserved in URLs.
	reqURL := fmt.Sprintf("%s/%s/_search?scroll=%s", c.cluster, url.PathEscape(index), ScrollWindow)
	return c.roundTrip(ctx, "search", http.MethodPost, reqURL, body)
}

// Scroll exchanges a cursor token for the next page. The request carries no
// filter, only the token and the scroll window.
func (c *Client) Scroll(ctx context.Context, scrollID string) (*Page, error) {
	body, err := json.Marshal(map[string]string{
		"scroll":    ScrollWindow,
		"scroll_id": scrollID,
	})
	if err != nil {
		return nil, &TransportError{Op: "scroll", Err: err}
	}

	return c.roundTrip(ctx, "scroll", http.MethodPost, c.cluster+"/_search/scroll", body)
}

// ClearScroll releases a cursor on the engine side. Sessions call it
// best-effort on termination; an expired or unknown cursor is not an error
// worth surfacing, so callers log failures at debug and move on.
func (c *Client) ClearScroll(ctx context.Context, scrollID string) error {
	body, err := json.Marshal(map[string][]string{
		"scroll_id": {scrollID},
	})
	if err != nil {
		return &TransportError{Op: "clear_scroll", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.cluster+"/_search/scroll", bytes.NewReader(body))
	if err != nil {
		return &TransportError{Op: "clear_scroll", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		engineRequestsTotal.WithLabelValues("clear_scroll", "network_error").Inc()
		return &TransportError{Op: "clear_scroll", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	engineRequestsTotal.WithLabelValues("clear_scroll", fmt.Sprintf("%d", resp.StatusCode)).Inc()
	if resp.StatusCode >= 400 {
		return &TransportError{Op: "clear_scroll", StatusCode: resp.StatusCode}
	}
	return nil
}

// roundTrip executes one request and decodes the page envelope.
func (c *Client) roundTrip(ctx context.Context, op, method, reqURL string, body []byte) (*Page, error) {
	startTime := time.Now()
	defer func() {
		engineRequestDuration.WithLabelValues(op).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("operation", op).
		Str("url", reqURL).
		Msg("Executing engine request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("operation", op).Msg("Engine request failed")
		engineRequestsTotal.WithLabelValues(op, "network_error").Inc()
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	engineRequestsTotal.WithLabelValues(op, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused; the body content is not
		// part of the wire contract on errors.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		c.logger.Warn().
			Str("operation", op).
			Int("status", resp.StatusCode).
			Msg("Engine request error")
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode}
	}

	page, err := decodePage(resp.Body)
	if err != nil {
		c.logger.Error().Err(err).Str("operation", op).Msg("Malformed engine response")
		return nil, err
	}

	return page, nil
}
