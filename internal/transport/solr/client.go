package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/metrics"
)

const defaultTimeout = 30 * time.Second

// Client executes single GET/POST requests against a Solr-compatible endpoint.
// It never retries; retries belong to the poller.
type Client struct {
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// Config holds the transport settings.
type Config struct {
	// Timeout bounds each request. Zero means 30s.
	Timeout time.Duration
	// HTTPClient overrides the pooled client (tests).
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Response is the raw outcome of one request.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
}

// Reason returns the reason phrase of the status line, e.g. "Not Found".
func (r *Response) Reason() string {
	code := strconv.Itoa(r.StatusCode)
	if reason := strings.TrimSpace(strings.TrimPrefix(r.Status, code)); reason != "" {
		return reason
	}
	return http.StatusText(r.StatusCode)
}

// NewClient creates a transport client.
func NewClient(cfg *Config) *Client {
	c := &Client{timeout: defaultTimeout, logger: zap.NewNop(), http: &http.Client{}}
	if cfg == nil {
		return c
	}
	if cfg.Timeout > 0 {
		c.timeout = cfg.Timeout
	}
	if cfg.HTTPClient != nil {
		c.http = cfg.HTTPClient
	}
	if cfg.Logger != nil {
		c.logger = cfg.Logger
	}
	return c
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, url, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, url string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, url, body)
}

// Do issues one request. Method is matched case-insensitively and must be GET or POST;
// POST requires a body, which is JSON-encoded. Invalid invocations fail before any I/O.
// Non-200 statuses are not errors here; see CheckResponse.
func (c *Client) Do(ctx context.Context, method, url string, body any) (*Response, error) {
	method = strings.ToUpper(strings.TrimSpace(method))

	var reader io.Reader
	switch method {
	case http.MethodGet:
	case http.MethodPost:
		if body == nil {
			return nil, fmt.Errorf("post %s: %w", url, domain.ErrMissingRequestBody)
		}
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	default:
		return nil, fmt.Errorf("method %q: %w", method, domain.ErrUnsupportedMethod)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &domain.TransportError{Method: method, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	metrics.SolrRequestDuration.WithLabelValues(method).Observe(duration.Seconds())

	if err != nil {
		metrics.SolrRequestsTotal.WithLabelValues(method, "error").Inc()
		c.logger.Debug("solr request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, &domain.TransportError{Method: method, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.SolrRequestsTotal.WithLabelValues(method, "error").Inc()
		return nil, &domain.TransportError{Method: method, Err: fmt.Errorf("read body: %w", err)}
	}

	metrics.SolrRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.Debug("solr request",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return &Response{StatusCode: resp.StatusCode, Status: resp.Status, Body: data}, nil
}
