package indexwatch

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	coreURL     string
	serverURL   string
	indexName   string
	backupsetID string
	uniqueKey   string

	timeout    time.Duration
	httpClient *http.Client

	pollInterval        time.Duration
	pollAttempts        int
	playbackInterval    time.Duration
	playbackMaxAttempts int
	pageSize            int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCore points the client at a full core URL, e.g.
// http://host:20000/solr/sharepointindex_<guid>_multinode/.
func WithCore(coreURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.coreURL = coreURL
	})
}

// WithIndex derives the core URL from the server, index name and backupset id.
// Ignored when WithCore is also given.
func WithIndex(serverURL, indexName, backupsetID string) Option {
	return optionFunc(func(c *clientConfig) {
		c.serverURL = serverURL
		c.indexName = indexName
		c.backupsetID = backupsetID
	})
}

// WithUniqueKey sets the field that identifies a document in updates.
// Default: contentid.
func WithUniqueKey(field string) Option {
	return optionFunc(func(c *clientConfig) {
		c.uniqueKey = field
	})
}

// WithTimeout bounds every request. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithPolling sets how WaitForJob samples the index count.
// Defaults: every 30s, at most 10 re-samples.
func WithPolling(interval time.Duration, maxAttempts int) Option {
	return optionFunc(func(c *clientConfig) {
		c.pollInterval = interval
		c.pollAttempts = maxAttempts
	})
}

// WithPlayback sets how CheckAllPlayed samples the index count.
// Defaults: every minute, at most 10 attempts.
func WithPlayback(interval time.Duration, maxAttempts int) Option {
	return optionFunc(func(c *clientConfig) {
		c.playbackInterval = interval
		c.playbackMaxAttempts = maxAttempts
	})
}

// WithPageSize sets how many rows each paged request fetches. Default: 100.
func WithPageSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.pageSize = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
