package indexwatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/option"
	"github.com/kailas-cloud/indexwatch/internal/repository/index"
	"github.com/kailas-cloud/indexwatch/internal/transport/solr"
	"github.com/kailas-cloud/indexwatch/internal/usecase/convergence"
	"github.com/kailas-cloud/indexwatch/internal/usecase/documents"
	"github.com/kailas-cloud/indexwatch/internal/usecase/playback"
)

// Internal interfaces, replaced in tests.
type indexRepo interface {
	URL(q query.Query) string
	Ping(ctx context.Context) error
}

type documentUseCase interface {
	Count(ctx context.Context, spec filter.Spec) (int, error)
	All(ctx context.Context, spec filter.Spec, fields []string) ([]domain.Document, error)
	Paged(ctx context.Context, spec filter.Spec, fields []string, opts option.Set) (domain.Page, error)
	UpdateField(ctx context.Context, id, field string, value any) error
	FieldNames(ctx context.Context) ([]string, error)
}

type pollUseCase interface {
	WaitForJob(ctx context.Context, jobID string) (convergence.Outcome, error)
	Wait(ctx context.Context, spec filter.Spec) (convergence.Outcome, error)
}

type playbackUseCase interface {
	CheckAllPlayed(ctx context.Context, jobID string, expected, deleted int) (playback.Report, error)
}

// Client is the indexwatch SDK entry point.
type Client struct {
	index    indexRepo
	docs     documentUseCase
	poller   pollUseCase
	playback playbackUseCase
	obs      *observer
}

// New creates a Client. No request is sent until a method is called.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{uniqueKey: index.DefaultUniqueKey}
	for _, o := range opts {
		o.apply(cfg)
	}

	coreURL, err := cfg.resolveCoreURL()
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	tr := solr.NewClient(&solr.Config{
		Timeout:    cfg.timeout,
		HTTPClient: cfg.httpClient,
		Logger:     zap.NewNop(),
	})
	repo := index.New(tr, coreURL, cfg.uniqueKey)

	nop := zap.NewNop()
	return &Client{
		index:  repo,
		docs:   documents.New(repo, nop).WithPageSize(cfg.pageSize),
		poller: convergence.New(repo, domain.PollConfig{Interval: cfg.pollInterval, MaxAttempts: cfg.pollAttempts}, nop),
		playback: playback.New(repo, domain.PollConfig{
			Interval:    cfg.playbackInterval,
			MaxAttempts: cfg.playbackMaxAttempts,
		}, nop),
		obs: obs,
	}, nil
}

func (c *clientConfig) resolveCoreURL() (string, error) {
	if c.coreURL != "" {
		return c.coreURL, nil
	}
	if c.serverURL == "" || c.indexName == "" || c.backupsetID == "" {
		return "", errors.New("indexwatch: core address required (use WithCore or WithIndex)")
	}
	return query.CoreURL(c.serverURL, c.indexName, c.backupsetID), nil
}

// Ping checks that the core answers a count query.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.index.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// URL returns the select URL q would request.
func (c *Client) URL(q Query) (string, error) {
	dq, err := q.compile()
	if err != nil {
		return "", err
	}
	return c.index.URL(dq), nil
}

// Count returns the number of documents matching every filter expression.
func (c *Client) Count(ctx context.Context, filters ...string) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("count", start, err, "count", n) }()

	spec, err := filter.ParseSpec(filters)
	if err != nil {
		return 0, err
	}
	return c.docs.Count(ctx, spec)
}

// Search returns one page of documents. The start and rows options select the
// window; without rows every matching document is fetched page by page.
func (c *Client) Search(ctx context.Context, q Query) (page Page, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, "total", page.Total) }()

	dq, err := q.compile()
	if err != nil {
		return Page{}, err
	}
	p, err := c.docs.Paged(ctx, dq.Filter, dq.Fields, dq.Options)
	if err != nil {
		return Page{}, err
	}
	return pageFromDomain(p), nil
}

// All fetches every document matching q in a single request. Options are ignored.
func (c *Client) All(ctx context.Context, q Query) (docs []Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("all", start, err, "count", len(docs)) }()

	dq, err := q.compile()
	if err != nil {
		return nil, err
	}
	found, err := c.docs.All(ctx, dq.Filter, dq.Fields)
	if err != nil {
		return nil, err
	}
	return documentsFromDomain(found), nil
}

// UpdateField sets one field of the document identified by id and commits.
func (c *Client) UpdateField(ctx context.Context, id, field string, value any) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("update", start, err, "id", id, "field", field) }()

	return c.docs.UpdateField(ctx, id, field, value)
}

// Fields lists the field names the index knows about.
func (c *Client) Fields(ctx context.Context) (names []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("fields", start, err) }()

	return c.docs.FieldNames(ctx)
}

// WaitForJob polls the number of items indexed for a backup job until two
// consecutive samples agree. An exhausted poll returns the last sample with a
// nil error; a job that never indexed anything returns ErrNotIndexed.
func (c *Client) WaitForJob(ctx context.Context, jobID string) (out Outcome, err error) {
	start := time.Now()
	defer func() { c.obs.observe("wait_for_job", start, err, "job_id", jobID, "state", out.State) }()

	o, err := c.poller.WaitForJob(ctx, jobID)
	return outcomeFromDomain(o), err
}

// Wait polls the count of every filter expression like WaitForJob does.
func (c *Client) Wait(ctx context.Context, filters ...string) (out Outcome, err error) {
	start := time.Now()
	defer func() { c.obs.observe("wait", start, err, "state", out.State) }()

	spec, err := filter.ParseSpec(filters)
	if err != nil {
		return Outcome{}, err
	}
	o, err := c.poller.Wait(ctx, spec)
	return outcomeFromDomain(o), err
}

// CheckAllPlayed waits until expected items of a job are indexed. deleted items
// count as indexed. A count that stops moving returns ErrPlaybackStalled.
func (c *Client) CheckAllPlayed(ctx context.Context, jobID string, expected, deleted int) (rep PlaybackReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("check_all_played", start, err, "job_id", jobID, "complete", rep.Complete) }()

	r, err := c.playback.CheckAllPlayed(ctx, jobID, expected, deleted)
	return reportFromDomain(r), err
}
