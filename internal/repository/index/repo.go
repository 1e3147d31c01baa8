package index

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/option"
	"github.com/kailas-cloud/indexwatch/internal/transport/solr"
)

// DefaultUniqueKey is the document id field of backup indexes.
const DefaultUniqueKey = "contentid"

// transport is the consumer interface over the HTTP client (ISP).
type transport interface {
	Get(ctx context.Context, url string) (*solr.Response, error)
	Post(ctx context.Context, url string, body any) (*solr.Response, error)
}

// Repo runs queries against one index core. Every read is strict: the response
// is checked for HTTP and embedded errors before anything is extracted from it.
type Repo struct {
	tr        transport
	endpoint  query.Endpoint
	uniqueKey string
}

// New creates an index repository for the core at coreURL.
func New(tr transport, coreURL, uniqueKey string) *Repo {
	if uniqueKey == "" {
		uniqueKey = DefaultUniqueKey
	}
	return &Repo{tr: tr, endpoint: query.NewEndpoint(coreURL, query.Select), uniqueKey: uniqueKey}
}

// Endpoint returns the select endpoint of the core.
func (r *Repo) Endpoint() query.Endpoint { return r.endpoint }

// URL assembles the readable select URL for q. Requests are sent percent-encoded.
func (r *Repo) URL(q query.Query) string { return query.Build(r.endpoint, q) }

// Count returns numFound for spec using a zero-row query.
func (r *Repo) Count(ctx context.Context, spec filter.Spec) (int, error) {
	body, err := r.get(ctx, query.Encode(r.endpoint, query.Count(spec)))
	if err != nil {
		return 0, err
	}
	n, err := solr.CountFromJSON(body)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Search returns the documents and total count of q.
func (r *Repo) Search(ctx context.Context, q query.Query) (domain.Page, error) {
	body, err := r.get(ctx, query.Encode(r.endpoint, q))
	if err != nil {
		return domain.Page{}, err
	}
	total, err := solr.CountFromJSON(body)
	if err != nil {
		return domain.Page{}, fmt.Errorf("search: %w", err)
	}
	docs, err := solr.DocsFromJSON(body)
	if err != nil {
		return domain.Page{}, fmt.Errorf("search: %w", err)
	}
	return domain.Page{Total: total, Docs: docs}, nil
}

// Update sets one field of one document and commits.
func (r *Repo) Update(ctx context.Context, id, field string, value any) error {
	url := query.Command(r.endpoint.With(query.Update), option.New(option.Value("commit", true)))
	payload := []map[string]any{{
		r.uniqueKey: id,
		field:       map[string]any{"set": value},
	}}

	resp, err := r.tr.Post(ctx, url, payload)
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	if err := solr.CheckResponse(resp); err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	status, err := solr.UpdateStatusFromJSON(resp.Body)
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	if status != 0 {
		return fmt.Errorf("update %s: status %d: %w", id, status, domain.ErrUpdateRejected)
	}
	return nil
}

// FieldNames lists the fields defined in the index.
func (r *Repo) FieldNames(ctx context.Context) ([]string, error) {
	url := query.Command(r.endpoint.With(query.Luke), option.New(option.Value("numTerms", 0)))
	body, err := r.get(ctx, url)
	if err != nil {
		return nil, err
	}
	names, err := solr.FieldsFromJSON(body)
	if err != nil {
		return nil, fmt.Errorf("field names: %w", err)
	}
	return names, nil
}

// Ping issues a match-all zero-row query.
func (r *Repo) Ping(ctx context.Context) error {
	_, err := r.Count(ctx, nil)
	return err
}

func (r *Repo) get(ctx context.Context, url string) ([]byte, error) {
	resp, err := r.tr.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	if err := solr.CheckResponse(resp); err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return resp.Body, nil
}
