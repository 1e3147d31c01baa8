package index

import (
	"context"
	"net/url"
	"testing"

	"github.com/kailas-cloud/indexwatch/internal/transport/solr"
)

const testCore = "http://x/solr/idx_guid_multinode/"

// mockTransport implements the consumer interface for tests.
type mockTransport struct {
	getFn  func(ctx context.Context, url string) (*solr.Response, error)
	postFn func(ctx context.Context, url string, body any) (*solr.Response, error)
}

func (m *mockTransport) Get(ctx context.Context, url string) (*solr.Response, error) {
	if m.getFn != nil {
		return m.getFn(ctx, url)
	}
	return ok(`{"response":{"numFound":0,"docs":[]}}`), nil
}

func (m *mockTransport) Post(ctx context.Context, url string, body any) (*solr.Response, error) {
	if m.postFn != nil {
		return m.postFn(ctx, url, body)
	}
	return ok(`{"responseHeader":{"status":0}}`), nil
}

func ok(body string) *solr.Response {
	return &solr.Response{StatusCode: 200, Status: "200 OK", Body: []byte(body)}
}

func newTestRepo(t *testing.T) (*Repo, *mockTransport) {
	t.Helper()
	mt := &mockTransport{}
	return New(mt, testCore, ""), mt
}

func queryParams(t *testing.T, raw string) url.Values {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u.Query()
}
