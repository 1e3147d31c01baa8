package chi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/option"
	"github.com/kailas-cloud/indexwatch/internal/usecase/convergence"
	healthuc "github.com/kailas-cloud/indexwatch/internal/usecase/health"
	"github.com/kailas-cloud/indexwatch/internal/usecase/playback"
)

type mockPoller struct {
	waitFn func(ctx context.Context, jobID string) (convergence.Outcome, error)
}

func (m *mockPoller) WaitForJob(ctx context.Context, jobID string) (convergence.Outcome, error) {
	return m.waitFn(ctx, jobID)
}

type mockPlayback struct {
	checkFn func(ctx context.Context, jobID string, expected, deleted int) (playback.Report, error)
}

func (m *mockPlayback) CheckAllPlayed(
	ctx context.Context, jobID string, expected, deleted int,
) (playback.Report, error) {
	return m.checkFn(ctx, jobID, expected, deleted)
}

type mockDocuments struct {
	countFn func(ctx context.Context, spec filter.Spec) (int, error)
	pagedFn func(ctx context.Context, spec filter.Spec, fields []string, opts option.Set) (domain.Page, error)
}

func (m *mockDocuments) Count(ctx context.Context, spec filter.Spec) (int, error) {
	return m.countFn(ctx, spec)
}

func (m *mockDocuments) Paged(
	ctx context.Context, spec filter.Spec, fields []string, opts option.Set,
) (domain.Page, error) {
	return m.pagedFn(ctx, spec, fields, opts)
}

type mockHistory struct {
	lastFn func(ctx context.Context, key string) (convergence.Outcome, error)
}

func (m *mockHistory) Last(ctx context.Context, key string) (convergence.Outcome, error) {
	return m.lastFn(ctx, key)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type urlBuilderFunc func(q query.Query) string

func (f urlBuilderFunc) URL(q query.Query) string { return f(q) }

func selectURL(q query.Query) string {
	return query.Build(query.NewEndpoint("http://solr:8983/solr/core/", query.Select), q)
}

// newTestRouter fills Queries and Health with working defaults.
func newTestRouter(svc Services) http.Handler {
	if svc.Queries == nil {
		svc.Queries = urlBuilderFunc(selectURL)
	}
	if svc.Health == nil {
		svc.Health = &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{healthuc.ComponentSearch: healthuc.CheckOK},
		}}
	}
	r := chi.NewRouter()
	NewServer(svc, zap.NewNop()).Routes(r)
	return r
}
