package indexwatch

import (
	"context"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/option"
	"github.com/kailas-cloud/indexwatch/internal/usecase/convergence"
	"github.com/kailas-cloud/indexwatch/internal/usecase/playback"
)

// --- indexRepo mock ---

type mockIndex struct {
	pingFn func(ctx context.Context) error
}

func (m *mockIndex) URL(q query.Query) string {
	return query.Build(query.NewEndpoint("http://solr/solr/core/", query.Select), q)
}

func (m *mockIndex) Ping(ctx context.Context) error { return m.pingFn(ctx) }

// --- documentUseCase mock ---

type mockDocuments struct {
	countFn  func(ctx context.Context, spec filter.Spec) (int, error)
	allFn    func(ctx context.Context, spec filter.Spec, fields []string) ([]domain.Document, error)
	pagedFn  func(ctx context.Context, spec filter.Spec, fields []string, opts option.Set) (domain.Page, error)
	updateFn func(ctx context.Context, id, field string, value any) error
	fieldsFn func(ctx context.Context) ([]string, error)
}

func (m *mockDocuments) Count(ctx context.Context, spec filter.Spec) (int, error) {
	return m.countFn(ctx, spec)
}

func (m *mockDocuments) All(ctx context.Context, spec filter.Spec, fields []string) ([]domain.Document, error) {
	return m.allFn(ctx, spec, fields)
}

func (m *mockDocuments) Paged(
	ctx context.Context, spec filter.Spec, fields []string, opts option.Set,
) (domain.Page, error) {
	return m.pagedFn(ctx, spec, fields, opts)
}

func (m *mockDocuments) UpdateField(ctx context.Context, id, field string, value any) error {
	return m.updateFn(ctx, id, field, value)
}

func (m *mockDocuments) FieldNames(ctx context.Context) ([]string, error) {
	return m.fieldsFn(ctx)
}

// --- pollUseCase mock ---

type mockPoller struct {
	waitForJobFn func(ctx context.Context, jobID string) (convergence.Outcome, error)
	waitFn       func(ctx context.Context, spec filter.Spec) (convergence.Outcome, error)
}

func (m *mockPoller) WaitForJob(ctx context.Context, jobID string) (convergence.Outcome, error) {
	return m.waitForJobFn(ctx, jobID)
}

func (m *mockPoller) Wait(ctx context.Context, spec filter.Spec) (convergence.Outcome, error) {
	return m.waitFn(ctx, spec)
}

// --- playbackUseCase mock ---

type mockPlayback struct {
	checkFn func(ctx context.Context, jobID string, expected, deleted int) (playback.Report, error)
}

func (m *mockPlayback) CheckAllPlayed(
	ctx context.Context, jobID string, expected, deleted int,
) (playback.Report, error) {
	return m.checkFn(ctx, jobID, expected, deleted)
}

// --- helpers ---

func testClient(docs documentUseCase, poller pollUseCase, pb playbackUseCase) *Client {
	return &Client{
		index:    &mockIndex{pingFn: func(context.Context) error { return nil }},
		docs:     docs,
		poller:   poller,
		playback: pb,
	}
}
