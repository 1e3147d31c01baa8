package documents

import (
	"context"
	"testing"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
)

// mockRepo implements Repository for tests.
type mockRepo struct {
	countFn      func(ctx context.Context, spec filter.Spec) (int, error)
	searchFn     func(ctx context.Context, q query.Query) (domain.Page, error)
	updateFn     func(ctx context.Context, id, field string, value any) error
	fieldNamesFn func(ctx context.Context) ([]string, error)
}

func (m *mockRepo) Count(ctx context.Context, spec filter.Spec) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, spec)
	}
	return 0, nil
}

func (m *mockRepo) Search(ctx context.Context, q query.Query) (domain.Page, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return domain.Page{}, nil
}

func (m *mockRepo) Update(ctx context.Context, id, field string, value any) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, field, value)
	}
	return nil
}

func (m *mockRepo) FieldNames(ctx context.Context) ([]string, error) {
	if m.fieldNamesFn != nil {
		return m.fieldNamesFn(ctx)
	}
	return nil, nil
}

func newTestService(t *testing.T) (*Service, *mockRepo) {
	t.Helper()
	mr := &mockRepo{}
	return New(mr, nil), mr
}

// docs returns n documents with sequential contentid values starting at from.
func docs(from, n int) []domain.Document {
	out := make([]domain.Document, n)
	for i := range out {
		out[i] = domain.Document{"contentid": from + i}
	}
	return out
}
