package retention

import (
	"context"
	"testing"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
)

// mockDocuments is an in-memory index keyed by contentid.
type mockDocuments struct {
	docs      []domain.Document
	allErr    error
	updateErr error
	updates   map[string]any
	allCalls  int
}

func (m *mockDocuments) All(_ context.Context, _ filter.Spec, _ []string) ([]domain.Document, error) {
	m.allCalls++
	if m.allErr != nil {
		return nil, m.allErr
	}
	out := make([]domain.Document, len(m.docs))
	copy(out, m.docs)
	return out, nil
}

func (m *mockDocuments) UpdateField(_ context.Context, id, field string, value any) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.updates == nil {
		m.updates = map[string]any{}
	}
	m.updates[id] = value
	for _, d := range m.docs {
		if d["contentid"] == id {
			d[field] = value
		}
	}
	return nil
}

// hideExpired returns a processor that hides every document whose item has a
// retention period in (0, window].
func hideExpired(m *mockDocuments, items map[string]int, window int) ProcessorFunc {
	return func(_ context.Context) error {
		for _, d := range m.docs {
			p := items[ItemKey(d.String("Url"))]
			if p > 0 && p <= window {
				d["IsVisible"] = false
			}
		}
		return nil
	}
}

func doc(id, url, deleted string) domain.Document {
	return domain.Document{"contentid": id, "Url": url, "DateDeleted": deleted, "IsVisible": true}
}

func newTestService(t *testing.T, docs *mockDocuments, p Processor) *Service {
	t.Helper()
	return New(docs, p, "contentid", nil)
}
