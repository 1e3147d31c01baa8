package playback

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
)

// mockCounter replays a fixed sequence of counts; the last value repeats.
type mockCounter struct {
	counts []int
	err    error
	calls  int
	specs  []filter.Spec
}

func (m *mockCounter) Count(_ context.Context, spec filter.Spec) (int, error) {
	m.calls++
	m.specs = append(m.specs, spec)
	if m.err != nil {
		return 0, m.err
	}
	i := m.calls - 1
	if i >= len(m.counts) {
		i = len(m.counts) - 1
	}
	return m.counts[i], nil
}

func newTestService(t *testing.T, c Counter) (*Service, *int) {
	t.Helper()
	sleeps := 0
	svc := New(c, domain.PollConfig{}, nil)
	svc.sleep = func(ctx context.Context, _ time.Duration) error {
		sleeps++
		return ctx.Err()
	}
	return svc, &sleeps
}
