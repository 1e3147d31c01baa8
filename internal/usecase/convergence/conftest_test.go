package convergence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
)

// mockCounter replays a fixed sequence of counts; the last value repeats.
type mockCounter struct {
	counts []int
	errAt  int // 1-based call that fails; 0 never
	err    error
	calls  int
	specs  []filter.Spec
	onCall func(call int)
}

func (m *mockCounter) Count(_ context.Context, spec filter.Spec) (int, error) {
	m.calls++
	m.specs = append(m.specs, spec)
	if m.onCall != nil {
		m.onCall(m.calls)
	}
	if m.errAt == m.calls {
		return 0, m.err
	}
	i := m.calls - 1
	if i >= len(m.counts) {
		i = len(m.counts) - 1
	}
	return m.counts[i], nil
}

type mockRecorder struct {
	mu       sync.Mutex
	outcomes []Outcome
	err      error
}

func (m *mockRecorder) Record(_ context.Context, o Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, o)
	return m.err
}

// newTestService returns a poller whose sleeps are recorded instead of taken.
func newTestService(t *testing.T, c Counter, budget int) (*Service, *[]time.Duration) {
	t.Helper()
	var slept []time.Duration
	svc := New(c, domain.PollConfig{Interval: 30 * time.Second, MaxAttempts: budget}, nil)
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		slept = append(slept, d)
		return nil
	}
	return svc, &slept
}
