package history

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/kailas-cloud/indexwatch/internal/usecase/convergence"
)

func outcome(key string, p convergence.Phase, count int) convergence.Outcome {
	return convergence.Outcome{
		Key:        key,
		Phase:      p,
		Count:      count,
		Previous:   count,
		Attempts:   1,
		Samples:    []int{count, count},
		Elapsed:    30 * time.Second,
		FinishedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecordAndLast(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	want := outcome("100", convergence.Converged, 50)

	if err := repo.Record(ctx, want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ttl := ms.ttls["indexwatch:history:100"]; ttl != 24*time.Hour {
		t.Errorf("ttl = %v, want 24h", ttl)
	}

	got, err := repo.Last(ctx, "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Phase != want.Phase || got.Count != 50 || !got.FinishedAt.Equal(want.FinishedAt) || got.Elapsed != want.Elapsed {
		t.Errorf("Last() = %+v, want %+v", got, want)
	}
}

func TestLast_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	if _, err := repo.Last(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestLast_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.getErr = errors.New("conn reset")
	if _, err := repo.Last(context.Background(), "x"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want store error", err)
	}
}

func TestRecord_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.setErr = errors.New("read only replica")
	if err := repo.Record(context.Background(), outcome("1", convergence.Failed, 0)); err == nil {
		t.Error("expected error")
	}
}

func TestCounts(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	_ = repo.Record(ctx, outcome("1", convergence.Converged, 5))
	_ = repo.Record(ctx, outcome("2", convergence.Converged, 7))
	_ = repo.Record(ctx, outcome("3", convergence.Failed, 0))

	counts, err := repo.Counts(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts[convergence.Converged] != 2 || counts[convergence.Failed] != 1 || counts[convergence.Exhausted] != 0 {
		t.Errorf("Counts() = %v", counts)
	}
	if ttl := ms.ttls["indexwatch:outcomes:CONVERGED"]; ttl != 24*time.Hour {
		t.Errorf("counter ttl = %v", ttl)
	}
}

func TestKeysAndForget(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	_ = repo.Record(ctx, outcome("1", convergence.Converged, 5))
	_ = repo.Record(ctx, outcome("2", convergence.Exhausted, 9))

	keys, err := repo.Keys(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "1" || keys[1] != "2" {
		t.Errorf("Keys() = %v", keys)
	}

	if err := repo.Forget(ctx, "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.Last(ctx, "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
