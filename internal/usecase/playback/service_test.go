package playback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
)

func TestCheckAllPlayed_AlreadyComplete(t *testing.T) {
	mc := &mockCounter{counts: []int{95}}
	svc, sleeps := newTestService(t, mc)

	rep, err := svc.CheckAllPlayed(context.Background(), "7538", 100, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.Complete || rep.Indexed != 100 || rep.Attempts != 0 {
		t.Errorf("report = %+v", rep)
	}
	if *sleeps != 0 || mc.calls != 1 {
		t.Errorf("sleeps = %d, calls = %d", *sleeps, mc.calls)
	}
	if got := filter.Compile(mc.specs[0]); got != "JobId:7538" {
		t.Errorf("spec = %q", got)
	}
}

func TestCheckAllPlayed_CatchesUp(t *testing.T) {
	mc := &mockCounter{counts: []int{10, 40, 80, 100}}
	svc, sleeps := newTestService(t, mc)

	rep, err := svc.CheckAllPlayed(context.Background(), "1", 100, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.Complete || rep.Attempts != 3 || *sleeps != 3 {
		t.Errorf("report = %+v, sleeps = %d", rep, *sleeps)
	}
}

func TestCheckAllPlayed_DeletedCountedOnEverySample(t *testing.T) {
	mc := &mockCounter{counts: []int{50, 90}}
	svc, _ := newTestService(t, mc)

	rep, err := svc.CheckAllPlayed(context.Background(), "1", 100, 10)
	if err != nil || !rep.Complete || rep.Indexed != 100 {
		t.Errorf("CheckAllPlayed() = %+v, %v", rep, err)
	}
}

func TestCheckAllPlayed_Stalled(t *testing.T) {
	// 10 -> 20 -> 20: the second re-sample shows no progress, the extra wait confirms it.
	mc := &mockCounter{counts: []int{10, 20, 20, 20}}
	svc, sleeps := newTestService(t, mc)

	rep, err := svc.CheckAllPlayed(context.Background(), "1", 100, 0)
	if !errors.Is(err, domain.ErrPlaybackStalled) {
		t.Fatalf("err = %v, want ErrPlaybackStalled", err)
	}
	if rep.Complete || rep.Missing() != 80 {
		t.Errorf("report = %+v", rep)
	}
	if mc.calls != 4 || *sleeps != 4 {
		t.Errorf("calls = %d, sleeps = %d", mc.calls, *sleeps)
	}
}

func TestCheckAllPlayed_ProgressAfterExtraWait(t *testing.T) {
	mc := &mockCounter{counts: []int{10, 20, 20, 30, 100}}
	svc, _ := newTestService(t, mc)

	rep, err := svc.CheckAllPlayed(context.Background(), "1", 100, 0)
	if err != nil || !rep.Complete {
		t.Errorf("CheckAllPlayed() = %+v, %v", rep, err)
	}
}

func TestCheckAllPlayed_BudgetExhausted(t *testing.T) {
	counts := make([]int, 20)
	for i := range counts {
		counts[i] = i + 1
	}
	mc := &mockCounter{counts: counts}
	svc, _ := newTestService(t, mc)

	rep, err := svc.CheckAllPlayed(context.Background(), "1", 100, 0)
	if err != nil {
		t.Fatalf("running out of attempts is not an error, got %v", err)
	}
	if rep.Complete || rep.Attempts != 10 {
		t.Errorf("report = %+v", rep)
	}
}

func TestCheckAllPlayed_CountError(t *testing.T) {
	boom := &domain.SearchEngineError{Msg: "boom"}
	svc, _ := newTestService(t, &mockCounter{err: boom})

	if _, err := svc.CheckAllPlayed(context.Background(), "1", 100, 0); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestCheckAllPlayed_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := New(&mockCounter{counts: []int{1}}, domain.PollConfig{Interval: time.Hour}, nil)

	if _, err := svc.CheckAllPlayed(ctx, "1", 100, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
