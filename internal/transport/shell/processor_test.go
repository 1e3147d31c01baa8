package shell

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestProcessRetention_Success(t *testing.T) {
	var slept time.Duration
	p := NewProcessor([]string{"sh", "-c", "echo processed"}, 5*time.Second, zap.NewNop())
	p.sleep = func(_ context.Context, d time.Duration) error {
		slept = d
		return nil
	}

	if err := p.ProcessRetention(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slept != 5*time.Second {
		t.Errorf("settle = %v, want 5s", slept)
	}
}

func TestProcessRetention_NoSettle(t *testing.T) {
	p := NewProcessor([]string{"true"}, 0, nil)
	p.sleep = func(context.Context, time.Duration) error {
		t.Error("sleep called without settle time")
		return nil
	}
	if err := p.ProcessRetention(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProcessRetention_Failure(t *testing.T) {
	p := NewProcessor([]string{"sh", "-c", "echo rules missing >&2; exit 3"}, 0, nil)
	err := p.ProcessRetention(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "rules missing") {
		t.Errorf("output not in error: %v", err)
	}
}

func TestProcessRetention_NoCommand(t *testing.T) {
	if err := NewProcessor(nil, 0, nil).ProcessRetention(context.Background()); !errors.Is(err, ErrNoCommand) {
		t.Errorf("err = %v, want ErrNoCommand", err)
	}
}

func TestProcessRetention_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewProcessor([]string{"true"}, time.Hour, nil)
	p.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepCtx(ctx, d)
	}
	if err := p.ProcessRetention(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
