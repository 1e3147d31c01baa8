package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/indexwatch/internal/db"
	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/usecase/convergence"
)

// ErrNotFound is returned when no outcome was recorded for a key.
var ErrNotFound = errors.New("history: no outcome recorded")

// store is the consumer interface for the history repo (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo keeps the last poll outcome per key and a counter per terminal state.
type Repo struct {
	store store
	ttl   time.Duration
}

// New creates a history repository. A zero ttl keeps entries forever.
func New(s store, ttl time.Duration) *Repo {
	return &Repo{store: s, ttl: ttl}
}

// Record implements convergence.Recorder.
func (r *Repo) Record(ctx context.Context, o convergence.Outcome) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	if err := r.store.SetWithTTL(ctx, outcomeKey(o.Key), data, r.ttl); err != nil {
		return fmt.Errorf("store outcome: %w", err)
	}

	ck := counterKey(o.Phase)
	if err := r.store.IncrBy(ctx, ck, 1); err != nil {
		return fmt.Errorf("count outcome: %w", err)
	}
	if r.ttl > 0 {
		if err := r.store.Expire(ctx, ck, r.ttl, true); err != nil {
			return fmt.Errorf("expire counter: %w", err)
		}
	}
	return nil
}

// Last returns the most recent outcome recorded for key.
func (r *Repo) Last(ctx context.Context, key string) (convergence.Outcome, error) {
	data, err := r.store.Get(ctx, outcomeKey(key))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return convergence.Outcome{}, ErrNotFound
		}
		return convergence.Outcome{}, fmt.Errorf("load outcome: %w", err)
	}
	var o convergence.Outcome
	if err := json.Unmarshal(data, &o); err != nil {
		return convergence.Outcome{}, fmt.Errorf("unmarshal outcome: %w", err)
	}
	return o, nil
}

// Keys lists every key with a recorded outcome.
func (r *Repo) Keys(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, outcomeKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan outcomes: %w", err)
	}
	prefix := outcomeKey("")
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, prefix))
	}
	return out, nil
}

// Counts returns how many polls ended in each terminal state.
func (r *Repo) Counts(ctx context.Context) (map[convergence.Phase]int64, error) {
	counts := make(map[convergence.Phase]int64, 3)
	for _, p := range []convergence.Phase{convergence.Converged, convergence.Exhausted, convergence.Failed} {
		data, err := r.store.Get(ctx, counterKey(p))
		if errors.Is(err, db.ErrKeyNotFound) {
			counts[p] = 0
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load counter %s: %w", p, err)
		}
		n, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse counter %s: %w", p, err)
		}
		counts[p] = n
	}
	return counts, nil
}

// Forget removes the outcome recorded for key.
func (r *Repo) Forget(ctx context.Context, key string) error {
	if err := r.store.Del(ctx, outcomeKey(key)); err != nil {
		return fmt.Errorf("delete outcome: %w", err)
	}
	return nil
}

func outcomeKey(key string) string {
	return domain.KeyPrefix + "history:" + key
}

func counterKey(p convergence.Phase) string {
	return domain.KeyPrefix + "outcomes:" + string(p)
}
