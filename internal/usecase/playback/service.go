package playback

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
	logpkg "github.com/kailas-cloud/indexwatch/internal/logger"
	"github.com/kailas-cloud/indexwatch/internal/metrics"
)

const metricKind = "playback"

// Result labels of a playback check.
const (
	ResultComplete   = "COMPLETE"
	ResultIncomplete = "INCOMPLETE"
	ResultStalled    = "STALLED"
	ResultFailed     = "FAILED"
)

// Report describes how far a job's items made it into the index.
type Report struct {
	JobID    string        `json:"job_id"`
	Expected int           `json:"expected"`
	Indexed  int           `json:"indexed"`
	Deleted  int           `json:"deleted"`
	Attempts int           `json:"attempts"`
	Complete bool          `json:"complete"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

// Missing returns how many items are still not indexed.
func (r Report) Missing() int {
	if m := r.Expected - r.Indexed; m > 0 {
		return m
	}
	return 0
}

// Service waits until every item of a backup job is indexed.
type Service struct {
	counter Counter
	cfg     domain.PollConfig
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
}

// New creates a playback checker. Zero config fields fall back to one minute / 10 attempts.
func New(counter Counter, cfg domain.PollConfig, logger *zap.Logger) *Service {
	def := domain.DefaultPlaybackConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{counter: counter, cfg: cfg, logger: logger, sleep: sleepCtx, now: time.Now}
}

// CheckAllPlayed compares the items indexed for jobID (plus deleted, the objects removed
// right before the job) with expected, the item count of the backup job.
//
// While items are missing it waits one interval per attempt and re-samples. When a
// sample shows no progress it waits one more interval; a count that is still unchanged
// fails with domain.ErrPlaybackStalled. Running out of attempts returns an incomplete
// report with a nil error.
func (s *Service) CheckAllPlayed(ctx context.Context, jobID string, expected, deleted int) (Report, error) {
	start := s.now()
	log := logpkg.FromContext(ctx, s.logger).With(zap.String("job_id", jobID))

	entry, err := filter.Field(domain.JobIDField, jobID)
	if err != nil {
		return Report{}, err
	}
	spec := filter.Spec{entry}

	rep := Report{JobID: jobID, Expected: expected, Deleted: deleted}
	finish := func(result string, err error) (Report, error) {
		rep.Elapsed = s.now().Sub(start)
		rep.Complete = rep.Missing() == 0
		metrics.PollOutcomesTotal.WithLabelValues(metricKind, result).Inc()
		metrics.PollAttempts.WithLabelValues(metricKind).Observe(float64(rep.Attempts))
		metrics.LastObservedCount.WithLabelValues(metricKind).Set(float64(rep.Indexed))
		return rep, err
	}

	sample := func() error {
		n, err := s.counter.Count(ctx, spec)
		if err != nil {
			return err
		}
		rep.Indexed = n + deleted
		return nil
	}

	if err := sample(); err != nil {
		return finish(ResultFailed, fmt.Errorf("count job %s: %w", jobID, err))
	}
	previous := -1

	for rep.Missing() > 0 && rep.Attempts < s.cfg.MaxAttempts {
		rep.Attempts++
		log.Info("items not yet played, waiting",
			zap.Int("indexed", rep.Indexed),
			zap.Int("expected", expected),
			zap.Duration("interval", s.cfg.Interval),
		)
		if err := s.sleep(ctx, s.cfg.Interval); err != nil {
			return finish(ResultFailed, fmt.Errorf("wait interrupted: %w", err))
		}

		if rep.Indexed != previous {
			previous = rep.Indexed
			if err := sample(); err != nil {
				return finish(ResultFailed, fmt.Errorf("count job %s: %w", jobID, err))
			}
			continue
		}

		if err := s.sleep(ctx, s.cfg.Interval); err != nil {
			return finish(ResultFailed, fmt.Errorf("wait interrupted: %w", err))
		}
		rep.Attempts++
		if err := sample(); err != nil {
			return finish(ResultFailed, fmt.Errorf("count job %s: %w", jobID, err))
		}
		if rep.Indexed == previous {
			log.Error("playback stalled", zap.Int("indexed", rep.Indexed), zap.Int("expected", expected))
			return finish(ResultStalled, fmt.Errorf("job %s: %d of %d items: %w",
				jobID, rep.Indexed, expected, domain.ErrPlaybackStalled))
		}
	}

	if rep.Missing() > 0 {
		log.Warn("attempts exhausted before every item was played",
			zap.Int("indexed", rep.Indexed), zap.Int("expected", expected))
		return finish(ResultIncomplete, nil)
	}
	log.Info("job played", zap.Int("indexed", rep.Indexed), zap.Int("expected", expected))
	return finish(ResultComplete, nil)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
