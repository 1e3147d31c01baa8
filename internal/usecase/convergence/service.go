package convergence

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

const metricKind = "indexed"

// Service polls the indexed item count of a filter until it stops moving.
// A Service holds no per-poll state; concurrent Wait calls are independent.
type Service struct {
	counter  Counter
	recorder Recorder
	cfg      domain.PollConfig
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
}

// New creates a convergence poller. Zero config fields fall back to defaults.
func New(counter Counter, cfg domain.PollConfig, logger *zap.Logger) *Service {
	def := domain.DefaultPollConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		counter: counter,
		cfg:     cfg,
		logger:  logger,
		sleep:   sleepCtx,
		now:     time.Now,
	}
}

// WithRecorder stores every terminal outcome.
func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

// Config returns the effective poll settings.
func (s *Service) Config() domain.PollConfig { return s.cfg }

// WaitForJob polls the items indexed for a backup job.
func (s *Service) WaitForJob(ctx context.Context, jobID string) (Outcome, error) {
	entry, err := filter.Field(domain.JobIDField, jobID)
	if err != nil {
		return Outcome{}, err
	}
	return s.wait(ctx, jobID, filter.Spec{entry})
}

// Wait polls the count of spec until CONVERGED, EXHAUSTED or FAILED.
// EXHAUSTED returns a nil error; FAILED always returns one.
func (s *Service) Wait(ctx context.Context, spec filter.Spec) (Outcome, error) {
	return s.wait(ctx, filter.Compile(spec), spec)
}

func (s *Service) wait(ctx context.Context, key string, spec filter.Spec) (Outcome, error) {
	start := s.now()
	st := State{Phase: Init, Previous: -1}
	var samples []int

	log := logpkg.FromContext(ctx, s.logger).With(zap.String("key", key))

	finish := func(phase Phase, err error) (Outcome, error) {
		st.Phase = phase
		st.Elapsed = s.now().Sub(start)
		o := Outcome{
			Key:        key,
			Phase:      phase,
			Count:      st.Current,
			Previous:   st.Previous,
			Attempts:   st.Attempts,
			Samples:    samples,
			Elapsed:    st.Elapsed,
			FinishedAt: s.now().UTC(),
		}
		if err != nil {
			o.Error = err.Error()
		}
		s.observe(ctx, log, o)
		return o, err
	}

	n, err := s.counter.Count(ctx, spec)
	if err != nil {
		return finish(Failed, fmt.Errorf("initial sample: %w", err))
	}
	st.Current = n
	samples = append(samples, n)
	st.Phase = Polling
	log.Debug("initial sample", zap.Int("count", n))

	for {
		if st.converged() {
			return finish(Converged, nil)
		}
		if st.Attempts >= s.cfg.MaxAttempts {
			if st.Current == 0 {
				return finish(Failed, fmt.Errorf("%s after %d attempts: %w", key, st.Attempts, domain.ErrNotIndexed))
			}
			return finish(Exhausted, nil)
		}

		if err := s.sleep(ctx, s.cfg.Interval); err != nil {
			return finish(Failed, fmt.Errorf("wait interrupted: %w", err))
		}

		n, err := s.counter.Count(ctx, spec)
		if err != nil {
			return finish(Failed, fmt.Errorf("sample %d: %w", st.Attempts+1, err))
		}
		st.Previous, st.Current = st.Current, n
		st.Attempts++
		samples = append(samples, n)
		log.Debug("sample",
			zap.Int("attempt", st.Attempts),
			zap.Int("previous", st.Previous),
			zap.Int("count", st.Current),
		)
	}
}

func (s *Service) observe(ctx context.Context, log *zap.Logger, o Outcome) {
	metrics.PollOutcomesTotal.WithLabelValues(metricKind, string(o.Phase)).Inc()
	metrics.PollAttempts.WithLabelValues(metricKind).Observe(float64(o.Attempts))
	metrics.LastObservedCount.WithLabelValues(metricKind).Set(float64(o.Count))

	fields := []zap.Field{
		zap.String("state", string(o.Phase)),
		zap.Int("count", o.Count),
		zap.Int("attempts", o.Attempts),
		zap.Duration("elapsed", o.Elapsed),
	}
	switch o.Phase {
	case Converged:
		log.Info("index converged", fields...)
	case Exhausted:
		log.Warn("poll budget exhausted, count still moving", fields...)
	default:
		log.Error("poll failed", append(fields, zap.String("error", o.Error))...)
	}

	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(context.WithoutCancel(ctx), o); err != nil {
		log.Warn("record outcome", zap.Error(err))
	}
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
