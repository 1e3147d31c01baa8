package chi

import (
	"context"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/option"
	"github.com/kailas-cloud/indexwatch/internal/usecase/convergence"
	healthuc "github.com/kailas-cloud/indexwatch/internal/usecase/health"
	"github.com/kailas-cloud/indexwatch/internal/usecase/playback"
)

// Poller waits for a job's indexed count to settle.
type Poller interface {
	WaitForJob(ctx context.Context, jobID string) (convergence.Outcome, error)
}

// PlaybackChecker waits for every item of a job to be indexed.
type PlaybackChecker interface {
	CheckAllPlayed(ctx context.Context, jobID string, expected, deleted int) (playback.Report, error)
}

// Documents reads documents from the index.
type Documents interface {
	Count(ctx context.Context, spec filter.Spec) (int, error)
	Paged(ctx context.Context, spec filter.Spec, fields []string, opts option.Set) (domain.Page, error)
}

// History reads recorded poll outcomes.
type History interface {
	Last(ctx context.Context, key string) (convergence.Outcome, error)
}

// URLBuilder renders select URLs against the configured core.
type URLBuilder interface {
	URL(q query.Query) string
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
