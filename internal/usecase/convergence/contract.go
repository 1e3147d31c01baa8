package convergence

import (
	"context"

	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
)

// Counter returns the strict match count of a filter (error check + numFound).
type Counter interface {
	Count(ctx context.Context, spec filter.Spec) (int, error)
}

// Recorder persists terminal outcomes. Optional.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}
