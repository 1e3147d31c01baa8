package playback

import (
	"context"

	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
)

// Counter returns the strict match count of a filter.
type Counter interface {
	Count(ctx context.Context, spec filter.Spec) (int, error)
}
