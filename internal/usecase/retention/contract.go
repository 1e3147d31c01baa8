package retention

import (
	"context"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
)

// Documents reads and updates indexed documents.
type Documents interface {
	All(ctx context.Context, spec filter.Spec, fields []string) ([]domain.Document, error)
	UpdateField(ctx context.Context, id, field string, value any) error
}

// Processor runs the backup product's retention rules against the index.
type Processor interface {
	ProcessRetention(ctx context.Context) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context) error

// ProcessRetention calls f.
func (f ProcessorFunc) ProcessRetention(ctx context.Context) error { return f(ctx) }
