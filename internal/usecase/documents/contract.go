package documents

import (
	"context"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
)

// Repository defines the index operations documents are read and written through.
type Repository interface {
	Count(ctx context.Context, spec filter.Spec) (int, error)
	Search(ctx context.Context, q query.Query) (domain.Page, error)
	Update(ctx context.Context, id, field string, value any) error
	FieldNames(ctx context.Context) ([]string, error)
}
