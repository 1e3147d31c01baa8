package documents

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/option"
)

const defaultPageSize = 100

// Service reads and updates indexed documents.
type Service struct {
	repo     Repository
	logger   *zap.Logger
	pageSize int
}

// New creates a document service.
func New(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, pageSize: defaultPageSize}
}

// WithPageSize configures how many rows each paged request fetches.
func (s *Service) WithPageSize(n int) *Service {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// Count returns the number of documents matching spec.
func (s *Service) Count(ctx context.Context, spec filter.Spec) (int, error) {
	return s.repo.Count(ctx, spec)
}

// All fetches every document matching spec: a zero-row request for the count, then
// one request with rows set to that count.
func (s *Service) All(ctx context.Context, spec filter.Spec, fields []string) ([]domain.Document, error) {
	total, err := s.repo.Count(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	s.logger.Info("items on index", zap.Int("count", total))
	if total == 0 {
		return []domain.Document{}, nil
	}

	page, err := s.repo.Search(ctx, query.Query{
		Filter:  spec,
		Fields:  fields,
		Options: option.New(option.Value("rows", total)),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %d documents: %w", total, err)
	}
	return page.Docs, nil
}

// Paged fetches the documents matching spec in pages. Optional "start" and "rows"
// options bound the window; any other option is passed through on every request.
// The returned Total is the full match count, independent of the window.
func (s *Service) Paged(ctx context.Context, spec filter.Spec, fields []string, opts option.Set) (domain.Page, error) {
	start, err := intOption(opts, "start", 0)
	if err != nil {
		return domain.Page{}, err
	}
	rows, err := intOption(opts, "rows", -1)
	if err != nil {
		return domain.Page{}, err
	}
	base := opts.Without("start").Without("rows")

	total, err := s.repo.Count(ctx, spec)
	if err != nil {
		return domain.Page{}, fmt.Errorf("count: %w", err)
	}

	remaining := total - start
	if rows >= 0 && rows < remaining {
		remaining = rows
	}

	docs := make([]domain.Document, 0, max(remaining, 0))
	for remaining > 0 {
		n := min(s.pageSize, remaining)
		page, err := s.repo.Search(ctx, query.Query{
			Filter:  spec,
			Fields:  fields,
			Options: base.With(option.Value("start", start)).With(option.Value("rows", n)),
		})
		if err != nil {
			return domain.Page{}, fmt.Errorf("fetch page at %d: %w", start, err)
		}
		docs = append(docs, page.Docs...)
		if len(page.Docs) == 0 {
			break
		}
		remaining -= n
		start += n
	}

	return domain.Page{Total: total, Docs: docs}, nil
}

// UpdateField sets field to value on the document with the given unique key.
func (s *Service) UpdateField(ctx context.Context, id, field string, value any) error {
	if err := s.repo.Update(ctx, id, field, value); err != nil {
		s.logger.Error("update field",
			zap.String("id", id),
			zap.String("field", field),
			zap.Error(err),
		)
		return err
	}
	s.logger.Info("field updated",
		zap.String("id", id),
		zap.String("field", field),
		zap.Any("value", value),
	)
	return nil
}

// FieldNames lists the fields defined in the index.
func (s *Service) FieldNames(ctx context.Context) ([]string, error) {
	return s.repo.FieldNames(ctx)
}

// IsContentIndexed reports whether exactly expected documents match spec.
func (s *Service) IsContentIndexed(ctx context.Context, spec filter.Spec, expected int) (bool, int, error) {
	n, err := s.repo.Count(ctx, spec)
	if err != nil {
		return false, 0, err
	}
	s.logger.Info("content indexed", zap.Int("count", n), zap.Int("expected", expected))
	return n == expected, n, nil
}

func intOption(opts option.Set, name string, def int) (int, error) {
	o, ok := opts.Get(name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(o.Val())
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s=%q: %w", name, o.Val(), domain.ErrInvalidOption)
	}
	return n, nil
}
