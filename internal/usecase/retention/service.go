package retention

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
	domret "github.com/kailas-cloud/indexwatch/internal/domain/retention"
)

// windowSlack is added to the longest retention period when aging documents.
const windowSlack = 2

// NeverExpires is the retention period of items kept forever.
const NeverExpires = -1

// Report summarizes a retention validation run.
type Report struct {
	Window  int `json:"window_days"`
	Aged    int `json:"aged"`
	Checked int `json:"checked"`
	Hidden  int `json:"hidden"`
	Visible int `json:"visible"`
	Skipped int `json:"skipped"`
}

// Service ages deleted documents and checks that retention rules hid the right ones.
type Service struct {
	docs      Documents
	processor Processor
	uniqueKey string
	logger    *zap.Logger
}

// New creates a retention service. processor may be nil when only Age is used.
func New(docs Documents, processor Processor, uniqueKey string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{docs: docs, processor: processor, uniqueKey: uniqueKey, logger: logger}
}

// DeletedItems matches every document that carries a deletion time.
func DeletedItems() filter.Spec {
	return filter.Spec{filter.Must(filter.Field(domain.FieldDateDeleted, "[* TO *]"))}
}

// Age moves DateDeleted of every document matching spec days into the past.
// It returns the number of documents updated; documents without DateDeleted are skipped.
func (s *Service) Age(ctx context.Context, spec filter.Spec, days int) (int, error) {
	items, err := s.docs.All(ctx, spec, []string{s.uniqueKey, domain.FieldDateDeleted})
	if err != nil {
		return 0, fmt.Errorf("fetch documents: %w", err)
	}

	aged := 0
	for _, doc := range items {
		id, deleted := doc.String(s.uniqueKey), doc.String(domain.FieldDateDeleted)
		if id == "" || deleted == "" {
			continue
		}
		shifted, err := domret.SubtractDays(deleted, days)
		if err != nil {
			return aged, fmt.Errorf("document %s: %w", id, err)
		}
		if err := s.docs.UpdateField(ctx, id, domain.FieldDateDeleted, shifted); err != nil {
			return aged, fmt.Errorf("document %s: %w", id, err)
		}
		aged++
	}
	s.logger.Info("documents aged", zap.Int("count", aged), zap.Int("days", days))
	return aged, nil
}

// Validate checks retention for deleted documents matching spec (DeletedItems when empty).
// items maps an item key to its retention period in days, NeverExpires for none.
//
// Every matching document is aged by the longest period plus two days and the
// retention rules are run. Afterwards an item whose period is within that window must
// be hidden; an item kept forever or with a longer period must still be visible.
func (s *Service) Validate(ctx context.Context, spec filter.Spec, items map[string]int) (Report, error) {
	if len(spec) == 0 {
		spec = DeletedItems()
	}
	if s.processor == nil {
		return Report{}, fmt.Errorf("retention processor not configured: %w", domain.ErrRetentionNotSatisfied)
	}

	rep := Report{Window: window(items)}
	fields := []string{s.uniqueKey, domain.FieldDateDeleted, domain.FieldIsVisible, domain.FieldURL}

	before, err := s.docs.All(ctx, spec, fields)
	if err != nil {
		return rep, fmt.Errorf("fetch documents: %w", err)
	}
	if len(before) == 0 {
		return rep, domain.ErrNothingToCheck
	}
	s.logger.Info("items eligible for retention", zap.Int("count", len(before)), zap.Int("window_days", rep.Window))

	if rep.Aged, err = s.Age(ctx, spec, rep.Window); err != nil {
		return rep, err
	}
	if err := s.processor.ProcessRetention(ctx); err != nil {
		return rep, fmt.Errorf("process retention: %w", err)
	}

	after, err := s.docs.All(ctx, spec, fields)
	if err != nil {
		return rep, fmt.Errorf("fetch documents: %w", err)
	}

	for _, doc := range after {
		url := doc.String(domain.FieldURL)
		period, ok := items[ItemKey(url)]
		if !ok {
			rep.Skipped++
			s.logger.Warn("item not in retention map", zap.String("url", url))
			continue
		}
		visible, _ := doc.Bool(domain.FieldIsVisible)
		rep.Checked++
		if visible {
			rep.Visible++
		} else {
			rep.Hidden++
		}

		wantHidden := period > 0 && period <= rep.Window
		wantVisible := period == NeverExpires || period > rep.Window
		if (wantHidden && visible) || (wantVisible && !visible) {
			return rep, fmt.Errorf("%s (period %d, visible %t): %w", url, period, visible, domain.ErrRetentionNotSatisfied)
		}
		s.logger.Debug("retention validated", zap.String("url", url))
	}

	if len(after) != len(before) {
		return rep, fmt.Errorf("%d items before, %d after: %w", len(before), len(after), domain.ErrRetentionNotSatisfied)
	}
	s.logger.Info("retention validated", zap.Int("checked", rep.Checked))
	return rep, nil
}

// ItemKey returns the item a document belongs to: the third backslash-separated
// segment of its Url, or "" when there is none.
func ItemKey(url string) string {
	parts := strings.Split(url, `\`)
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

func window(items map[string]int) int {
	longest := 0
	first := true
	for _, p := range items {
		if first || p > longest {
			longest = p
			first = false
		}
	}
	return longest + windowSlack
}
