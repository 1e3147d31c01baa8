// Package retention shifts retention timestamps used to age index items.
package retention

import (
	"time"

	"github.com/kailas-cloud/indexwatch/internal/domain"
)

// Layout is the wire format of retention timestamps (DateDeleted).
const Layout = "2006-01-02T15:04:05Z"

// SubtractDays moves ts back by days calendar days and renders it in the same layout.
// Negative days move it forward.
func SubtractDays(ts string, days int) (string, error) {
	t, err := time.Parse(Layout, ts)
	if err != nil {
		return "", &domain.TimeParseError{Value: ts, Err: err}
	}
	return t.AddDate(0, 0, -days).Format(Layout), nil
}
