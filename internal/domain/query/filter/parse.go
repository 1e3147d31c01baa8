package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/indexwatch/internal/domain"
)

// Parse reads one entry from its textual form:
//
//	field=value         scalar match
//	field=v1,v2         value list
//	f1|f2=value[,v2]    field group
//	keyword=raw query   free-text override (raw is taken verbatim)
func Parse(expr string) (Entry, error) {
	key, value, ok := strings.Cut(expr, "=")
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q: expected key=value", domain.ErrInvalidFilter, expr)
	}
	key = strings.TrimSpace(key)
	if key == KeywordKey {
		return Keyword(value), nil
	}

	values := strings.Split(value, ",")
	if strings.Contains(key, "|") {
		return Group(strings.Split(key, "|"), values...)
	}
	if len(values) > 1 {
		return In(key, values...)
	}
	return Field(key, value)
}

// ParseSpec parses every expression in order.
func ParseSpec(exprs []string) (Spec, error) {
	spec := make(Spec, 0, len(exprs))
	for _, expr := range exprs {
		e, err := Parse(expr)
		if err != nil {
			return nil, err
		}
		spec = append(spec, e)
	}
	return spec, nil
}
