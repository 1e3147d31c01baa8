package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/indexwatch/internal/domain"
)

// KeywordKey is the reserved field name that turns an entry into a free-text override.
const KeywordKey = "keyword"

// MatchAll is the clause compiled from an empty Spec.
const MatchAll = "*:*"

// Kind discriminates filter entries.
type Kind int

const (
	// KindFieldMatch matches one field against one value or a value list.
	KindFieldMatch Kind = iota + 1
	// KindFieldGroupMatch matches any of several fields against the value(s).
	KindFieldGroupMatch
	// KindFreeTextOverride inserts raw query syntax and discards every sibling entry.
	KindFreeTextOverride
)

func (k Kind) String() string {
	switch k {
	case KindFieldMatch:
		return "field"
	case KindFieldGroupMatch:
		return "group"
	case KindFreeTextOverride:
		return "keyword"
	default:
		return "unknown"
	}
}

// Entry is a single selector of a Spec.
type Entry struct {
	kind   Kind
	fields []string
	values []string
	list   bool
	raw    string
}

// Field creates a scalar field match: field:value.
// The reserved field "keyword" yields a free-text override instead.
func Field[V any](name string, value V) (Entry, error) {
	if name == "" {
		return Entry{}, fmt.Errorf("%w: field name is required", domain.ErrInvalidFilter)
	}
	v := fmt.Sprint(value)
	if name == KeywordKey {
		return Keyword(v), nil
	}
	return Entry{kind: KindFieldMatch, fields: []string{name}, values: []string{v}}, nil
}

// In creates a value-list match: (field:v1 OR field:v2 ...).
// The clause is parenthesized even for a single value.
func In[V any](name string, values ...V) (Entry, error) {
	if name == "" {
		return Entry{}, fmt.Errorf("%w: field name is required", domain.ErrInvalidFilter)
	}
	if len(values) == 0 {
		return Entry{}, fmt.Errorf("%w: at least one value is required for field %q", domain.ErrInvalidFilter, name)
	}
	return Entry{kind: KindFieldMatch, fields: []string{name}, values: stringify(values), list: true}, nil
}

// Group creates a field-group match across every (field, value) pair:
// (f1:v1 OR f1:v2 OR f2:v1 OR f2:v2).
func Group[V any](fields []string, values ...V) (Entry, error) {
	if len(fields) == 0 {
		return Entry{}, fmt.Errorf("%w: field group is empty", domain.ErrInvalidFilter)
	}
	for _, f := range fields {
		if f == "" {
			return Entry{}, fmt.Errorf("%w: field group contains an empty name", domain.ErrInvalidFilter)
		}
	}
	if len(values) == 0 {
		return Entry{}, fmt.Errorf("%w: at least one value is required for group %v", domain.ErrInvalidFilter, fields)
	}
	return Entry{
		kind:   KindFieldGroupMatch,
		fields: append([]string(nil), fields...),
		values: stringify(values),
	}, nil
}

// Keyword creates a free-text override. raw is inserted verbatim.
func Keyword(raw string) Entry {
	return Entry{kind: KindFreeTextOverride, raw: raw}
}

// Kind returns the entry kind.
func (e Entry) Kind() Kind { return e.kind }

// Fields returns the matched field names.
func (e Entry) Fields() []string { return e.fields }

// Values returns the stringified values.
func (e Entry) Values() []string { return e.values }

// Raw returns the free-text override body.
func (e Entry) Raw() string { return e.raw }

func (e Entry) clause() string {
	switch e.kind {
	case KindFieldGroupMatch:
		return "(" + e.orJoin() + ")"
	case KindFieldMatch:
		if e.list {
			return "(" + e.orJoin() + ")"
		}
		return e.fields[0] + ":" + e.values[0]
	case KindFreeTextOverride:
		return "(" + e.raw + ")"
	default:
		return ""
	}
}

func (e Entry) orJoin() string {
	parts := make([]string, 0, len(e.fields)*len(e.values))
	for _, f := range e.fields {
		for _, v := range e.values {
			parts = append(parts, f+":"+v)
		}
	}
	return strings.Join(parts, " OR ")
}

// Spec is an ordered filter specification. All entries are AND-joined.
type Spec []Entry

// Compile turns the spec into the body of the q= parameter.
//
// A free-text override anywhere in the spec wins: its raw text becomes the whole
// clause and every other entry is dropped. An empty spec matches everything.
// Values are not escaped; see Sanitize.
func Compile(spec Spec) string {
	if len(spec) == 0 {
		return MatchAll
	}
	for _, e := range spec {
		if e.kind == KindFreeTextOverride {
			return e.clause()
		}
	}
	parts := make([]string, 0, len(spec))
	for _, e := range spec {
		if c := e.clause(); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " AND ")
}

// HasOverride reports whether a free-text override will discard other entries.
func (s Spec) HasOverride() bool {
	for _, e := range s {
		if e.kind == KindFreeTextOverride {
			return true
		}
	}
	return false
}

// Sanitize escapes Lucene/Solr query syntax characters in a value.
// Compile never applies it: callers sanitize untrusted values explicitly.
func Sanitize(v string) string {
	return queryEscaper.Replace(v)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`+`, `\+`,
	`-`, `\-`,
	`&`, `\&`,
	`|`, `\|`,
	`!`, `\!`,
	`(`, `\(`,
	`)`, `\)`,
	`{`, `\{`,
	`}`, `\}`,
	`[`, `\[`,
	`]`, `\]`,
	`^`, `\^`,
	`"`, `\"`,
	`~`, `\~`,
	`*`, `\*`,
	`?`, `\?`,
	`:`, `\:`,
	`/`, `\/`,
	` `, `\ `,
)

func stringify[V any](values []V) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}

// Must unwraps an entry constructor result and panics on error.
// Intended for entries built from constants.
func Must(e Entry, err error) Entry {
	if err != nil {
		panic(err)
	}
	return e
}
