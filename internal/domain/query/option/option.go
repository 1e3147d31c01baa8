package option

import (
	"fmt"
	"net/url"
	"strings"
)

// Option is a single query-string parameter: either name=value or a bare flag.
type Option struct {
	name  string
	value string
	flag  bool
}

// Value creates a name=value option. The value is stringified with default formatting.
func Value[V any](name string, v V) Option {
	return Option{name: name, value: fmt.Sprint(v)}
}

// Flag creates a bare option rendered as &name.
func Flag(name string) Option {
	return Option{name: name, flag: true}
}

// Name returns the parameter name.
func (o Option) Name() string { return o.name }

// Val returns the parameter value; empty for flags.
func (o Option) Val() string { return o.value }

// IsFlag reports whether the option carries no value.
func (o Option) IsFlag() bool { return o.flag }

// Render returns the option as a query-string fragment, including the leading '&'.
func (o Option) Render() string {
	if o.flag {
		return "&" + o.name
	}
	return "&" + o.name + "=" + o.value
}

// Encode is Render with the name and value percent-encoded for the wire.
func (o Option) Encode() string {
	if o.flag {
		return "&" + url.QueryEscape(o.name)
	}
	return "&" + url.QueryEscape(o.name) + "=" + url.QueryEscape(o.value)
}

// Set is an ordered collection of options, unique by name.
type Set struct {
	opts []Option
}

// New creates a Set. Later options with a duplicate name replace earlier ones in place.
func New(opts ...Option) Set {
	var s Set
	for _, o := range opts {
		s = s.With(o)
	}
	return s
}

// With returns a copy of the set with o added, or replacing an option of the same name
// at its original position.
func (s Set) With(o Option) Set {
	out := make([]Option, len(s.opts), len(s.opts)+1)
	copy(out, s.opts)
	for i := range out {
		if out[i].name == o.name {
			out[i] = o
			return Set{opts: out}
		}
	}
	return Set{opts: append(out, o)}
}

// Without returns a copy of the set with the named option removed.
func (s Set) Without(name string) Set {
	out := make([]Option, 0, len(s.opts))
	for _, o := range s.opts {
		if o.name != name {
			out = append(out, o)
		}
	}
	return Set{opts: out}
}

// Get returns the named option.
func (s Set) Get(name string) (Option, bool) {
	for _, o := range s.opts {
		if o.name == name {
			return o, true
		}
	}
	return Option{}, false
}

// Options returns the options in order.
func (s Set) Options() []Option { return s.opts }

// Len returns the number of options.
func (s Set) Len() int { return len(s.opts) }

// Render concatenates every option fragment in order.
func (s Set) Render() string {
	var b strings.Builder
	for _, o := range s.opts {
		b.WriteString(o.Render())
	}
	return b.String()
}

// Encode concatenates every encoded option fragment in order.
func (s Set) Encode() string {
	var b strings.Builder
	for _, o := range s.opts {
		b.WriteString(o.Encode())
	}
	return b.String()
}

// Parse reads an option from name=value or a bare name.
func Parse(expr string) Option {
	name, value, ok := strings.Cut(expr, "=")
	if !ok {
		return Flag(name)
	}
	return Value(name, value)
}
