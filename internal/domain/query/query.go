package query

import (
	"net/url"
	"strings"

	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/option"
)

// Operation is the request handler appended to a core URL.
type Operation string

const (
	// Select runs searches.
	Select Operation = "select"
	// Update applies document updates.
	Update Operation = "update"
	// Luke describes the index schema.
	Luke Operation = "admin/luke"
)

// ResponseFormat is the only wt value ever sent.
const ResponseFormat = "json"

// Endpoint addresses one request handler of one core. It is a value: switching
// between select and update produces a new Endpoint instead of mutating shared state.
type Endpoint struct {
	// BaseURL is the core URL, e.g. http://host:20000/solr/idx_guid_multinode/.
	// With an empty Operation it is used verbatim as the URL prefix.
	BaseURL   string
	Operation Operation
}

// CoreURL renders {server}/solr/{index}_{backupset}_multinode/.
func CoreURL(serverURL, indexName, backupsetID string) string {
	return strings.TrimRight(serverURL, "/") + "/solr/" + indexName + "_" + backupsetID + "_multinode/"
}

// NewEndpoint creates an endpoint for the given core URL and operation.
func NewEndpoint(coreURL string, op Operation) Endpoint {
	return Endpoint{BaseURL: coreURL, Operation: op}
}

// With returns the same core addressed at another operation.
func (e Endpoint) With(op Operation) Endpoint {
	return Endpoint{BaseURL: e.BaseURL, Operation: op}
}

// String renders the URL prefix the query string is appended to.
func (e Endpoint) String() string {
	if e.Operation == "" {
		return e.BaseURL
	}
	base := e.BaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + string(e.Operation) + "?"
}

// Query bundles the clause, projection and extra parameters of a request.
type Query struct {
	Filter  filter.Spec
	Fields  []string
	Options option.Set
}

// Count returns a query that fetches only numFound (rows=0).
func Count(spec filter.Spec) Query {
	return Query{Filter: spec, Options: option.New(option.Value("rows", 0))}
}

// Build assembles the full request URL:
//
//	{endpoint}q={clause}[&fl=f1,f2]&wt=json{options}
//
// wt=json is rendered exactly once whatever the caller passed. Values are left
// verbatim, so the result is for display; send Encode's output instead.
func Build(ep Endpoint, q Query) string {
	return assemble(ep, q, false)
}

// Encode assembles the same URL as Build with every parameter percent-encoded.
func Encode(ep Endpoint, q Query) string {
	return assemble(ep, q, true)
}

func assemble(ep Endpoint, q Query, escape bool) string {
	esc := func(s string) string { return s }
	if escape {
		esc = url.QueryEscape
	}
	opts := q.Options.Without("wt")

	var b strings.Builder
	b.WriteString(ep.String())
	b.WriteString("q=")
	b.WriteString(esc(filter.Compile(q.Filter)))
	if fl := fieldList(q.Fields); fl != "" {
		b.WriteString("&fl=")
		b.WriteString(esc(fl))
	}
	b.WriteString(option.Value("wt", ResponseFormat).Render())
	if escape {
		b.WriteString(opts.Encode())
	} else {
		b.WriteString(opts.Render())
	}
	return b.String()
}

func fieldList(fields []string) string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			names = append(names, f)
		}
	}
	return strings.Join(names, ",")
}

// Command assembles a URL for handlers that take no q clause (update, admin/luke):
//
//	{endpoint}wt=json{options}
func Command(ep Endpoint, opts option.Set) string {
	return ep.String() + "wt=" + ResponseFormat + opts.Without("wt").Encode()
}
