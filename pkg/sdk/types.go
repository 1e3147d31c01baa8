package indexwatch

import (
	"time"

	"github.com/kailas-cloud/indexwatch/internal/domain"
	"github.com/kailas-cloud/indexwatch/internal/domain/query"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/filter"
	"github.com/kailas-cloud/indexwatch/internal/domain/query/option"
	"github.com/kailas-cloud/indexwatch/internal/usecase/convergence"
	"github.com/kailas-cloud/indexwatch/internal/usecase/playback"
)

// Poll states reported in Outcome.State.
const (
	StateConverged = string(convergence.Converged)
	StateExhausted = string(convergence.Exhausted)
	StateFailed    = string(convergence.Failed)
)

// Query selects documents.
type Query struct {
	// Filters are ANDed expressions such as "JobId=100" or "Type=1,2".
	Filters []string
	// Fields limits the returned fields. Empty returns all.
	Fields []string
	// Options are extra parameters, "name=value" or a bare flag.
	// wt is always json.
	Options []string
}

func (q Query) compile() (query.Query, error) {
	spec, err := filter.ParseSpec(q.Filters)
	if err != nil {
		return query.Query{}, err
	}
	opts := option.New()
	for _, expr := range q.Options {
		opts = opts.With(option.Parse(expr))
	}
	return query.Query{Filter: spec, Fields: q.Fields, Options: opts}, nil
}

// Document is one indexed document keyed by field name.
type Document map[string]any

// Page is a window of search results.
type Page struct {
	Total int
	Docs  []Document
}

// Outcome is the terminal result of a convergence poll.
type Outcome struct {
	Key      string
	State    string
	Count    int
	Attempts int
	Samples  []int
	Elapsed  time.Duration
}

// Converged reports whether two consecutive samples agreed.
func (o Outcome) Converged() bool { return o.State == StateConverged }

// PlaybackReport describes how far a job's items made it into the index.
type PlaybackReport struct {
	JobID    string
	Expected int
	Indexed  int
	Deleted  int
	Missing  int
	Attempts int
	Complete bool
	Elapsed  time.Duration
}

func documentsFromDomain(in []domain.Document) []Document {
	out := make([]Document, len(in))
	for i, d := range in {
		out[i] = Document(d)
	}
	return out
}

func pageFromDomain(p domain.Page) Page {
	return Page{Total: p.Total, Docs: documentsFromDomain(p.Docs)}
}

func outcomeFromDomain(o convergence.Outcome) Outcome {
	return Outcome{
		Key:      o.Key,
		State:    string(o.Phase),
		Count:    o.Count,
		Attempts: o.Attempts,
		Samples:  o.Samples,
		Elapsed:  o.Elapsed,
	}
}

func reportFromDomain(r playback.Report) PlaybackReport {
	return PlaybackReport{
		JobID:    r.JobID,
		Expected: r.Expected,
		Indexed:  r.Indexed,
		Deleted:  r.Deleted,
		Missing:  r.Missing(),
		Attempts: r.Attempts,
		Complete: r.Complete,
		Elapsed:  r.Elapsed,
	}
}
