package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterSolrMetrics_Idempotent(t *testing.T) {
	RegisterSolrMetrics()
	RegisterSolrMetrics()

	if err := prometheus.Register(SolrRequestsTotal); err == nil {
		t.Fatal("expected SolrRequestsTotal to be registered already")
	}
}

func TestPollMetrics(t *testing.T) {
	PollOutcomesTotal.WithLabelValues("indexed", "CONVERGED").Inc()
	LastObservedCount.WithLabelValues("indexed").Set(42)

	if v := testutil.ToFloat64(PollOutcomesTotal.WithLabelValues("indexed", "CONVERGED")); v < 1 {
		t.Errorf("poll_outcomes_total = %v", v)
	}
	if v := testutil.ToFloat64(LastObservedCount.WithLabelValues("indexed")); v != 42 {
		t.Errorf("last_observed_count = %v", v)
	}
}
