package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/nyc-coffee-inspections/internal/scope"
)

func TestMetrics_ObserveFetches(t *testing.T) {
	m := NewMetricsForTesting()

	m.FetchCompleted(scope.KindList, scope.StatusReady, 120, 300*time.Millisecond)
	m.FetchCompleted(scope.KindDetail, scope.StatusUnavailable, 0, time.Second)
	m.FetchDiscarded(scope.KindDetail)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScopeFetches.WithLabelValues("list", "ready")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScopeFetches.WithLabelValues("detail", "unavailable")))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.ListRecords), "only the list scope sets the gauge")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleFetches.WithLabelValues("detail")))
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.SourceErrors.Inc()
	a.DetailLookups.WithLabelValues("found").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.SourceErrors))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SourceErrors))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.DetailLookups.WithLabelValues("found")))
}
