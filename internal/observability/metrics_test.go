package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.PlaceFetches.WithLabelValues("live").Inc()
	a.SnapshotsComputed.Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(a.PlaceFetches.WithLabelValues("live")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.PlaceFetches.WithLabelValues("live")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.SnapshotsComputed), 0)
}
