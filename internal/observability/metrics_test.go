package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, cs ...prometheus.Collector) map[string]float64 {
	t.Helper()
	reg := prometheus.NewRegistry()
	reg.MustRegister(cs...)
	families, err := reg.Gather()
	require.NoError(t, err)

	out := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			out[f.GetName()] += m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
	}
	return out
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.ProductsConsumed.Add(3)
	a.RecordsPersisted.WithLabelValues("lsr").Inc()

	got := gather(t, a.ProductsConsumed, a.RecordsPersisted)
	assert.InDelta(t, 3, got["nws_ingest_products_consumed_total"], 0)
	assert.InDelta(t, 1, got["nws_ingest_records_persisted_total"], 0)

	got = gather(t, b.ProductsConsumed)
	assert.InDelta(t, 0, got["nws_ingest_products_consumed_total"], 0)
}

func TestMetrics_PipelineRunningGauge(t *testing.T) {
	m := NewMetricsForTesting()
	m.PipelineRunning.Set(1)
	m.ParserWarnings.WithLabelValues("metar").Add(2)

	got := gather(t, m.PipelineRunning, m.ParserWarnings)
	assert.InDelta(t, 1, got["nws_ingest_pipeline_running"], 0)
	assert.InDelta(t, 2, got["nws_ingest_parser_warnings_total"], 0)
}
