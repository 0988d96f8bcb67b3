package exporter

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, metric prometheus.Metric) float64 {
	m := &dto.Metric{}
	require.NoError(t, metric.Write(m))
	if m.Gauge != nil {
		return m.Gauge.GetValue()
	}
	return m.Counter.GetValue()
}

func TestMetrics(t *testing.T) {
	// no-ops before Init
	IncErrorCount()
	IncOperation("deposit")
	SetAmount(METRIC_TOTAL_STAKED, uint256.NewInt(1), 0)

	Init()
	Init()

	IncErrorCount()
	IncErrorCount()
	assert.Equal(t, float64(2), value(t, GetCounter(METRIC_ERROR_COUNT)))

	IncOperation("deposit")
	assert.Equal(t, float64(1), value(t, operations.WithLabelValues("deposit")))

	amount := uint256.MustFromDecimal("50000250000000000000000")
	SetAmount(METRIC_TOTAL_STAKED, amount, 18)
	assert.InDelta(t, 50000.25, value(t, GetGauge(METRIC_TOTAL_STAKED)), 1e-9)
}
