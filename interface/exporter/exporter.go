package exporter

import (
	"math/big"
	"sync"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	METRIC_ERROR_COUNT        = "error_count"
	METRIC_OPERATIONS         = "operations_total"
	METRIC_TOTAL_STAKED       = "total_staked"
	METRIC_TREASURY_BALANCE   = "treasury_balance"
	METRIC_TREASURY_ALLOWANCE = "treasury_allowance"
)

var (
	once       sync.Once
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	operations *prometheus.CounterVec
)

func Init() {
	once.Do(func() {
		counters = make(map[string]prometheus.Counter)
		gauges = make(map[string]prometheus.Gauge)

		counter := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "paycer",
			Subsystem: "staking",
			Name:      METRIC_ERROR_COUNT,
			Help:      "Counts the number of failed pool operations and monitor checks",
		})
		prometheus.MustRegister(counter)
		counters[METRIC_ERROR_COUNT] = counter

		operations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "paycer",
			Subsystem: "staking",
			Name:      METRIC_OPERATIONS,
			Help:      "Counts the number of committed pool operations by kind",
		}, []string{"kind"})
		prometheus.MustRegister(operations)

		for name, help := range map[string]string{
			METRIC_TOTAL_STAKED:       "Total staked amount of the pool in whole units",
			METRIC_TREASURY_BALANCE:   "Reward asset balance of the treasury in whole units",
			METRIC_TREASURY_ALLOWANCE: "Reward amount the treasury allows the pool to spend in whole units",
		} {
			gauge := prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "paycer",
				Subsystem: "staking",
				Name:      name,
				Help:      help,
			})
			prometheus.MustRegister(gauge)
			gauges[name] = gauge
		}
	})
}

func GetCounter(name string) prometheus.Counter {
	return counters[name]
}

func GetGauge(name string) prometheus.Gauge {
	return gauges[name]
}

// Metrics are optional; everything below is a no-op until Init is called.

func IncErrorCount() {
	if counter, ok := counters[METRIC_ERROR_COUNT]; ok {
		counter.Inc()
	}
}

func IncOperation(kind string) {
	if operations != nil {
		operations.WithLabelValues(kind).Inc()
	}
}

func SetAmount(name string, amount *uint256.Int, decimals uint8) {
	gauge, ok := gauges[name]
	if !ok {
		return
	}
	unit := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	value, _ := new(big.Float).Quo(new(big.Float).SetInt(amount.ToBig()), unit).Float64()
	gauge.Set(value)
}
