package exporter

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	METRIC_ERROR_COUNT     = "error_count"
	METRIC_OPERATION_COUNT = "operation_count"
	METRIC_TOTAL_ASSETS    = "total_assets"
	METRIC_TOTAL_SHARES    = "total_shares"
	METRIC_SHARE_PRICE     = "share_price"
	METRIC_ACCUMULATED_FEE = "accumulated_fee"
	METRIC_STRATEGY_TVL    = "strategy_tvl"
)

var (
	mu         sync.RWMutex
	registry   *prometheus.Registry
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]prometheus.Gauge
	strategies *prometheus.GaugeVec
)

// Init registers the metrics with a fresh registry and returns it for serving.
func Init() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	registry = prometheus.NewRegistry()
	counters = make(map[string]*prometheus.CounterVec)
	gauges = make(map[string]prometheus.Gauge)

	// --- Counters
	counters[METRIC_ERROR_COUNT] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "haven",
		Subsystem: "ledger",
		Name:      METRIC_ERROR_COUNT,
		Help:      "Counts the number of failed ledger operations",
	}, []string{"operation", "code"})
	counters[METRIC_OPERATION_COUNT] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "haven",
		Subsystem: "ledger",
		Name:      METRIC_OPERATION_COUNT,
		Help:      "Counts the number of committed ledger operations",
	}, []string{"operation"})

	// --- Gauges
	for name, help := range map[string]string{
		METRIC_TOTAL_ASSETS:    "Total assets held by the vault, in micro units",
		METRIC_TOTAL_SHARES:    "Total vault shares outstanding",
		METRIC_SHARE_PRICE:     "Vault share price scaled by 1e6",
		METRIC_ACCUMULATED_FEE: "Performance fee accumulated by the harvester and not yet claimed",
	} {
		gauges[name] = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "haven",
			Subsystem: "vault",
			Name:      name,
			Help:      help,
		})
		registry.MustRegister(gauges[name])
	}
	strategies = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "haven",
		Subsystem: "strategy",
		Name:      METRIC_STRATEGY_TVL,
		Help:      "Value locked in each strategy, in micro units",
	}, []string{"strategy"})

	registry.MustRegister(counters[METRIC_ERROR_COUNT], counters[METRIC_OPERATION_COUNT], strategies)
	return registry
}

func GetCounter(name string, labels ...string) prometheus.Counter {
	mu.RLock()
	defer mu.RUnlock()
	vec, ok := counters[name]
	if !ok {
		return nil
	}
	return vec.WithLabelValues(labels...)
}

func IncErrorCount(operation string, code int) {
	if c := GetCounter(METRIC_ERROR_COUNT, operation, codeLabel(code)); c != nil {
		c.Inc()
	}
}

func IncOperationCount(operation string) {
	if c := GetCounter(METRIC_OPERATION_COUNT, operation); c != nil {
		c.Inc()
	}
}

// VaultState is the set of values published as gauges.
type VaultState struct {
	TotalAssets    uint64
	TotalShares    uint64
	SharePrice     uint64
	AccumulatedFee uint64
	StrategyTVL    map[string]uint64
}

func SetVaultState(state VaultState) {
	mu.RLock()
	defer mu.RUnlock()
	if gauges == nil {
		return
	}
	gauges[METRIC_TOTAL_ASSETS].Set(float64(state.TotalAssets))
	gauges[METRIC_TOTAL_SHARES].Set(float64(state.TotalShares))
	gauges[METRIC_SHARE_PRICE].Set(float64(state.SharePrice))
	gauges[METRIC_ACCUMULATED_FEE].Set(float64(state.AccumulatedFee))
	for id, tvl := range state.StrategyTVL {
		strategies.WithLabelValues(id).Set(float64(tvl))
	}
}

func codeLabel(code int) string {
	if code == 0 {
		return "internal"
	}
	return strconv.Itoa(code)
}
