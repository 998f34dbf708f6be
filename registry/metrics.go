package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all the Prometheus metrics for the MarketRegistry.
// Encapsulating them in a struct keeps the registry struct itself clean.
type Metrics struct {
	MarketsInRegistry *prometheus.GaugeVec
	AddPoolDuration   *prometheus.HistogramVec
	AddPoolTotal      *prometheus.CounterVec
	FeeRatioUpdates   *prometheus.CounterVec
	EventsDropped     *prometheus.CounterVec
}

// NewMetrics creates and registers all the registry metrics. It takes a
// prometheus.Registerer to allow flexible registration (default vs. custom).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		MarketsInRegistry: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Subsystem: "market_registry",
			Name:      "markets_total",
			Help:      "The number of markets currently registered.",
		}, []string{}),

		AddPoolDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: "market_registry",
			Name:      "add_pool_duration_seconds",
			Help:      "A histogram of the time a full AddPool precondition chain takes, including collaborator calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{}),

		AddPoolTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Subsystem: "market_registry",
			Name:      "add_pool_total",
			Help:      "Total AddPool calls, labeled by result.",
		}, []string{"result"}),

		FeeRatioUpdates: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Subsystem: "market_registry",
			Name:      "fee_ratio_updates_total",
			Help:      "Total SetFeeRatio calls, labeled by result.",
		}, []string{"result"}),

		EventsDropped: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Subsystem: "market_registry",
			Name:      "events_dropped_total",
			Help:      "PoolAdded notifications dropped because a subscriber's buffer was full.",
		}, []string{}),
	}
}
