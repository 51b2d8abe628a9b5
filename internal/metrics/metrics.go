package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline counters. Label cardinality is fixed and small: query kind is
// specific|fallback, reject reason is one of the filter rule names.
var (
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanner_cycles_total",
		Help: "Completed scan cycles by outcome.",
	}, []string{"status"}) // ok|failed

	TicksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanner_ticks_skipped_total",
		Help: "Timer ticks dropped because a cycle was still running.",
	})

	ListingsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanner_listings_fetched_total",
		Help: "Raw listings fetched from the provider by query kind.",
	}, []string{"kind"}) // specific|fallback

	ListingsMalformed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanner_listings_malformed_total",
		Help: "Provider records dropped for a missing token address.",
	})

	ListingsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanner_listings_rejected_total",
		Help: "Listings rejected by the filter chain, by rule.",
	}, []string{"rule"})

	RiskBlocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanner_risk_blocked_total",
		Help: "Candidates dropped on an explicit negative oracle verdict.",
	})

	RiskFailOpen = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanner_risk_fail_open_total",
		Help: "Oracle calls that failed and passed the candidate through.",
	})

	CandidatesEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanner_candidates_emitted_total",
		Help: "Candidates delivered to the sink.",
	})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scanner_cycle_duration_seconds",
		Help:    "Wall time of one full scan cycle.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
