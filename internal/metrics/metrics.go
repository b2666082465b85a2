package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Evaluations counts coordinator evaluations by result: ok, error, or
// skipped (timer tick with auto-refresh disabled).
var Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tradescape_evaluations_total",
	Help: "Coordinator evaluations by result.",
}, []string{"result"})

// FetchDuration observes provider fetch latency per provider.
var FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "tradescape_fetch_duration_seconds",
	Help:    "Market data fetch latency.",
	Buckets: prometheus.DefBuckets,
}, []string{"provider"})

// ShapeActions counts shape-store mutations by action kind.
var ShapeActions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tradescape_shape_actions_total",
	Help: "Workspace shape mutations by action.",
}, []string{"action"})
