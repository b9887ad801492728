package router

import "github.com/prometheus/client_golang/prometheus"

var (
	transformsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "keyboardai",
			Subsystem: "router",
			Name:      "transforms_total",
			Help:      "Transform requests by path taken and outcome",
		},
		[]string{"path", "outcome"},
	)

	transformDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "keyboardai",
			Subsystem: "router",
			Name:      "transform_duration_seconds",
			Help:      "Duration of transform requests in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(transformsTotal, transformDuration)
}

// Path labels.
const (
	pathLocal    = "local"
	pathRemote   = "remote"
	pathFallback = "fallback"
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
