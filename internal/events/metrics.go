package events

import "github.com/prometheus/client_golang/prometheus"

var lifecycleEventsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "keyboardai",
		Subsystem: "lifecycle",
		Name:      "events_total",
		Help:      "Locator and engine lifecycle events by name",
	},
	[]string{"name"},
)

func init() {
	prometheus.MustRegister(lifecycleEventsTotal)
}

// Metrics counts every event it receives by name.
type Metrics struct{}

func (Metrics) Publish(e Event) { lifecycleEventsTotal.WithLabelValues(e.Name).Inc() }

// Multi fans an event out to several publishers in order.
type Multi []Publisher

func (m Multi) Publish(e Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(e)
		}
	}
}
