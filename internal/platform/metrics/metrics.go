package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the raffle service.
type Metrics struct {
	Registrations prometheus.Counter
	Draws         prometheus.Counter
	Resets        prometheus.Counter
	Rejections    *prometheus.CounterVec
}

// New creates and registers all metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "raffle_registrations_total",
			Help: "Total number of successful participant registrations.",
		}),
		Draws: factory.NewCounter(prometheus.CounterOpts{
			Name: "raffle_draws_total",
			Help: "Total number of winners drawn.",
		}),
		Resets: factory.NewCounter(prometheus.CounterOpts{
			Name: "raffle_resets_total",
			Help: "Total number of pool resets.",
		}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "raffle_rejections_total",
			Help: "Total number of rejected operations by reason.",
		}, []string{"reason"}),
	}
}
