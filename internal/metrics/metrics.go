package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "countries_explorer_requests_total",
			Help: "Total API requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	UpstreamCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "countries_explorer_upstream_requests_total",
			Help: "Calls to the countries and weather services by outcome.",
		},
		[]string{"client", "outcome"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "countries_explorer_active_sessions",
			Help: "Sessions currently held in memory.",
		},
	)
)

func init() {
	prometheus.MustRegister(RequestCounter, UpstreamCounter, ActiveSessions)
}

// ObserveUpstream matches client.ClientConfig.Observe.
func ObserveUpstream(client string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	UpstreamCounter.WithLabelValues(client, outcome).Inc()
}

func SetActiveSessions(n int) {
	ActiveSessions.Set(float64(n))
}
