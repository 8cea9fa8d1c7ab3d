// Package metrics defines the broker's Prometheus collectors, grounded in
// the GaugeVec/CounterVec pattern from
// streamspace-dev-streamspace/controller/pkg/metrics. That package
// registers into controller-runtime's global registry (out of scope here
// per this repository's non-goals around clustering); this package uses
// a plain prometheus.Registry instead, exposed by internal/httpapi.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ClientsConnected tracks the number of currently connected clients.
	ClientsConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "broker_clients_connected",
		Help: "Number of currently connected clients.",
	})

	// ServicesRegistered tracks the number of currently registered
	// services by kind ("request" or "broadcast").
	ServicesRegistered = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "broker_services_registered",
		Help: "Number of currently registered services by kind.",
	}, []string{"kind"})

	// RequestsRouted counts client requests successfully forwarded to a
	// service.
	RequestsRouted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "broker_requests_routed_total",
		Help: "Total number of client requests forwarded to a service.",
	})

	// RepliesDropped counts service replies that could not be delivered
	// because the addressed client had already disconnected.
	RepliesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "broker_replies_dropped_total",
		Help: "Total number of service replies dropped because the client had disconnected.",
	})

	// BroadcastsPublished counts broadcast publications fanned out to
	// subscribed clients.
	BroadcastsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "broker_broadcasts_published_total",
		Help: "Total number of broadcast messages published by services.",
	})

	// DiagnosticsSent counts wire diagnostic frames ("!..." messages and
	// the unprefixed service-hello rejections) sent to clients or
	// services, labeled by the diagnostic text.
	DiagnosticsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "broker_diagnostics_sent_total",
		Help: "Total number of wire diagnostic frames sent, by diagnostic.",
	}, []string{"diagnostic"})
)

// Registry builds a fresh prometheus.Registry with all of this package's
// collectors registered, for internal/httpapi to expose over HTTP.
func Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		ClientsConnected,
		ServicesRegistered,
		RequestsRouted,
		RepliesDropped,
		BroadcastsPublished,
		DiagnosticsSent,
	)
	return reg
}
