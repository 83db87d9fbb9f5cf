// Package observe exports the daemon's Prometheus metrics.
package observe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MonitorTicks counts completed monitor loop iterations.
	MonitorTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eassist_monitor_ticks_total",
			Help: "Total number of monitor ticks executed",
		},
	)

	// CollectionFailures counts metric snapshots that failed or timed out.
	CollectionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eassist_collection_failures_total",
			Help: "Total number of failed metrics collections",
		},
	)

	// AlertsFired counts threshold alerts by metric kind.
	AlertsFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eassist_alerts_fired_total",
			Help: "Total number of alerts fired",
		},
		[]string{"kind"},
	)

	// Broadcasts counts events pushed to subscribers by channel.
	Broadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eassist_broadcasts_total",
			Help: "Total number of events broadcast",
		},
		[]string{"channel"},
	)

	// DroppedClients counts connections torn down because their send queue
	// overflowed or a write failed.
	DroppedClients = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eassist_dropped_clients_total",
			Help: "Total number of websocket clients dropped on delivery failure",
		},
	)

	// ConnectedClients tracks currently connected websocket clients.
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eassist_ws_clients",
			Help: "Number of connected websocket clients",
		},
	)

	// ActiveSessions tracks live authenticated sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eassist_active_sessions",
			Help: "Number of active sessions",
		},
	)

	// RequestsTotal counts HTTP requests by method, path and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eassist_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)
)
