package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors shared across the HTTP and WS
// servers.
type Metrics struct {
	roomsActive       prometheus.GaugeFunc
	ConnectionsActive prometheus.Gauge
	MessagesTotal     prometheus.Counter
	RoomsCreatedTotal prometheus.Counter
}

// New registers all collectors. roomCount is sampled on scrape so the gauge
// always reflects the live registry.
func New(reg prometheus.Registerer, roomCount func() float64) *Metrics {
	m := &Metrics{
		roomsActive: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "chatroom_rooms_active",
			Help: "Rooms currently present in the registry.",
		}, roomCount),
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chatroom_connections_active",
			Help: "WebSocket connections currently joined to a room.",
		}),
		MessagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatroom_messages_total",
			Help: "Chat messages accepted for broadcast.",
		}),
		RoomsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatroom_rooms_created_total",
			Help: "Rooms created since process start.",
		}),
	}
	reg.MustRegister(m.roomsActive, m.ConnectionsActive, m.MessagesTotal, m.RoomsCreatedTotal)
	return m
}

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
