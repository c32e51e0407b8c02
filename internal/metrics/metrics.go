// Package metrics holds the Prometheus collectors of the signaling server.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "jump"

const (
	CloseLeave = "leave"
	CloseIdle  = "idle"
)

type Metrics struct {
	Connections  prometheus.Gauge
	Identities   prometheus.Gauge
	Rooms        prometheus.Gauge
	RoomsCreated prometheus.Counter
	RoomsClosed  *prometheus.CounterVec
	Relayed      *prometheus.CounterVec
	SendDropped  prometheus.Counter
	Errors       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Currently bound signaling connections.",
		}),
		Identities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "identities",
			Help:      "Currently issued ephemeral identities.",
		}),
		Rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Currently open rooms.",
		}),
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Rooms created.",
		}),
		RoomsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_closed_total",
			Help:      "Rooms closed, by reason.",
		}, []string{"reason"}),
		Relayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relayed_messages_total",
			Help:      "Messages forwarded to room members, by event.",
		}, []string{"event"}),
		SendDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_dropped_total",
			Help:      "Outbound messages dropped on a full or closed connection.",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "request_errors_total",
			Help:      "Requests answered with an ERROR event, by code.",
		}, []string{"code"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.Connections, m.Identities, m.Rooms, m.RoomsCreated,
			m.RoomsClosed, m.Relayed, m.SendDropped, m.Errors,
		)
	}
	return m
}

func (m *Metrics) SetConnections(n int) {
	if m != nil {
		m.Connections.Set(float64(n))
	}
}

func (m *Metrics) SetIdentities(n int) {
	if m != nil {
		m.Identities.Set(float64(n))
	}
}

func (m *Metrics) RoomOpened() {
	if m != nil {
		m.RoomsCreated.Inc()
		m.Rooms.Inc()
	}
}

func (m *Metrics) RoomClosed(reason string) {
	if m != nil {
		m.RoomsClosed.WithLabelValues(reason).Inc()
		m.Rooms.Dec()
	}
}

func (m *Metrics) Relay(event string, n int) {
	if m != nil && n > 0 {
		m.Relayed.WithLabelValues(event).Add(float64(n))
	}
}

func (m *Metrics) Dropped() {
	if m != nil {
		m.SendDropped.Inc()
	}
}

func (m *Metrics) Error(code string) {
	if m != nil {
		m.Errors.WithLabelValues(code).Inc()
	}
}
