package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Relay groups the collectors the relay exposes on /metrics.
type Relay struct {
	EventsTotal       *prometheus.CounterVec
	ErrorsTotal       *prometheus.CounterVec
	BroadcastsTotal   prometheus.Counter
	DroppedMessages   prometheus.Counter
	RoomsActive       prometheus.Gauge
	ConnectionsActive prometheus.Gauge
}

func New(reg prometheus.Registerer) *Relay {
	factory := promauto.With(reg)

	return &Relay{
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "huddle",
			Name:      "events_total",
			Help:      "Inbound events processed by the relay, by event type.",
		}, []string{"event"}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "huddle",
			Name:      "relay_errors_total",
			Help:      "Sender-only error signals emitted, by error code.",
		}, []string{"code"}),
		BroadcastsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "huddle",
			Name:      "broadcasts_total",
			Help:      "Outbound fan-out deliveries enqueued to clients.",
		}),
		DroppedMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "huddle",
			Name:      "dropped_messages_total",
			Help:      "Messages dropped because a client send buffer was full.",
		}),
		RoomsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "huddle",
			Name:      "rooms_active",
			Help:      "Rooms currently held in the registry.",
		}),
		ConnectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "huddle",
			Name:      "connections_active",
			Help:      "Live websocket connections bound to a room.",
		}),
	}
}

// NewDefault registers against the global prometheus registry.
func NewDefault() *Relay {
	return New(prometheus.DefaultRegisterer)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
