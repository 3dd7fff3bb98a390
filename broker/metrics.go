package broker

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the broker's exported counters. A fresh Broker gets its own
// Metrics with its own prometheus.Registry, so multiple brokers in one
// process (as in tests) never collide on metric registration.
type Metrics struct {
	Registry *prometheus.Registry

	ConnectionsOpened prometheus.Counter
	ConnectionsClosed prometheus.Counter
	ObjectsCreated    prometheus.Counter
	ServicesCreated   prometheus.Counter
	FunctionCalls     prometheus.Counter
	EventsEmitted     prometheus.Counter
	ChannelItemsSent  prometheus.Counter
	CreditExhausted   prometheus.Counter
}

// NewMetrics builds and registers a fresh metric set.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		ConnectionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bus_broker_connections_opened_total",
			Help: "Connections accepted by the broker.",
		}),
		ConnectionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bus_broker_connections_closed_total",
			Help: "Connections removed from the broker, by any cause.",
		}),
		ObjectsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bus_broker_objects_created_total",
			Help: "Objects successfully created.",
		}),
		ServicesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bus_broker_services_created_total",
			Help: "Services successfully created.",
		}),
		FunctionCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bus_broker_function_calls_total",
			Help: "Function calls forwarded to a callee.",
		}),
		EventsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bus_broker_events_emitted_total",
			Help: "Events forwarded to at least one subscriber.",
		}),
		ChannelItemsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bus_broker_channel_items_total",
			Help: "Channel items forwarded sender to receiver.",
		}),
		CreditExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bus_broker_credit_exhausted_total",
			Help: "SendItem rejections due to zero remaining credit.",
		}),
	}

	reg.MustRegister(
		m.ConnectionsOpened, m.ConnectionsClosed, m.ObjectsCreated, m.ServicesCreated,
		m.FunctionCalls, m.EventsEmitted, m.ChannelItemsSent, m.CreditExhausted,
	)
	return m
}
