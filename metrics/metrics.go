// Package metrics wraps the small set of Prometheus collectors a session
// exposes. It never starts an HTTP server itself — callers register the
// returned Registry's collectors against whatever exporter they run.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry holds the collectors for one session, each labeled with the
// session's sender_comp_id. A restart successor shares its owner's
// Registry. Two Registries with the same sender_comp_id cannot both be
// registered against one prometheus.Registry: New panics on the second.
type Registry struct {
	QueueDepth      prometheus.Gauge
	MessagesSent    prometheus.Counter
	MessagesRecv    prometheus.Counter
	RestartsArmed   prometheus.Counter
	RestartsApplied prometheus.Counter
}

// New builds a Registry labeled with the owning session's sender_comp_id
// and registers its collectors against reg. reg may be nil, in which case
// the collectors are created but left unregistered — useful for tests and
// for callers who opt out via config.MetricsConfig.Enabled.
func New(reg *prometheus.Registry, senderCompID string) *Registry {
	constLabels := prometheus.Labels{"sender_comp_id": senderCompID}

	r := &Registry{
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "fixconnector",
			Name:        "inbound_queue_depth",
			Help:        "Number of messages currently buffered in the inbound queue.",
			ConstLabels: constLabels,
		}),
		MessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "fixconnector",
			Name:        "messages_sent_total",
			Help:        "Total FIX messages sent by this session.",
			ConstLabels: constLabels,
		}),
		MessagesRecv: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "fixconnector",
			Name:        "messages_received_total",
			Help:        "Total FIX messages classified from the receive loop.",
			ConstLabels: constLabels,
		}),
		RestartsArmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "fixconnector",
			Name:        "restarts_armed_total",
			Help:        "Total times a News message armed the restart scheduler.",
			ConstLabels: constLabels,
		}),
		RestartsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "fixconnector",
			Name:        "restarts_applied_total",
			Help:        "Total times a scheduled restart completed cutover.",
			ConstLabels: constLabels,
		}),
	}

	if reg != nil {
		reg.MustRegister(r.QueueDepth, r.MessagesSent, r.MessagesRecv, r.RestartsArmed, r.RestartsApplied)
	}

	return r
}
