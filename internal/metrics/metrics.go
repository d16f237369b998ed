package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tourneybot"

// Metrics holds all Prometheus metrics for the bot
type Metrics struct {
	registry *prometheus.Registry

	EventsHandled          *prometheus.CounterVec
	RegistrationsCompleted prometheus.Counter
	RegistrationsPersisted prometheus.Counter
	PersistFailures        prometheus.Counter
	Snapshots              *prometheus.CounterVec
	HTTPRequests           *prometheus.CounterVec
}

// New creates all metrics on a private registry so that several
// instances can coexist in one process
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		EventsHandled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_handled_total",
			Help:      "Conversation events handled, by event kind and outcome",
		}, []string{"kind", "outcome"}),
		RegistrationsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_completed_total",
			Help:      "Users who agreed to the rules and received an invite link",
		}),
		RegistrationsPersisted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_persisted_total",
			Help:      "Registration records appended to the stores",
		}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Registration appends that failed",
		}),
		Snapshots: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Store snapshots attempted, by result",
		}, []string{"result"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Admin API requests, by method and status code",
		}, []string{"method", "code"}),
	}
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// EventHandled counts one conversation event
func (m *Metrics) EventHandled(kind string, ignored bool) {
	outcome := "replied"
	if ignored {
		outcome = "ignored"
	}
	m.EventsHandled.WithLabelValues(kind, outcome).Inc()
}

// RegistrationPersisted counts one appended record
func (m *Metrics) RegistrationPersisted() {
	m.RegistrationsPersisted.Inc()
}

// PersistFailed counts one failed append
func (m *Metrics) PersistFailed() {
	m.PersistFailures.Inc()
}

// RegistrationCompleted counts one finished dialogue
func (m *Metrics) RegistrationCompleted() {
	m.RegistrationsCompleted.Inc()
}

// SnapshotTaken counts one snapshot attempt
func (m *Metrics) SnapshotTaken(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Snapshots.WithLabelValues(result).Inc()
}

// RequestServed counts one HTTP request
func (m *Metrics) RequestServed(method string, status int) {
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
