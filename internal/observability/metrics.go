package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bot"

// Metrics holds the bot's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	commands       *prometheus.CounterVec
	ticketsCreated *prometheus.CounterVec
	ticketsClaimed prometheus.Counter
	ticketsClosed  prometheus.Counter
	deleteFailures prometheus.Counter
	sessionPhases  *prometheus.CounterVec
	vehicleActions *prometheus.CounterVec
	pendingCloses  prometheus.Gauge
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Interactions handled, labeled by command and outcome code",
		}, []string{"command", "outcome"}),
		ticketsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_created_total",
			Help:      "Ticket channels created, labeled by ticket type",
		}, []string{"type"}),
		ticketsClaimed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_claimed_total",
			Help:      "Ticket claims applied",
		}),
		ticketsClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_closed_total",
			Help:      "Ticket closes executed after the close delay",
		}),
		deleteFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_delete_failures_total",
			Help:      "Ticket channels that could not be deleted on close",
		}),
		sessionPhases: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Session lifecycle phases announced, labeled by phase",
		}, []string{"phase"}),
		vehicleActions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vehicle_actions_total",
			Help:      "Vehicle registry mutations, labeled by action",
		}, []string{"action"}),
		pendingCloses: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ticket_pending_closes",
			Help:      "Ticket closes waiting for their delay to elapse",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Ops HTTP requests, labeled by route, method and status",
		}, []string{"path", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Ops HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
	}
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordCommand counts a handled interaction.
func (m *Metrics) RecordCommand(command, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

func (m *Metrics) RecordTicketCreated(ticketType string) {
	if m == nil {
		return
	}
	m.ticketsCreated.WithLabelValues(ticketType).Inc()
}

func (m *Metrics) RecordTicketClaimed() {
	if m == nil {
		return
	}
	m.ticketsClaimed.Inc()
}

func (m *Metrics) RecordTicketClosed() {
	if m == nil {
		return
	}
	m.ticketsClosed.Inc()
}

func (m *Metrics) RecordDeleteFailure() {
	if m == nil {
		return
	}
	m.deleteFailures.Inc()
}

func (m *Metrics) RecordSessionPhase(phase string) {
	if m == nil {
		return
	}
	m.sessionPhases.WithLabelValues(phase).Inc()
}

func (m *Metrics) RecordVehicleAction(action string) {
	if m == nil {
		return
	}
	m.vehicleActions.WithLabelValues(action).Inc()
}

// PendingCloses tracks scheduled closes; delta is +1 or -1.
func (m *Metrics) PendingCloses(delta float64) {
	if m == nil {
		return
	}
	m.pendingCloses.Add(delta)
}

// RecordRequest counts an ops HTTP request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}
