package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the auth core. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	AccessResolutions *prometheus.CounterVec
	AccessDecisions   *prometheus.CounterVec
	SessionEvents     *prometheus.CounterVec
	TokenEvents       *prometheus.CounterVec
	PipelineOutcomes  *prometheus.CounterVec
	SweepRuns         *prometheus.CounterVec
	SweepDeleted      *prometheus.CounterVec
}

// New creates the collectors and registers them with registerer.
func New(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		AccessResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transit_auth_access_resolutions_total",
				Help: "Authorization header resolutions by outcome",
			},
			[]string{"outcome"},
		),
		AccessDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transit_auth_access_decisions_total",
				Help: "Scope checks by required scope and outcome",
			},
			[]string{"scope", "outcome"},
		),
		SessionEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transit_auth_session_events_total",
				Help: "Session lifecycle events",
			},
			[]string{"event"},
		),
		TokenEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transit_auth_token_events_total",
				Help: "Token lifecycle events by token type",
			},
			[]string{"type", "event"},
		),
		PipelineOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transit_auth_pipeline_outcomes_total",
				Help: "Authentication pipeline terminal states",
			},
			[]string{"state", "reason"},
		),
		SweepRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transit_auth_sweep_runs_total",
				Help: "Background sweep runs by status",
			},
			[]string{"status"},
		),
		SweepDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transit_auth_sweep_deleted_total",
				Help: "Rows removed by background sweeps",
			},
			[]string{"kind"},
		),
	}

	registerer.MustRegister(
		m.AccessResolutions,
		m.AccessDecisions,
		m.SessionEvents,
		m.TokenEvents,
		m.PipelineOutcomes,
		m.SweepRuns,
		m.SweepDeleted,
	)
	return m
}

func (m *Metrics) AccessResolved(outcome string) {
	if m == nil {
		return
	}
	m.AccessResolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AccessDecided(scope string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.AccessDecisions.WithLabelValues(scope, outcome).Inc()
}

func (m *Metrics) SessionEvent(event string) {
	if m == nil {
		return
	}
	m.SessionEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) TokenEvent(tokenType, event string) {
	if m == nil {
		return
	}
	m.TokenEvents.WithLabelValues(tokenType, event).Inc()
}

func (m *Metrics) PipelineOutcome(state, reason string) {
	if m == nil {
		return
	}
	m.PipelineOutcomes.WithLabelValues(state, reason).Inc()
}

func (m *Metrics) SweepRun(status string) {
	if m == nil {
		return
	}
	m.SweepRuns.WithLabelValues(status).Inc()
}

func (m *Metrics) SweepRemoved(kind string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.SweepDeleted.WithLabelValues(kind).Add(float64(n))
}
