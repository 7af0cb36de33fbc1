package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the app.
type Metrics struct {
	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter
	Actions        *prometheus.CounterVec
	Shares         *prometheus.CounterVec
	Popups         *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ayudame_sessions_active",
			Help: "Page sessions currently mounted",
		}),
		SessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "ayudame_sessions_total",
			Help: "Page sessions started",
		}),
		Actions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ayudame_actions_total",
			Help: "Contact actions dispatched, by action",
		}, []string{"action"}),
		Shares: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ayudame_shares_total",
			Help: "App shares, by mode",
		}, []string{"mode"}),
		Popups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ayudame_popups_total",
			Help: "Popup transitions requested by users",
		}, []string{"popup", "event"}),
	}
}

// The recording methods below are no-ops on a nil *Metrics.

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.SessionsTotal.Inc()
	m.SessionsActive.Inc()
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}

func (m *Metrics) ActionDispatched(action string) {
	if m == nil {
		return
	}
	m.Actions.WithLabelValues(action).Inc()
}

func (m *Metrics) Shared(mode string) {
	if m == nil {
		return
	}
	m.Shares.WithLabelValues(mode).Inc()
}

func (m *Metrics) Popup(popup, event string) {
	if m == nil {
		return
	}
	m.Popups.WithLabelValues(popup, event).Inc()
}
