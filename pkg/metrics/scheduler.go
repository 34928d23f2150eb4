package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SchedulerMetrics records the state of the deadline scheduler.
type SchedulerMetrics struct {
	armed       *prometheus.GaugeVec
	transitions *prometheus.CounterVec
}

// NewSchedulerMetrics registers the scheduler metrics on the provided registerer.
func NewSchedulerMetrics(reg prometheus.Registerer) *SchedulerMetrics {
	if reg == nil {
		return &SchedulerMetrics{}
	}
	armed := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reservation_timers_armed",
		Help: "Deadline timers currently armed, by kind.",
	}, []string{"kind"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_transitions_total",
		Help: "Deadline-driven reservation transitions, by kind and result.",
	}, []string{"kind", "result"})
	reg.MustRegister(armed, transitions)
	return &SchedulerMetrics{
		armed:       armed,
		transitions: transitions,
	}
}

// TimerArmed increments the armed gauge for the given deadline kind.
func (s *SchedulerMetrics) TimerArmed(kind string) {
	if s == nil || s.armed == nil {
		return
	}
	s.armed.WithLabelValues(normalizeLabel(kind)).Inc()
}

// TimerDisarmed decrements the armed gauge for the given deadline kind.
func (s *SchedulerMetrics) TimerDisarmed(kind string) {
	if s == nil || s.armed == nil {
		return
	}
	s.armed.WithLabelValues(normalizeLabel(kind)).Dec()
}

// TransitionApplied records a completed deadline transition.
func (s *SchedulerMetrics) TransitionApplied(kind string) {
	if s == nil || s.transitions == nil {
		return
	}
	s.transitions.WithLabelValues(normalizeLabel(kind), "applied").Inc()
}

// TransitionSkipped records a transition that no-opped on re-read.
func (s *SchedulerMetrics) TransitionSkipped(kind string) {
	if s == nil || s.transitions == nil {
		return
	}
	s.transitions.WithLabelValues(normalizeLabel(kind), "skipped").Inc()
}

// TransitionFailed records a transition abandoned on a store error.
func (s *SchedulerMetrics) TransitionFailed(kind string) {
	if s == nil || s.transitions == nil {
		return
	}
	s.transitions.WithLabelValues(normalizeLabel(kind), "failed").Inc()
}

func normalizeLabel(kind string) string {
	if kind == "" {
		return "unknown"
	}
	return kind
}
