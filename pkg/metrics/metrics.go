package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for one recovery run. Each instance owns a
// private registry so runs and tests never share state.
type Metrics struct {
	registry *prometheus.Registry

	ContainersTotal *prometheus.CounterVec
	CommandsTotal   *prometheus.CounterVec

	ReadinessAttempts *prometheus.CounterVec
	ComponentReady    *prometheus.GaugeVec

	LastRunSuccess   prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
	RunDuration      prometheus.Histogram
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ContainersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodemend_containers_total",
				Help: "Containers processed by outcome",
			},
			[]string{"outcome"},
		),

		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodemend_commands_total",
				Help: "Runtime and overlay commands issued by operation and result",
			},
			[]string{"operation", "result"},
		),

		ReadinessAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nodemend_readiness_attempts_total",
				Help: "Readiness polls per overlay component",
			},
			[]string{"component"},
		),

		ComponentReady: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "nodemend_component_ready",
				Help: "Whether an overlay component passed its readiness gate (1 = ready)",
			},
			[]string{"component"},
		),

		LastRunSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "nodemend_last_run_success",
				Help: "Whether the last recovery run completed (1) or stopped on a precondition (0)",
			},
		),

		LastRunTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "nodemend_last_run_timestamp_seconds",
				Help: "Unix time the last recovery run finished",
			},
		),

		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nodemend_run_duration_seconds",
				Help:    "Recovery run duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
	}

	m.registry.MustRegister(
		m.ContainersTotal,
		m.CommandsTotal,
		m.ReadinessAttempts,
		m.ComponentReady,
		m.LastRunSuccess,
		m.LastRunTimestamp,
		m.RunDuration,
	)

	return m
}

// Registry returns the registry the collectors are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// The helpers below accept a nil receiver so components can run without
// metrics.

// ContainerOutcome counts one processed container
func (m *Metrics) ContainerOutcome(outcome string) {
	if m == nil {
		return
	}
	m.ContainersTotal.WithLabelValues(outcome).Inc()
}

// Command counts one external command
func (m *Metrics) Command(operation string, ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.CommandsTotal.WithLabelValues(operation, result).Inc()
}

// ReadinessAttempt counts one readiness poll
func (m *Metrics) ReadinessAttempt(component string) {
	if m == nil {
		return
	}
	m.ReadinessAttempts.WithLabelValues(component).Inc()
}

// SetComponentReady records a gate outcome
func (m *Metrics) SetComponentReady(component string, ready bool) {
	if m == nil {
		return
	}
	v := 0.0
	if ready {
		v = 1
	}
	m.ComponentReady.WithLabelValues(component).Set(v)
}

// RunFinished records the end of a run timed by timer
func (m *Metrics) RunFinished(success bool, timer *Timer, now time.Time) {
	if m == nil {
		return
	}
	if success {
		m.LastRunSuccess.Set(1)
	} else {
		m.LastRunSuccess.Set(0)
	}
	m.LastRunTimestamp.Set(float64(now.Unix()))
	timer.ObserveDuration(m.RunDuration)
}

// WriteTextfile writes every collected metric to path in the text
// exposition format, for node_exporter's textfile collector. The file is
// replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
