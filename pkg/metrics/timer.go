package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Timer measures the duration of an operation
type Timer struct {
	start time.Time
	now   func() time.Time
}

// NewTimer starts a timer on the wall clock
func NewTimer() *Timer {
	return &Timer{start: time.Now(), now: time.Now}
}

// Duration returns the time elapsed since the timer started
func (t *Timer) Duration() time.Duration {
	return t.now().Sub(t.start)
}

// ObserveDuration records the elapsed time in seconds
func (t *Timer) ObserveDuration(o prometheus.Observer) {
	o.Observe(t.Duration().Seconds())
}
