package readiness

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuemby/nodemend/pkg/log"
	"github.com/cuemby/nodemend/pkg/metrics"
	"github.com/cuemby/nodemend/pkg/retry"
	"github.com/cuemby/nodemend/pkg/runtime"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedInspector answers each component's polls from a script; the last
// entry repeats once the script runs out
type scriptedInspector struct {
	script map[string][]bool
	errs   map[string]error
	polls  map[string]int
	order  []string
}

func newScriptedInspector() *scriptedInspector {
	return &scriptedInspector{
		script: map[string][]bool{},
		errs:   map[string]error{},
		polls:  map[string]int{},
	}
}

func (s *scriptedInspector) Inspect(ctx context.Context, id string) (runtime.State, error) {
	s.order = append(s.order, id)
	n := s.polls[id]
	s.polls[id]++

	if err := s.errs[id]; err != nil {
		return runtime.State{}, err
	}
	steps := s.script[id]
	if len(steps) == 0 {
		return runtime.State{Exists: false}, nil
	}
	if n >= len(steps) {
		n = len(steps) - 1
	}
	return runtime.State{Exists: true, Running: steps[n]}, nil
}

func newGate(inspector runtime.Inspector, clock retry.Clock, m *metrics.Metrics) (*Gate, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: log.DebugLevel, JSONOutput: true, Output: &buf})
	return NewGate(inspector, DefaultConfig(), clock, logger, m), &buf
}

func TestAwaitReady_Immediate(t *testing.T) {
	inspector := newScriptedInspector()
	inspector.script["weave"] = []bool{true}
	clock := &retry.FakeClock{}
	gate, _ := newGate(inspector, clock, nil)

	assert.True(t, gate.AwaitReady(context.Background(), "weave"))
	assert.Equal(t, 1, inspector.polls["weave"])
	assert.Empty(t, clock.Sleeps(), "no delay after the first successful poll")
}

func TestAwaitReady_EventuallyReady(t *testing.T) {
	inspector := newScriptedInspector()
	inspector.script["weaveproxy"] = []bool{false, false, true}
	clock := &retry.FakeClock{}
	gate, buf := newGate(inspector, clock, nil)

	assert.True(t, gate.AwaitReady(context.Background(), "weaveproxy"))
	assert.Equal(t, 3, inspector.polls["weaveproxy"])
	assert.Equal(t, []time.Duration{10 * time.Second, 10 * time.Second}, clock.Sleeps())
	assert.Contains(t, buf.String(), "weaveproxy is not ready; retrying ...")
}

func TestAwaitReady_Exhausted(t *testing.T) {
	inspector := newScriptedInspector()
	inspector.script["weave"] = []bool{false}
	clock := &retry.FakeClock{}
	m := metrics.New()
	gate, _ := newGate(inspector, clock, m)

	assert.False(t, gate.AwaitReady(context.Background(), "weave"))
	assert.Equal(t, 6, inspector.polls["weave"])
	require.Len(t, clock.Sleeps(), 6)
	for _, d := range clock.Sleeps() {
		assert.Equal(t, 10*time.Second, d)
	}
	assert.Equal(t, 6.0, testutil.ToFloat64(m.ReadinessAttempts.WithLabelValues("weave")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ComponentReady.WithLabelValues("weave")))
}

func TestAwaitReady_InspectErrorCountsAsNotRunning(t *testing.T) {
	inspector := newScriptedInspector()
	inspector.errs["weave"] = errors.New("daemon unreachable")
	gate, _ := newGate(inspector, &retry.FakeClock{}, nil)

	assert.False(t, gate.AwaitReady(context.Background(), "weave"))
	assert.Equal(t, 6, inspector.polls["weave"])
}

func TestAwaitReady_MissingComponent(t *testing.T) {
	gate, _ := newGate(newScriptedInspector(), &retry.FakeClock{}, nil)
	assert.False(t, gate.AwaitReady(context.Background(), "weaveplugin"))
}

func TestAwaitAll_Sequential(t *testing.T) {
	inspector := newScriptedInspector()
	inspector.script["weave"] = []bool{false, true}
	inspector.script["weaveproxy"] = []bool{true}
	inspector.script["weaveplugin"] = []bool{false, false, true}
	clock := &retry.FakeClock{}
	m := metrics.New()
	gate, _ := newGate(inspector, clock, m)

	err := gate.AwaitAll(context.Background(), "weave", "weaveproxy", "weaveplugin")

	require.NoError(t, err)
	assert.Equal(t, []string{"weave", "weave", "weaveproxy", "weaveplugin", "weaveplugin", "weaveplugin"}, inspector.order)
	assert.Len(t, clock.Sleeps(), 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ComponentReady.WithLabelValues("weaveplugin")))
}

func TestAwaitAll_IndependentBudgets(t *testing.T) {
	inspector := newScriptedInspector()
	inspector.script["weave"] = []bool{false, false, false, false, false, true}
	inspector.script["weaveproxy"] = []bool{false, false, false, false, false, true}
	gate, _ := newGate(inspector, &retry.FakeClock{}, nil)

	require.NoError(t, gate.AwaitAll(context.Background(), "weave", "weaveproxy"))
	assert.Equal(t, 6, inspector.polls["weave"])
	assert.Equal(t, 6, inspector.polls["weaveproxy"])
}

func TestAwaitAll_StopsAtFirstFailure(t *testing.T) {
	inspector := newScriptedInspector()
	inspector.script["weave"] = []bool{true}
	inspector.script["weaveproxy"] = []bool{false}
	inspector.script["weaveplugin"] = []bool{true}
	gate, _ := newGate(inspector, &retry.FakeClock{}, nil)

	err := gate.AwaitAll(context.Background(), "weave", "weaveproxy", "weaveplugin")

	var notReady *NotReadyError
	require.True(t, errors.As(err, &notReady))
	assert.Equal(t, "weaveproxy", notReady.Component)
	assert.Equal(t, 6, notReady.Attempts)
	assert.Equal(t, "weaveproxy not ready after 6 attempts", err.Error())
	assert.Zero(t, inspector.polls["weaveplugin"])
}

func TestAwaitAll_Cancelled(t *testing.T) {
	inspector := newScriptedInspector()
	inspector.script["weave"] = []bool{true}
	gate, _ := newGate(inspector, &retry.FakeClock{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := gate.AwaitAll(ctx, "weave")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, inspector.polls["weave"])
}

func TestSettle(t *testing.T) {
	clock := &retry.FakeClock{}
	gate, _ := newGate(newScriptedInspector(), clock, nil)

	require.NoError(t, gate.Settle(context.Background()))
	assert.Equal(t, []time.Duration{10 * time.Second}, clock.Sleeps())

	noSettle := NewGate(newScriptedInspector(), Config{Policy: retry.DefaultPolicy()}, clock, log.Nop(), nil)
	require.NoError(t, noSettle.Settle(context.Background()))
	assert.Len(t, clock.Sleeps(), 1)
}
