package readiness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cuemby/nodemend/pkg/log"
	"github.com/cuemby/nodemend/pkg/metrics"
	"github.com/cuemby/nodemend/pkg/retry"
	"github.com/cuemby/nodemend/pkg/runtime"
	"github.com/rs/zerolog"
)

// DefaultSettleDelay is waited once all components are running
const DefaultSettleDelay = 10 * time.Second

// NotReadyError reports an overlay component that never came up
type NotReadyError struct {
	Component string
	Attempts  int
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s not ready after %d attempts", e.Component, e.Attempts)
}

// Config configures a Gate
type Config struct {
	Policy retry.Policy
	Settle time.Duration
}

// DefaultConfig returns 6 attempts 10s apart and a 10s settle delay
func DefaultConfig() Config {
	return Config{
		Policy: retry.DefaultPolicy(),
		Settle: DefaultSettleDelay,
	}
}

// Gate blocks recovery until overlay components report running
type Gate struct {
	inspector runtime.Inspector
	config    Config
	clock     retry.Clock
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewGate creates a readiness gate. clock may be nil for wall-clock sleeps
// and m may be nil to disable metrics.
func NewGate(inspector runtime.Inspector, config Config, clock retry.Clock, logger zerolog.Logger, m *metrics.Metrics) *Gate {
	if clock == nil {
		clock = retry.RealClock{}
	}
	return &Gate{
		inspector: inspector,
		config:    config,
		clock:     clock,
		logger:    log.WithComponent(logger, "readiness"),
		metrics:   m,
	}
}

// AwaitReady polls the component's container until it is running or the
// retry budget is spent. It returns true as soon as the component is seen
// running, with no further delay.
func (g *Gate) AwaitReady(ctx context.Context, component string) bool {
	ready, _ := g.await(ctx, component)
	return ready
}

func (g *Gate) await(ctx context.Context, component string) (bool, error) {
	err := retry.Poll(ctx, g.config.Policy, g.clock,
		func(ctx context.Context) bool {
			g.metrics.ReadinessAttempt(component)
			state, err := g.inspector.Inspect(ctx, component)
			if err != nil {
				g.logger.Debug().Err(err).Str("component_name", component).Msg("inspect failed")
				return false
			}
			return state.Running
		},
		func(attempt int) {
			g.logger.Warn().
				Str("component_name", component).
				Int("attempt", attempt).
				Int("max_attempts", g.config.Policy.MaxAttempts).
				Msgf("%s is not ready; retrying ...", component)
		},
	)

	ready := err == nil
	g.metrics.SetComponentReady(component, ready)
	if ready {
		g.logger.Info().Str("component_name", component).Msgf("%s is ready", component)
		return true, nil
	}
	if errors.Is(err, retry.ErrExhausted) {
		return false, nil
	}
	return false, err
}

// AwaitAll gates each component in turn, each with its own retry budget,
// and stops at the first one that never becomes ready
func (g *Gate) AwaitAll(ctx context.Context, components ...string) error {
	for _, component := range components {
		ready, err := g.await(ctx, component)
		if err != nil {
			return err
		}
		if !ready {
			return &NotReadyError{Component: component, Attempts: g.config.Policy.MaxAttempts}
		}
	}
	return nil
}

// Settle waits the configured settle delay
func (g *Gate) Settle(ctx context.Context) error {
	if g.config.Settle <= 0 {
		return ctx.Err()
	}
	g.logger.Debug().Dur("delay", g.config.Settle).Msg("waiting for overlay network to settle")
	return g.clock.Sleep(ctx, g.config.Settle)
}
