package recovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cuemby/nodemend/pkg/identity"
	"github.com/cuemby/nodemend/pkg/inventory"
	"github.com/cuemby/nodemend/pkg/log"
	"github.com/cuemby/nodemend/pkg/metrics"
	"github.com/cuemby/nodemend/pkg/overlay"
	"github.com/cuemby/nodemend/pkg/readiness"
	"github.com/cuemby/nodemend/pkg/retry"
	"github.com/cuemby/nodemend/pkg/runtime"
	"github.com/cuemby/nodemend/pkg/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrNoCluster is returned when the snapshot holds no cluster
	ErrNoCluster = errors.New("no cluster found in snapshot")

	// ErrNoNode is returned when no node in the snapshot matches this host
	ErrNoNode = errors.New("no node matches this host")
)

// IsInterrupted reports whether err comes from a cancelled run
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Config holds everything an Agent needs for one run
type Config struct {
	Store   storage.Store
	Runtime runtime.Runtime
	Network overlay.Network

	// NodeHint, when set, is the only name matched against snapshot nodes
	NodeHint  string
	Hostnames identity.HostnameFunc

	// Components are gated in order; defaults to overlay.DefaultComponents
	Components []string
	Gate       readiness.Config
	Clock      retry.Clock

	Inventory inventory.Options
	DNSDomain string

	Logger          zerolog.Logger
	Metrics         *metrics.Metrics
	MetricsTextfile string
}

// Agent runs the node recovery pipeline: load the snapshot, resolve this
// node, wait for the overlay network, then recover containers
type Agent struct {
	cfg Config
}

// NewAgent creates an agent
func NewAgent(cfg Config) *Agent {
	if len(cfg.Components) == 0 {
		cfg.Components = overlay.DefaultComponents
	}
	if cfg.Clock == nil {
		cfg.Clock = retry.RealClock{}
	}
	return &Agent{cfg: cfg}
}

// Run performs one recovery pass. It returns ErrNoCluster, ErrNoNode, a
// *readiness.NotReadyError or a snapshot error when a precondition fails,
// in which case no container was touched. A cancelled context surfaces as
// context.Canceled.
func (a *Agent) Run(ctx context.Context) (err error) {
	logger := log.WithRunID(a.cfg.Logger, uuid.NewString())
	timer := metrics.NewTimer()

	defer func() {
		a.cfg.Metrics.RunFinished(err == nil, timer, time.Now())
		if werr := a.cfg.Metrics.WriteTextfile(a.cfg.MetricsTextfile); werr != nil {
			logger.Warn().Err(werr).Msg("unable to write metrics textfile")
		}
		if IsInterrupted(err) {
			logger.Warn().Msg("recovery process aborted by user")
		}
	}()

	logger.Info().Msg("starting recovery process for current node; this may take a while ...")

	snap, err := a.cfg.Store.Load(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("unable to load cluster snapshot")
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	var opts []identity.Option
	if a.cfg.Hostnames != nil {
		opts = append(opts, identity.WithHostnames(a.cfg.Hostnames))
	}
	resolver := identity.NewResolver(snap, opts...)

	cluster, ok := resolver.ResolveCluster()
	if !ok {
		logger.Warn().Msg("unable to find any cluster")
		return ErrNoCluster
	}

	node, ok := resolver.ResolveNode(a.cfg.NodeHint)
	if !ok {
		logger.Warn().Msg("unable to find node matches existing hostname")
		return ErrNoNode
	}
	logger = log.WithNodeID(logger, node.ID)
	logger.Debug().Str("cluster_id", cluster.ID).Str("node_name", node.Name).Msg("node resolved")

	gate := readiness.NewGate(a.cfg.Runtime, a.cfg.Gate, a.cfg.Clock, logger, a.cfg.Metrics)
	if err := gate.AwaitAll(ctx, a.cfg.Components...); err != nil {
		var notReady *readiness.NotReadyError
		if errors.As(err, &notReady) {
			logger.Error().Str("component_name", notReady.Component).
				Msgf("aborting recovery process due to %s being not ready; please try again later ...", notReady.Component)
		}
		return err
	}
	if err := gate.Settle(ctx); err != nil {
		return err
	}

	orchestrator := NewOrchestrator(OrchestratorConfig{
		Snapshot:  snap,
		Inventory: a.cfg.Inventory,
		Runtime:   a.cfg.Runtime,
		Network:   a.cfg.Network,
		DNSDomain: a.cfg.DNSDomain,
		Logger:    logger,
		Metrics:   a.cfg.Metrics,
	})
	report := orchestrator.Recover(ctx, node.ID, cluster.OxClusterHostname)
	if report.Interrupted {
		return ctx.Err()
	}

	logger.Info().
		Int("processed", len(report.Results)).
		Int("restarted", report.Restarted()).
		Int("restart_failed", report.Count(OutcomeRestartFailed)).
		Dur("duration", timer.Duration()).
		Msg("recovery process for current node is finished")
	return nil
}
