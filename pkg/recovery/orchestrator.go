package recovery

import (
	"context"

	"github.com/cuemby/nodemend/pkg/inventory"
	"github.com/cuemby/nodemend/pkg/log"
	"github.com/cuemby/nodemend/pkg/metrics"
	"github.com/cuemby/nodemend/pkg/overlay"
	"github.com/cuemby/nodemend/pkg/runtime"
	"github.com/cuemby/nodemend/pkg/types"
	"github.com/rs/zerolog"
)

// Outcome is the result of processing one container
type Outcome string

const (
	OutcomeMissing       Outcome = "missing"
	OutcomeInspectFailed Outcome = "inspect_failed"
	OutcomeRunning       Outcome = "running"
	OutcomeRestartFailed Outcome = "restart_failed"
	OutcomeDetached      Outcome = "detached"
	OutcomeRecovered     Outcome = "recovered"
)

// ContainerResult records what happened to one container
type ContainerResult struct {
	Container types.Container
	Outcome   Outcome

	// OverlayErrors lists detach or dns-add failures. They do not change
	// the outcome: the container was restarted either way.
	OverlayErrors []string
}

// Report summarises a Recover call
type Report struct {
	Results []ContainerResult

	// Interrupted is set when the context was cancelled before every
	// container was processed
	Interrupted bool
}

// Count returns how many containers ended with outcome
func (r *Report) Count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Restarted returns how many containers were restarted successfully
func (r *Report) Restarted() int {
	return r.Count(OutcomeRecovered) + r.Count(OutcomeDetached)
}

// Order returns the container IDs in processing order
func (r *Report) Order() []string {
	ids := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		ids = append(ids, res.Container.ID)
	}
	return ids
}

// OrchestratorConfig holds the Orchestrator's collaborators
type OrchestratorConfig struct {
	Snapshot  *types.Snapshot
	Inventory inventory.Options
	Runtime   runtime.Runtime
	Network   overlay.Network
	DNSDomain string
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
}

// Orchestrator restarts a node's stopped containers in priority order and
// reattaches them to the overlay network
type Orchestrator struct {
	snapshot  *types.Snapshot
	inventory inventory.Options
	runtime   runtime.Runtime
	network   overlay.Network
	domain    string
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	domain := cfg.DNSDomain
	if domain == "" {
		domain = overlay.DefaultDNSDomain
	}
	return &Orchestrator{
		snapshot:  cfg.Snapshot,
		inventory: cfg.Inventory,
		runtime:   cfg.Runtime,
		network:   cfg.Network,
		domain:    domain,
		logger:    log.WithComponent(cfg.Logger, "recovery"),
		metrics:   cfg.Metrics,
	}
}

// Recover processes every recoverable container of nodeID. Per-container
// failures are logged and recorded in the report; they never stop the loop.
// A cancelled context stops it before the next container and marks the
// report interrupted, even when the last container was already reached.
func (o *Orchestrator) Recover(ctx context.Context, nodeID, clusterHostname string) Report {
	var report Report

	containers := inventory.ContainersForNode(o.snapshot, nodeID, o.inventory)
	o.logger.Debug().Str("node_id", nodeID).Int("containers", len(containers)).Msg("recovery plan ready")

	for _, c := range containers {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}

		result := o.recoverContainer(ctx, c, clusterHostname)
		o.metrics.ContainerOutcome(string(result.Outcome))
		report.Results = append(report.Results, result)
	}
	report.Interrupted = ctx.Err() != nil

	return report
}

func (o *Orchestrator) recoverContainer(ctx context.Context, c types.Container, clusterHostname string) ContainerResult {
	logger := log.WithContainer(o.logger, c.CID, string(c.Type), c.Name)
	result := ContainerResult{Container: c}

	state, err := o.runtime.Inspect(ctx, c.CID)
	if err != nil {
		logger.Warn().Err(err).Msgf("unable to inspect %s container %s; skipping", c.Type, c.Name)
		result.Outcome = OutcomeInspectFailed
		return result
	}
	if !state.Exists {
		logger.Warn().Msgf("%s container %s does not exist; skipping", c.Type, c.Name)
		result.Outcome = OutcomeMissing
		return result
	}
	if state.Running {
		logger.Info().Msgf("%s container %s is already running; skipping", c.Type, c.Name)
		result.Outcome = OutcomeRunning
		return result
	}

	logger.Info().Msgf("restarting %s container %s", c.Type, c.Name)
	restart := o.runtime.Restart(ctx, c.CID)
	o.metrics.Command("restart", restart.Success())
	if !restart.Success() {
		logger.Warn().
			Int("exit_code", restart.ExitCode).
			Msgf("unable to restart %s container %s; reason=%s", c.Type, c.Name, restart.Reason())
		result.Outcome = OutcomeRestartFailed
		return result
	}

	if c.State == types.ContainerStateDisabled {
		logger.Info().Msgf("detaching disabled %s container %s from overlay network", c.Type, c.Name)
		res := o.network.Detach(ctx, c.CID)
		o.record(logger, "detach", res.Success(), res.Reason(), &result)
		result.Outcome = OutcomeDetached
		return result
	}

	for _, hostname := range o.dnsNames(c, clusterHostname) {
		if ctx.Err() != nil {
			logger.Warn().Msgf("skipping overlay DNS registration of %s container %s; interrupted", c.Type, c.Name)
			break
		}
		logger.Info().Str("hostname", hostname).Msgf("registering %s in overlay DNS", hostname)
		res := o.network.DNSAdd(ctx, c.CID, hostname)
		o.record(logger, "dns_add", res.Success(), res.Reason(), &result)
	}
	result.Outcome = OutcomeRecovered
	return result
}

// dnsNames returns the names a SUCCESS container is registered under:
// its own hostname, a role alias for services reached by role, and the
// public cluster hostname for the ingress gateway
func (o *Orchestrator) dnsNames(c types.Container, clusterHostname string) []string {
	var names []string
	if c.Hostname != "" {
		names = append(names, c.Hostname)
	}
	if c.Type.HasRoleAlias() {
		names = append(names, overlay.RoleAlias(string(c.Type), o.domain))
	}
	if c.Type == types.ContainerTypeNginx && clusterHostname != "" {
		names = append(names, clusterHostname)
	}
	return names
}

func (o *Orchestrator) record(logger zerolog.Logger, operation string, ok bool, reason string, result *ContainerResult) {
	o.metrics.Command(operation, ok)
	if ok {
		return
	}
	logger.Warn().Str("operation", operation).Msgf("%s failed for %s container %s; reason=%s",
		operation, result.Container.Type, result.Container.Name, reason)
	result.OverlayErrors = append(result.OverlayErrors, operation+": "+reason)
}
