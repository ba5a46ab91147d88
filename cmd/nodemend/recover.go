package main

import (
	"github.com/cuemby/nodemend/pkg/metrics"
	"github.com/cuemby/nodemend/pkg/overlay"
	"github.com/cuemby/nodemend/pkg/recovery"
	"github.com/cuemby/nodemend/pkg/storage"
	"github.com/spf13/cobra"
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover this node's containers",
	Long: `Recover this node's containers after a reboot.

The node is found in the cluster snapshot by this host's FQDN or hostname
(or --node). Once weave, weaveproxy and weaveplugin are running, every
stopped container recorded as SUCCESS or DISABLED is restarted in priority
order. SUCCESS containers are re-registered in weave DNS and DISABLED ones
are detached from the overlay.

Exits 1 when the snapshot is unreadable, this node is unknown or the overlay
never becomes ready. Ctrl+C stops the run and exits 0.

Examples:
  # Recover using /etc/nodemend/config.yaml
  nodemend recover

  # Recover the node named node-2 through a remote docker daemon
  NODEMEND_RUNTIME_DOCKER_HOST=tcp://:3376 nodemend recover --node node-2`,
	RunE: runRecover,
}

func runRecover(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	rt, err := a.openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := a.cfg
	agent := recovery.NewAgent(recovery.Config{
		Store:           storage.Open(cfg.Snapshot.URI, cfg.Snapshot.Strict),
		Runtime:         rt,
		Network:         overlay.NewWeave(a.runner, cfg.OverlayOptions()),
		NodeHint:        cfg.Node.Hostname,
		Components:      cfg.Readiness.Components,
		Gate:            cfg.GateConfig(),
		Inventory:       cfg.InventoryOptions(),
		DNSDomain:       cfg.Overlay.DNSDomain,
		Logger:          a.logger,
		Metrics:         metrics.New(),
		MetricsTextfile: cfg.Metrics.Textfile,
	})

	err = agent.Run(cmd.Context())
	if recovery.IsInterrupted(err) {
		return nil
	}
	return err
}
