package main

import (
	"github.com/cuemby/nodemend/pkg/readiness"
	"github.com/cuemby/nodemend/pkg/recovery"
	"github.com/spf13/cobra"
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Wait for the overlay network to become ready",
	Long: `Wait until every overlay component (weave, weaveproxy, weaveplugin by
default) is running, using the same retry budget as recover. No container
is touched.

Exits 1 if a component never becomes ready, which makes it usable as an
ExecStartPre check.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		rt, err := a.openRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		gate := readiness.NewGate(rt, a.cfg.GateConfig(), nil, a.logger, nil)
		err = gate.AwaitAll(cmd.Context(), a.cfg.Readiness.Components...)
		if recovery.IsInterrupted(err) {
			a.logger.Warn().Msg("readiness check aborted by user")
			return nil
		}
		if err != nil {
			return err
		}

		a.logger.Info().Strs("components", a.cfg.Readiness.Components).Msg("overlay network is ready")
		return nil
	},
}
