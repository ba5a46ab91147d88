package main

import (
	"fmt"
	"os"

	"github.com/cuemby/nodemend/pkg/command"
	"github.com/cuemby/nodemend/pkg/config"
	"github.com/cuemby/nodemend/pkg/log"
	"github.com/cuemby/nodemend/pkg/runtime"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app bundles what every subcommand needs
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	runner command.Runner
}

// newApp loads configuration and applies command-line overrides
func newApp(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if node, _ := cmd.Flags().GetString("node"); node != "" {
		cfg.Node.Hostname = node
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		if _, err := log.ParseLevel(level); err != nil {
			return nil, err
		}
		cfg.Logging.Level = level
	}

	return &app{
		cfg:    cfg,
		logger: log.New(cfg.LogConfig(os.Stderr)),
		runner: command.NewExecRunner(),
	}, nil
}

func (a *app) openRuntime() (runtime.Runtime, error) {
	rt, err := runtime.New(a.cfg.RuntimeConfig(), a.runner)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s runtime: %w", a.cfg.Runtime.Backend, err)
	}
	return rt, nil
}
