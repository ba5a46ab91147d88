package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nodemend",
	Short: "nodemend - node recovery agent for identity-platform clusters",
	Long: `nodemend brings a rebooted node's identity-platform containers back into
service. It waits for the weave overlay network, restarts the node's
containers in dependency order (ldap, oxauth, oxtrust, oxidp, nginx) and
re-registers them in weave DNS.

Run without a subcommand it performs a recovery pass, which makes it
suitable for a boot-time systemd unit.`,
	Version:      Version,
	SilenceUsage: true,
	RunE:         runRecover,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"nodemend version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("config", "", "Config file (default /etc/nodemend/config.yaml)")
	rootCmd.PersistentFlags().String("node", "", "Node name to recover instead of this host's names")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(inventoryCmd)
	rootCmd.AddCommand(gateCmd)
}
