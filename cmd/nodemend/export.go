package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/cuemby/nodemend/pkg/storage"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export --to PATH",
	Short: "Export the cluster snapshot to a BoltDB file",
	Long: `Copy the configured snapshot into a BoltDB file that can be used as
snapshot.uri: bolt://PATH. An existing file is backed up to PATH.backup
before its clusters, nodes and containers buckets are replaced.

Examples:
  # Show what would be exported
  nodemend export --to /var/lib/nodemend/shared.db --dry-run

  # Export, then point nodemend at the copy
  nodemend export --to /var/lib/nodemend/shared.db
  NODEMEND_SNAPSHOT_URI=bolt:///var/lib/nodemend/shared.db nodemend recover`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("to", "", "BoltDB file to write (required)")
	exportCmd.Flags().Bool("dry-run", false, "Show what would be exported without writing")
	exportCmd.Flags().String("backup", "", "Backup path for an existing file (default: <to>.backup)")
	_ = exportCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	to, _ := cmd.Flags().GetString("to")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	backup, _ := cmd.Flags().GetString("backup")

	to = strings.TrimPrefix(to, "bolt://")
	if strings.TrimPrefix(a.cfg.Snapshot.URI, "bolt://") == to {
		return fmt.Errorf("refusing to export %s onto itself", to)
	}

	snap, err := storage.Open(a.cfg.Snapshot.URI, true).Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	logger := a.logger.With().Str("source", a.cfg.Snapshot.URI).Str("target", to).Logger()
	if dryRun {
		logger.Info().
			Int("clusters", len(snap.Clusters)).
			Int("nodes", len(snap.Nodes)).
			Int("containers", len(snap.Containers)).
			Msg("dry run; nothing written")
		return nil
	}

	if _, err := os.Stat(to); err == nil {
		if backup == "" {
			backup = to + ".backup"
		}
		if err := copyFile(to, backup); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		logger.Info().Str("backup", backup).Msg("existing export backed up")
	}

	stats, err := storage.ExportBolt(snap, to)
	if err != nil {
		return err
	}

	logger.Info().
		Int("clusters", stats.Clusters).
		Int("nodes", stats.Nodes).
		Int("containers", stats.Containers).
		Msg("snapshot exported")
	return nil
}

func copyFile(src, dst string) error {
	input, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, input, 0600)
}
