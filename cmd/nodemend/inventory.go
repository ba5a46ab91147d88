package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cuemby/nodemend/pkg/identity"
	"github.com/cuemby/nodemend/pkg/inventory"
	"github.com/cuemby/nodemend/pkg/recovery"
	"github.com/cuemby/nodemend/pkg/storage"
	"github.com/cuemby/nodemend/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Show the recovery plan for this node",
	Long: `List the containers recover would process on this node, in recovery
order. Nothing is inspected or restarted.

With --type, list every recoverable container of that type across the
cluster instead.

Examples:
  nodemend inventory
  nodemend inventory --node node-2 -o yaml
  nodemend inventory --type oxauth -o json`,
	RunE: runInventory,
}

func init() {
	inventoryCmd.Flags().String("type", "", "List containers of this type across the cluster")
	inventoryCmd.Flags().StringP("output", "o", "table", "Output format: table, yaml, json")
}

// planEntry is one row of the recovery plan
type planEntry struct {
	Priority int    `json:"priority" yaml:"priority"`
	ID       string `json:"id" yaml:"id"`
	CID      string `json:"cid" yaml:"cid"`
	Type     string `json:"type" yaml:"type"`
	State    string `json:"state" yaml:"state"`
	Name     string `json:"name" yaml:"name"`
	Hostname string `json:"hostname" yaml:"hostname"`
	NodeID   string `json:"node_id" yaml:"node_id"`
}

func runInventory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	typ, _ := cmd.Flags().GetString("type")
	format, _ := cmd.Flags().GetString("output")

	snap, err := storage.Open(a.cfg.Snapshot.URI, a.cfg.Snapshot.Strict).Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	opts := a.cfg.InventoryOptions()
	var containers []types.Container
	if typ != "" {
		containers = inventory.ForType(snap, types.ContainerType(typ), opts)
	} else {
		node, ok := identity.NewResolver(snap).ResolveNode(a.cfg.Node.Hostname)
		if !ok {
			return recovery.ErrNoNode
		}
		containers = inventory.ContainersForNode(snap, node.ID, opts)
	}

	return renderPlan(cmd.OutOrStdout(), format, containers)
}

func renderPlan(w io.Writer, format string, containers []types.Container) error {
	entries := make([]planEntry, 0, len(containers))
	for _, c := range containers {
		entries = append(entries, planEntry{
			Priority: c.RecoveryPriority,
			ID:       c.ID,
			CID:      c.CID,
			Type:     string(c.Type),
			State:    string(c.State),
			Name:     c.Name,
			Hostname: c.Hostname,
			NodeID:   c.NodeID,
		})
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PRIORITY\tID\tCID\tTYPE\tSTATE\tNAME\tHOSTNAME")
		for _, e := range entries {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				e.Priority, e.ID, shortID(e.CID), e.Type, e.State, e.Name, e.Hostname)
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown output format: %q", format)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
