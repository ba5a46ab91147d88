package inventory

import (
	"sort"

	"github.com/cuemby/nodemend/pkg/types"
)

// Options tunes the recovery order
type Options struct {
	// UnknownLast moves containers of unrecognized types after every known
	// type. By default they keep priority 0 and sort first.
	UnknownLast bool
}

// ContainersForNode returns the recoverable containers owned by nodeID,
// annotated with their recovery priority and sorted ascending by it.
// Containers with equal priority keep their snapshot order.
func ContainersForNode(snap *types.Snapshot, nodeID string, opts Options) []types.Container {
	if snap == nil {
		return nil
	}

	var containers []types.Container
	for _, c := range snap.Containers {
		if c.NodeID != nodeID || !c.Recoverable() {
			continue
		}
		c.RecoveryPriority = priority(c.Type, opts)
		containers = append(containers, c)
	}

	sortByPriority(containers)
	return containers
}

// ForType returns every recoverable container of the given type across the
// cluster, in snapshot order
func ForType(snap *types.Snapshot, typ types.ContainerType, opts Options) []types.Container {
	if snap == nil {
		return nil
	}

	var containers []types.Container
	for _, c := range snap.Containers {
		if c.Type != typ || !c.Recoverable() {
			continue
		}
		c.RecoveryPriority = priority(c.Type, opts)
		containers = append(containers, c)
	}
	return containers
}

func priority(t types.ContainerType, opts Options) int {
	p := types.RecoveryPriority(t)
	if p == types.UnknownPriority && opts.UnknownLast {
		return types.MaxKnownPriority() + 1
	}
	return p
}

func sortByPriority(containers []types.Container) {
	sort.SliceStable(containers, func(i, j int) bool {
		return containers[i].RecoveryPriority < containers[j].RecoveryPriority
	})
}
