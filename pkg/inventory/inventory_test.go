package inventory

import (
	"sort"
	"testing"

	"github.com/cuemby/nodemend/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func container(cid string, typ types.ContainerType, nodeID string, state types.ContainerState) types.Container {
	return types.Container{
		ID:       "id-" + cid,
		CID:      cid,
		Type:     typ,
		NodeID:   nodeID,
		State:    state,
		Hostname: cid + ".weave.local",
		Name:     "gluu_" + cid,
	}
}

func cids(containers []types.Container) []string {
	out := make([]string, 0, len(containers))
	for _, c := range containers {
		out = append(out, c.CID)
	}
	return out
}

func TestContainersForNode_Scenario(t *testing.T) {
	snap := &types.Snapshot{Containers: []types.Container{
		container("c1", types.ContainerTypeLDAP, "n1", types.ContainerStateSuccess),
		container("c2", types.ContainerTypeNginx, "n1", types.ContainerStateSuccess),
		container("c3", types.ContainerTypeOxAuth, "n1", types.ContainerStateDisabled),
	}}

	got := ContainersForNode(snap, "n1", Options{})

	assert.Equal(t, []string{"c1", "c3", "c2"}, cids(got))
	assert.Equal(t, []int{1, 2, 5}, []int{
		got[0].RecoveryPriority, got[1].RecoveryPriority, got[2].RecoveryPriority,
	})
}

func TestContainersForNode_Filtering(t *testing.T) {
	tests := []struct {
		name       string
		containers []types.Container
		expected   []string
	}{
		{
			name: "other nodes excluded",
			containers: []types.Container{
				container("a", types.ContainerTypeLDAP, "n1", types.ContainerStateSuccess),
				container("b", types.ContainerTypeLDAP, "n2", types.ContainerStateSuccess),
			},
			expected: []string{"a"},
		},
		{
			name: "non-recoverable states excluded",
			containers: []types.Container{
				container("a", types.ContainerTypeLDAP, "n1", types.ContainerStateInProgress),
				container("b", types.ContainerTypeLDAP, "n1", types.ContainerStateFailed),
				container("c", types.ContainerTypeLDAP, "n1", types.ContainerState("")),
				container("d", types.ContainerTypeLDAP, "n1", types.ContainerStateDisabled),
			},
			expected: []string{"d"},
		},
		{
			name:       "empty snapshot",
			containers: nil,
			expected:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := &types.Snapshot{Containers: tt.containers}
			got := ContainersForNode(snap, "n1", Options{})
			assert.Equal(t, tt.expected, cids(got))
			for _, c := range got {
				assert.Equal(t, "n1", c.NodeID)
				assert.True(t, c.Recoverable())
			}
		})
	}
}

func TestContainersForNode_StableAndNonDecreasing(t *testing.T) {
	snap := &types.Snapshot{Containers: []types.Container{
		container("nginx-1", types.ContainerTypeNginx, "n1", types.ContainerStateSuccess),
		container("oxauth-1", types.ContainerTypeOxAuth, "n1", types.ContainerStateSuccess),
		container("ldap-1", types.ContainerTypeLDAP, "n1", types.ContainerStateSuccess),
		container("custom-1", types.ContainerType("redis"), "n1", types.ContainerStateSuccess),
		container("oxauth-2", types.ContainerTypeOxAuth, "n1", types.ContainerStateDisabled),
		container("ldap-2", types.ContainerTypeLDAP, "n1", types.ContainerStateSuccess),
		container("custom-2", types.ContainerTypeOxEleven, "n1", types.ContainerStateSuccess),
		container("oxidp-1", types.ContainerTypeOxIDP, "n1", types.ContainerStateSuccess),
		container("oxtrust-1", types.ContainerTypeOxTrust, "n1", types.ContainerStateSuccess),
	}}

	got := ContainersForNode(snap, "n1", Options{})

	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool {
		return got[i].RecoveryPriority < got[j].RecoveryPriority
	}))
	assert.Equal(t, []string{
		"custom-1", "custom-2",
		"ldap-1", "ldap-2",
		"oxauth-1", "oxauth-2",
		"oxtrust-1",
		"oxidp-1",
		"nginx-1",
	}, cids(got))
}

func TestContainersForNode_UnknownLast(t *testing.T) {
	snap := &types.Snapshot{Containers: []types.Container{
		container("custom", types.ContainerType("redis"), "n1", types.ContainerStateSuccess),
		container("nginx", types.ContainerTypeNginx, "n1", types.ContainerStateSuccess),
		container("ldap", types.ContainerTypeLDAP, "n1", types.ContainerStateSuccess),
	}}

	got := ContainersForNode(snap, "n1", Options{UnknownLast: true})

	assert.Equal(t, []string{"ldap", "nginx", "custom"}, cids(got))
	assert.Equal(t, 6, got[2].RecoveryPriority)
}

func TestContainersForNode_DoesNotMutateSnapshot(t *testing.T) {
	snap := &types.Snapshot{Containers: []types.Container{
		container("b", types.ContainerTypeNginx, "n1", types.ContainerStateSuccess),
		container("a", types.ContainerTypeLDAP, "n1", types.ContainerStateSuccess),
	}}

	_ = ContainersForNode(snap, "n1", Options{})

	assert.Equal(t, "b", snap.Containers[0].CID)
	assert.Equal(t, 0, snap.Containers[0].RecoveryPriority)
}

func TestContainersForNode_NilSnapshot(t *testing.T) {
	assert.Empty(t, ContainersForNode(nil, "n1", Options{}))
}

func TestForType(t *testing.T) {
	snap := &types.Snapshot{Containers: []types.Container{
		container("idp-1", types.ContainerTypeOxIDP, "n1", types.ContainerStateSuccess),
		container("ldap-1", types.ContainerTypeLDAP, "n1", types.ContainerStateSuccess),
		container("idp-2", types.ContainerTypeOxIDP, "n2", types.ContainerStateDisabled),
		container("idp-3", types.ContainerTypeOxIDP, "n2", types.ContainerStateFailed),
	}}

	got := ForType(snap, types.ContainerTypeOxIDP, Options{})

	require.Len(t, got, 2)
	assert.Equal(t, []string{"idp-1", "idp-2"}, cids(got))
	assert.Equal(t, 4, got[0].RecoveryPriority)
	assert.Empty(t, ForType(nil, types.ContainerTypeOxIDP, Options{}))
}
