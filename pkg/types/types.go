package types

// Cluster represents the identity-platform cluster recorded in the snapshot
type Cluster struct {
	ID string `json:"id"`

	// OxClusterHostname is the public hostname of the platform. It is
	// registered in overlay DNS for the ingress container.
	OxClusterHostname string `json:"ox_cluster_hostname"`
}

// Node represents a physical or virtual host in the cluster
type Node struct {
	ID   string `json:"id"`
	Name string `json:"name"` // Hostname of the machine
}

// ContainerType is the service kind a container runs
type ContainerType string

const (
	ContainerTypeLDAP     ContainerType = "ldap"
	ContainerTypeOxAuth   ContainerType = "oxauth"
	ContainerTypeOxTrust  ContainerType = "oxtrust"
	ContainerTypeOxIDP    ContainerType = "oxidp"
	ContainerTypeNginx    ContainerType = "nginx"
	ContainerTypeOxEleven ContainerType = "oxeleven"
)

// ContainerState is the lifecycle tag recorded by the cluster state store
type ContainerState string

const (
	ContainerStateSuccess    ContainerState = "SUCCESS"
	ContainerStateDisabled   ContainerState = "DISABLED"
	ContainerStateInProgress ContainerState = "IN_PROGRESS"
	ContainerStateFailed     ContainerState = "FAILED"
)

// Container represents a deployed service instance
type Container struct {
	ID       string         `json:"id"`
	CID      string         `json:"cid"` // Runtime-assigned container ID
	Type     ContainerType  `json:"type"`
	NodeID   string         `json:"node_id"`
	State    ContainerState `json:"state"`
	Hostname string         `json:"hostname"` // DNS name registered on the overlay
	Name     string         `json:"name"`

	// RecoveryPriority is derived from Type at inventory time; lower runs first
	RecoveryPriority int `json:"-"`
}

// Recoverable reports whether the recorded state allows recovery
func (c *Container) Recoverable() bool {
	return c.State == ContainerStateSuccess || c.State == ContainerStateDisabled
}

// Snapshot is a point-in-time view of the cluster state store.
// Each slice keeps the iteration order of the backing document.
type Snapshot struct {
	Clusters   []Cluster
	Nodes      []Node
	Containers []Container
}

// Empty reports whether the snapshot holds no records at all
func (s *Snapshot) Empty() bool {
	return len(s.Clusters) == 0 && len(s.Nodes) == 0 && len(s.Containers) == 0
}

// recoveryPriorities encodes the startup dependencies between services:
// directory first, then auth and trust, then the ingress gateway.
var recoveryPriorities = map[ContainerType]int{
	ContainerTypeLDAP:    1,
	ContainerTypeOxAuth:  2,
	ContainerTypeOxTrust: 3,
	ContainerTypeOxIDP:   4,
	ContainerTypeNginx:   5,
}

// UnknownPriority is assigned to container types missing from the lookup
const UnknownPriority = 0

// RecoveryPriority returns the fixed recovery priority for a container type
func RecoveryPriority(t ContainerType) int {
	if p, ok := recoveryPriorities[t]; ok {
		return p
	}
	return UnknownPriority
}

// MaxKnownPriority is the highest priority assigned to a known type
func MaxKnownPriority() int {
	highest := 0
	for _, p := range recoveryPriorities {
		if p > highest {
			highest = p
		}
	}
	return highest
}

// HasRoleAlias reports whether containers of this type are also registered
// in overlay DNS under "<type>.<domain>"
func (t ContainerType) HasRoleAlias() bool {
	switch t {
	case ContainerTypeOxAuth, ContainerTypeOxTrust, ContainerTypeOxEleven:
		return true
	}
	return false
}
