/*
Package types defines the records nodemend reads from the cluster state store.

The cluster state store is owned by the identity-platform engine. nodemend
only reads it, so every type here mirrors a record in that document:

  - Cluster: the platform, identified by its public hostname
  - Node: a host, identified by its hostname
  - Container: a deployed service instance (ldap, oxauth, oxtrust, oxidp,
    nginx, ...) with the runtime container ID and the DNS name it owns

# Recovery Priority

Containers are recovered in a fixed order that follows the startup
dependencies of the platform:

	ldap (1) → oxauth (2) → oxtrust (3) → oxidp (4) → nginx (5)

Unknown types get priority 0 (UnknownPriority). The priority is never read
from the snapshot; it is derived with RecoveryPriority when the inventory is
built.

# Recoverable States

Only SUCCESS and DISABLED containers are recovered. A DISABLED container is
restarted but kept out of overlay DNS and detached from the network.

# Snapshot

Snapshot holds the three collections as ordered slices. The order is the
iteration order of the backing document, which the inventory uses to break
priority ties.
*/
package types
