/*
Package storage reads the cluster state snapshot nodemend recovers from.

The state store is owned by the identity-platform engine. nodemend never
writes to it; every run loads a fresh, immutable snapshot and derives all
decisions from it.

# Backends

FileStore reads the engine's JSON document (DefaultSnapshotPath):

	{
	  "clusters":   {"<id>": {"id": "...", "ox_cluster_hostname": "idp.example.org"}},
	  "nodes":      {"<id>": {"id": "...", "name": "host1"}},
	  "containers": {"<id>": {"cid": "...", "type": "ldap", "node_id": "...",
	                          "state": "SUCCESS", "hostname": "...", "name": "..."}}
	}

Collections are walked token by token so records come back in the order
they appear in the file. The inventory breaks priority ties on that order.

BoltStore reads a BoltDB export with one bucket per collection
(clusters, nodes, containers). The database is opened read-only for the
duration of Load and iterated in key order.

# Strict and Best-Effort Loading

	store := storage.Open("/var/lib/gluuengine/db/shared.json", true)
	snap, err := store.Load(ctx)
	if errors.Is(err, storage.ErrUnavailable) {
		// recovery cannot proceed
	}

The recovery entry point opens the store in strict mode: a missing or
unreadable file wraps ErrUnavailable and the process exits non-zero. Read-only
listings open it in best-effort mode and treat a missing file as an empty
snapshot. Malformed content is an error in both modes.
*/
package storage
