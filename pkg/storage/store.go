package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/cuemby/nodemend/pkg/types"
)

// DefaultSnapshotPath is where the identity-platform engine keeps its
// shared state document
const DefaultSnapshotPath = "/var/lib/gluuengine/db/shared.json"

// ErrUnavailable is wrapped by strict stores when the backing file is
// missing or cannot be read
var ErrUnavailable = errors.New("snapshot unavailable")

// Store defines the read-only query interface to the cluster state store
type Store interface {
	// Load reads a fresh snapshot. Records keep the iteration order of the
	// backing document.
	Load(ctx context.Context) (*types.Snapshot, error)
}

// Open returns the Store for uri. "bolt://<path>" selects a BoltDB export,
// "file://<path>" or a bare path selects the JSON document.
//
// A strict store fails with ErrUnavailable when the file is missing or
// unreadable. A non-strict store returns an empty snapshot instead.
func Open(uri string, strict bool) Store {
	switch {
	case strings.HasPrefix(uri, "bolt://"):
		return NewBoltStore(strings.TrimPrefix(uri, "bolt://"), strict)
	case strings.HasPrefix(uri, "file://"):
		return NewFileStore(strings.TrimPrefix(uri, "file://"), strict)
	case uri == "":
		return NewFileStore(DefaultSnapshotPath, strict)
	}
	return NewFileStore(uri, strict)
}
