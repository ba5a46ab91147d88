package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cuemby/nodemend/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketClusters   = []byte("clusters")
	bucketNodes      = []byte("nodes")
	bucketContainers = []byte("containers")
)

// BoltStore reads a BoltDB export of the state store. Each bucket maps a
// record ID to the record's JSON encoding. Iteration follows bucket key
// order.
type BoltStore struct {
	path   string
	strict bool
}

// NewBoltStore creates a store reading the BoltDB file at path
func NewBoltStore(path string, strict bool) *BoltStore {
	return &BoltStore{path: path, strict: strict}
}

// Load opens the database read-only, reads every record and closes it again
func (s *BoltStore) Load(ctx context.Context) (*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(s.path); err != nil {
		if s.strict {
			return nil, fmt.Errorf("%w: unable to read %s: %w", ErrUnavailable, s.path, err)
		}
		return &types.Snapshot{}, nil
	}

	db, err := bolt.Open(s.path, 0400, &bolt.Options{
		ReadOnly: true,
		Timeout:  time.Second,
	})
	if err != nil {
		if s.strict {
			return nil, fmt.Errorf("%w: failed to open database %s: %w", ErrUnavailable, s.path, err)
		}
		return &types.Snapshot{}, nil
	}
	defer db.Close()

	snap := &types.Snapshot{}
	err = db.View(func(tx *bolt.Tx) error {
		if err := forEach(tx, bucketClusters, func(k, v []byte) error {
			var c types.Cluster
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("cluster %s: %w", k, err)
			}
			if c.ID == "" {
				c.ID = string(k)
			}
			snap.Clusters = append(snap.Clusters, c)
			return nil
		}); err != nil {
			return err
		}

		if err := forEach(tx, bucketNodes, func(k, v []byte) error {
			var n types.Node
			if err := json.Unmarshal(v, &n); err != nil {
				return fmt.Errorf("node %s: %w", k, err)
			}
			if n.ID == "" {
				n.ID = string(k)
			}
			snap.Nodes = append(snap.Nodes, n)
			return nil
		}); err != nil {
			return err
		}

		return forEach(tx, bucketContainers, func(k, v []byte) error {
			var c types.Container
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("container %s: %w", k, err)
			}
			if c.ID == "" {
				c.ID = string(k)
			}
			snap.Containers = append(snap.Containers, c)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	return snap, nil
}

// forEach iterates a bucket, treating a missing bucket as empty
func forEach(tx *bolt.Tx, name []byte, fn func(k, v []byte) error) error {
	b := tx.Bucket(name)
	if b == nil {
		return nil
	}
	return b.ForEach(fn)
}
