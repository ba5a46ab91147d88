package storage

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/nodemend/pkg/types"
	bolt "go.etcd.io/bbolt"
)

// ExportStats counts the records written by ExportBolt
type ExportStats struct {
	Clusters   int
	Nodes      int
	Containers int
}

// ExportBolt writes snap into a BoltDB file readable by BoltStore. Buckets
// are recreated, so re-exporting replaces the previous contents. Records
// are keyed by ID; records without one are skipped.
func ExportBolt(snap *types.Snapshot, path string) (ExportStats, error) {
	var stats ExportStats
	if snap == nil {
		snap = &types.Snapshot{}
	}

	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	defer db.Close()

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketClusters, bucketNodes, bucketContainers} {
			if tx.Bucket(name) == nil {
				continue
			}
			if err := tx.DeleteBucket(name); err != nil {
				return fmt.Errorf("failed to drop %s bucket: %w", name, err)
			}
		}

		for _, c := range snap.Clusters {
			if err := putRecord(tx, bucketClusters, c.ID, c, &stats.Clusters); err != nil {
				return err
			}
		}
		for _, n := range snap.Nodes {
			if err := putRecord(tx, bucketNodes, n.ID, n, &stats.Nodes); err != nil {
				return err
			}
		}
		for _, c := range snap.Containers {
			if err := putRecord(tx, bucketContainers, c.ID, c, &stats.Containers); err != nil {
				return err
			}
		}
		// buckets must exist even when empty
		for _, name := range [][]byte{bucketClusters, bucketNodes, bucketContainers} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ExportStats{}, fmt.Errorf("failed to export to %s: %w", path, err)
	}
	return stats, nil
}

func putRecord(tx *bolt.Tx, bucket []byte, id string, record any, count *int) error {
	if id == "" {
		return nil
	}
	b, err := tx.CreateBucketIfNotExists(bucket)
	if err != nil {
		return fmt.Errorf("failed to create %s bucket: %w", bucket, err)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", bucket, id, err)
	}
	if err := b.Put([]byte(id), data); err != nil {
		return fmt.Errorf("failed to write %s %s: %w", bucket, id, err)
	}
	*count++
	return nil
}
