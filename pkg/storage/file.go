package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cuemby/nodemend/pkg/types"
)

// FileStore reads the JSON state document:
//
//	{
//	  "clusters":   {"<id>": {...}},
//	  "nodes":      {"<id>": {...}},
//	  "containers": {"<id>": {...}}
//	}
type FileStore struct {
	path   string
	strict bool
}

// NewFileStore creates a store reading the JSON document at path
func NewFileStore(path string, strict bool) *FileStore {
	return &FileStore{path: path, strict: strict}
}

// Path returns the document location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and decodes the document
func (s *FileStore) Load(ctx context.Context) (*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if s.strict {
			return nil, fmt.Errorf("%w: unable to read %s: %w", ErrUnavailable, s.path, err)
		}
		return &types.Snapshot{}, nil
	}

	snap, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return snap, nil
}

type document struct {
	Clusters   json.RawMessage `json:"clusters"`
	Nodes      json.RawMessage `json:"nodes"`
	Containers json.RawMessage `json:"containers"`
}

func decodeDocument(data []byte) (*types.Snapshot, error) {
	snap := &types.Snapshot{}
	if len(bytes.TrimSpace(data)) == 0 {
		return snap, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	err := eachRecord(doc.Clusters, func(key string, raw json.RawMessage) error {
		var c types.Cluster
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("cluster %s: %w", key, err)
		}
		if c.ID == "" {
			c.ID = key
		}
		snap.Clusters = append(snap.Clusters, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachRecord(doc.Nodes, func(key string, raw json.RawMessage) error {
		var n types.Node
		if err := json.Unmarshal(raw, &n); err != nil {
			return fmt.Errorf("node %s: %w", key, err)
		}
		if n.ID == "" {
			n.ID = key
		}
		snap.Nodes = append(snap.Nodes, n)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachRecord(doc.Containers, func(key string, raw json.RawMessage) error {
		var c types.Container
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("container %s: %w", key, err)
		}
		if c.ID == "" {
			c.ID = key
		}
		snap.Containers = append(snap.Containers, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}

// eachRecord walks a JSON object in document order. encoding/json maps do
// not keep key order, so the object is consumed token by token.
func eachRecord(raw json.RawMessage, fn func(key string, value json.RawMessage) error) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("record %s: %w", key, err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}

	_, err = dec.Token()
	return err
}
