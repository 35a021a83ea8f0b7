package storage

import (
	"go.etcd.io/bbolt"

	"github.com/shodhmemory/engine/internal/model"
)

// PutEdge writes an edge and its adjacency-index entries in one
// durable transaction.
func (s *Store) PutEdge(e *model.Edge) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putEdgeTx(tx, e)
	})
}

func putEdgeTx(tx *bbolt.Tx, e *model.Edge) error {
	data, err := encodeEdge(e)
	if err != nil {
		return model.NewError(model.KindInvalidInput, "encode edge", err)
	}
	eb := tx.Bucket([]byte(bucketEdges))
	if err := eb.Put(edgeKey(e.A, e.B), data); err != nil {
		return model.NewError(model.KindDurability, "write edge", err)
	}
	adjB := tx.Bucket([]byte(bucketAdj))
	if err := adjB.Put(adjKey(e.A, e.B), []byte{1}); err != nil {
		return err
	}
	if err := adjB.Put(adjKey(e.B, e.A), []byte{1}); err != nil {
		return err
	}
	return nil
}

// GetEdge fetches the edge between a and b, if any.
func (s *Store) GetEdge(a, b string) (*model.Edge, error) {
	min, max := model.EdgeKey(a, b)
	var e *model.Edge
	err := s.db.View(func(tx *bbolt.Tx) error {
		eb := tx.Bucket([]byte(bucketEdges))
		data := eb.Get(edgeKey(min, max))
		if data == nil {
			return model.NewError(model.KindNotFound, "edge", nil)
		}
		decoded, err := decodeEdge(data)
		if err != nil {
			return model.NewError(model.KindIndexCorruption, "decode edge", err)
		}
		e = decoded
		return nil
	})
	return e, err
}

// EdgesForNode returns every edge incident to nodeID. Endpoints that
// no longer exist in the memories bucket are treated as tombstones and
// are lazily removed rather than returned as errors.
func (s *Store) EdgesForNode(userID, nodeID string) ([]*model.Edge, error) {
	var edges []*model.Edge
	var toRemove [][2]string

	err := s.db.View(func(tx *bbolt.Tx) error {
		adjB := tx.Bucket([]byte(bucketAdj))
		eb := tx.Bucket([]byte(bucketEdges))
		mb := tx.Bucket([]byte(bucketMemories))

		c := adjB.Cursor()
		prefix := adjPrefix(nodeID)
		for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
			_, other := lastTwoBy(k)
			if mb.Get(memKey(userID, other)) == nil {
				toRemove = append(toRemove, [2]string{nodeID, other})
				continue
			}
			min, max := model.EdgeKey(nodeID, other)
			data := eb.Get(edgeKey(min, max))
			if data == nil {
				toRemove = append(toRemove, [2]string{nodeID, other})
				continue
			}
			edge, err := decodeEdge(data)
			if err != nil {
				continue // corrupt entry: skip
			}
			edges = append(edges, edge)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, pair := range toRemove {
		_ = s.DeleteEdge(pair[0], pair[1])
	}

	return edges, nil
}

// AllEdges returns every edge in the store. Used by the maintenance
// loop, which decays and prunes globally rather than per user since
// edges are not namespaced by user_id (the "edge:{min_id}:{max_id}"
// key carries no user component).
func (s *Store) AllEdges() ([]*model.Edge, error) {
	var edges []*model.Edge
	err := s.db.View(func(tx *bbolt.Tx) error {
		eb := tx.Bucket([]byte(bucketEdges))
		return eb.ForEach(func(k, v []byte) error {
			e, err := decodeEdge(v)
			if err != nil {
				return nil // corrupt entry: skip, per §4.2/§4.3 failure semantics
			}
			edges = append(edges, e)
			return nil
		})
	})
	return edges, err
}

// DeleteEdge removes the edge between a and b and its adjacency
// entries.
func (s *Store) DeleteEdge(a, b string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return deleteEdgeTx(tx, a, b)
	})
}

func deleteEdgeTx(tx *bbolt.Tx, a, b string) error {
	min, max := model.EdgeKey(a, b)
	eb := tx.Bucket([]byte(bucketEdges))
	if err := eb.Delete(edgeKey(min, max)); err != nil {
		return err
	}
	adjB := tx.Bucket([]byte(bucketAdj))
	if err := adjB.Delete(adjKey(a, b)); err != nil {
		return err
	}
	if err := adjB.Delete(adjKey(b, a)); err != nil {
		return err
	}
	return nil
}

// deleteIncidentEdgesTx removes every edge touching nodeID, scanning
// the adjacency bucket rather than requiring callers to enumerate
// neighbors first.
func deleteIncidentEdgesTx(tx *bbolt.Tx, nodeID string) error {
	adjB := tx.Bucket([]byte(bucketAdj))
	c := adjB.Cursor()
	prefix := adjPrefix(nodeID)

	var others []string
	for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
		_, other := lastTwoBy(k)
		others = append(others, other)
	}

	for _, other := range others {
		if err := deleteEdgeTx(tx, nodeID, other); err != nil {
			return err
		}
	}
	return nil
}
