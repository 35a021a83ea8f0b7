package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/shodhmemory/engine/internal/logging"
	"github.com/shodhmemory/engine/internal/model"
)

var log = logging.GetLogger("storage")

// Store is the durable key-value layer backing the engine. One Store
// may be shared by every user; secondary-index keys are namespaced by
// user_id so a GDPR wipe for one user never touches another's data.
type Store struct {
	db   *bbolt.DB
	path string
}

// Open opens (creating if necessary) the bbolt database at path and
// ensures every bucket exists.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, model.NewError(model.KindDurability, "create storage directory", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, model.NewError(model.KindDurability, "open storage", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(b)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, model.NewError(model.KindDurability, "initialize buckets", err)
	}

	log.Info("storage opened", "path", path)
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the on-disk database path.
func (s *Store) Path() string { return s.path }

// Store persists a brand-new record and all of its secondary index
// keys in a single durable transaction.
func (s *Store) Store(r *model.Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return putRecordAndIndex(tx, r, nil)
	})
}

// Update persists changes to an existing record. Stale secondary
// index keys (tag, type, and importance-bucket keys that no longer
// match) are deleted before fresh ones are written: importance and
// tags are mutable, so their index keys drift unless every update
// re-indexes.
func (s *Store) Update(r *model.Record) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		old, err := getRecord(tx, r.UserID, r.ID)
		if err != nil {
			return err
		}
		return putRecordAndIndex(tx, r, old)
	})
}

func putRecordAndIndex(tx *bbolt.Tx, r *model.Record, old *model.Record) error {
	if old != nil {
		if err := deleteSecondaryIndexes(tx, old); err != nil {
			return err
		}
	}

	data, err := encodeRecord(r)
	if err != nil {
		return model.NewError(model.KindInvalidInput, "encode record", err)
	}

	mb := tx.Bucket([]byte(bucketMemories))
	if err := mb.Put(memKey(r.UserID, r.ID), data); err != nil {
		return model.NewError(model.KindDurability, "write record", err)
	}

	return putSecondaryIndexes(tx, r)
}

func putSecondaryIndexes(tx *bbolt.Tx, r *model.Record) error {
	tagB := tx.Bucket([]byte(bucketTagIdx))
	for _, t := range r.Tags {
		if err := tagB.Put(tagKey(r.UserID, t, r.ID), []byte(r.ID)); err != nil {
			return model.NewError(model.KindDurability, "write tag index", err)
		}
	}

	dateB := tx.Bucket([]byte(bucketDateIdx))
	if err := dateB.Put(dateKey(r.UserID, r.CreatedAt, r.ID), []byte(r.ID)); err != nil {
		return model.NewError(model.KindDurability, "write date index", err)
	}

	impB := tx.Bucket([]byte(bucketImpIdx))
	bucket := model.ImportanceBucket(r.Importance)
	if err := impB.Put(impKey(r.UserID, bucket, r.ID), []byte(r.ID)); err != nil {
		return model.NewError(model.KindDurability, "write importance index", err)
	}

	typeB := tx.Bucket([]byte(bucketTypeIdx))
	if err := typeB.Put(typeKey(r.UserID, string(r.MemoryType), r.ID), []byte(r.ID)); err != nil {
		return model.NewError(model.KindDurability, "write type index", err)
	}

	entB := tx.Bucket([]byte(bucketEntIdx))
	for _, e := range r.Entities {
		if err := entB.Put(entKey(r.UserID, e.NormalizedText(), r.ID), []byte(r.ID)); err != nil {
			return model.NewError(model.KindDurability, "write entity index", err)
		}
	}

	return nil
}

func deleteSecondaryIndexes(tx *bbolt.Tx, r *model.Record) error {
	tagB := tx.Bucket([]byte(bucketTagIdx))
	for _, t := range r.Tags {
		if err := tagB.Delete(tagKey(r.UserID, t, r.ID)); err != nil {
			return err
		}
	}

	dateB := tx.Bucket([]byte(bucketDateIdx))
	if err := dateB.Delete(dateKey(r.UserID, r.CreatedAt, r.ID)); err != nil {
		return err
	}

	impB := tx.Bucket([]byte(bucketImpIdx))
	bucket := model.ImportanceBucket(r.Importance)
	if err := impB.Delete(impKey(r.UserID, bucket, r.ID)); err != nil {
		return err
	}

	typeB := tx.Bucket([]byte(bucketTypeIdx))
	if err := typeB.Delete(typeKey(r.UserID, string(r.MemoryType), r.ID)); err != nil {
		return err
	}

	entB := tx.Bucket([]byte(bucketEntIdx))
	for _, e := range r.Entities {
		if err := entB.Delete(entKey(r.UserID, e.NormalizedText(), r.ID)); err != nil {
			return err
		}
	}

	return nil
}

// Get fetches a record by user and id.
func (s *Store) Get(userID, id string) (*model.Record, error) {
	var r *model.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		rec, err := getRecord(tx, userID, id)
		if err != nil {
			return err
		}
		r = rec
		return nil
	})
	return r, err
}

func getRecord(tx *bbolt.Tx, userID, id string) (*model.Record, error) {
	mb := tx.Bucket([]byte(bucketMemories))
	data := mb.Get(memKey(userID, id))
	if data == nil {
		return nil, model.NewError(model.KindNotFound, fmt.Sprintf("memory %s", id), nil)
	}
	r, err := decodeRecord(data)
	if err != nil {
		return nil, model.NewError(model.KindIndexCorruption, "decode record", err)
	}
	return r, nil
}

// Delete removes a record, its secondary index keys, and all incident
// edges atomically.
func (s *Store) Delete(userID, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		old, err := getRecord(tx, userID, id)
		if err != nil {
			return err
		}
		if err := deleteSecondaryIndexes(tx, old); err != nil {
			return err
		}
		mb := tx.Bucket([]byte(bucketMemories))
		if err := mb.Delete(memKey(userID, id)); err != nil {
			return err
		}
		return deleteIncidentEdgesTx(tx, id)
	})
}

// DeleteAllForUser removes every record, index key, and edge belonging
// to userID. Used by forget_all for GDPR-style erasure.
func (s *Store) DeleteAllForUser(userID string) error {
	ids, err := s.ListIDsForUser(userID)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, id := range ids {
			old, err := getRecord(tx, userID, id)
			if err != nil {
				if model.KindOf(err) == model.KindNotFound {
					continue
				}
				return err
			}
			if err := deleteSecondaryIndexes(tx, old); err != nil {
				return err
			}
			mb := tx.Bucket([]byte(bucketMemories))
			if err := mb.Delete(memKey(userID, id)); err != nil {
				return err
			}
			if err := deleteIncidentEdgesTx(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListIDsForUser returns every memory id belonging to userID by
// scanning the primary bucket's user prefix.
func (s *Store) ListIDsForUser(userID string) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket([]byte(bucketMemories))
		c := mb.Cursor()
		prefix := userPrefix(userID)
		for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
			ids = append(ids, splitLast(k))
		}
		return nil
	})
	return ids, err
}

// ListUsers returns every distinct user id with at least one stored
// record, by scanning the memories bucket's key prefixes. Used by the
// maintenance loop to iterate every active user.
func (s *Store) ListUsers() ([]string, error) {
	var users []string
	seen := make(map[string]bool)
	err := s.db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket([]byte(bucketMemories))
		return mb.ForEach(func(k, _ []byte) error {
			user, _ := lastTwoBy(append([]byte{}, k...))
			// lastTwoBy expects at least two separator-delimited
			// components; mem keys are "{user}\x00{id}" so the
			// second-to-last component is the user id.
			if user != "" && !seen[user] {
				seen[user] = true
				users = append(users, user)
			}
			return nil
		})
	})
	return users, err
}

func hasPrefix(k, prefix []byte) bool {
	if len(k) < len(prefix) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// ByTag returns ids of records for userID carrying tag.
func (s *Store) ByTag(userID, tag string) ([]string, error) {
	return s.scanIDs(bucketTagIdx, tagPrefix(userID, tag))
}

// ByDate returns ids of records for userID created on the given UTC
// calendar day.
func (s *Store) ByDate(userID string, day time.Time) ([]string, error) {
	return s.scanIDs(bucketDateIdx, datePrefix(userID, yyyymmdd(day)))
}

// ByImportanceBucket returns ids of records for userID whose
// importance falls in floor(importance*10) == bucket.
func (s *Store) ByImportanceBucket(userID string, bucket int) ([]string, error) {
	return s.scanIDs(bucketImpIdx, impPrefix(userID, bucket))
}

// ByType returns ids of records for userID of the given memory type.
func (s *Store) ByType(userID string, memType model.MemoryType) ([]string, error) {
	return s.scanIDs(bucketTypeIdx, typePrefix(userID, string(memType)))
}

// ByEntity returns ids of records for userID referencing the given
// normalized entity surface form.
func (s *Store) ByEntity(userID, normalized string) ([]string, error) {
	return s.scanIDs(bucketEntIdx, entPrefix(userID, normalized))
}

func (s *Store) scanIDs(bucket string, prefix []byte) ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
			ids = append(ids, string(v))
		}
		return nil
	})
	return ids, err
}

// GetMany fetches multiple records for userID, skipping any that are
// missing (e.g. a tombstoned index entry) instead of failing.
func (s *Store) GetMany(userID string, ids []string) ([]*model.Record, error) {
	var out []*model.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		for _, id := range ids {
			r, err := getRecord(tx, userID, id)
			if err != nil {
				if model.KindOf(err) == model.KindNotFound {
					continue
				}
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	return out, err
}

// LastTickAt returns the persisted checkpoint for the maintenance
// loop, or the zero time if none has been recorded yet.
func (s *Store) LastTickAt() (time.Time, error) {
	var t time.Time
	err := s.db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket([]byte(bucketMeta))
		data := mb.Get([]byte("last_tick_at"))
		if data == nil {
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, string(data))
		if err != nil {
			return nil
		}
		t = parsed
		return nil
	})
	return t, err
}

// SetLastTickAt checkpoints the maintenance loop's progress so a kill
// mid-tick does not cause a double decay on restart.
func (s *Store) SetLastTickAt(t time.Time) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		mb := tx.Bucket([]byte(bucketMeta))
		return mb.Put([]byte("last_tick_at"), []byte(t.UTC().Format(time.RFC3339Nano)))
	})
}

// Stats summarizes the store's contents for a user.
type Stats struct {
	TotalMemories int
	ByTier        map[model.Tier]int
	ByType        map[model.MemoryType]int
}

// StatsForUser computes per-tier and per-type counts for userID.
func (s *Store) StatsForUser(userID string) (*Stats, error) {
	ids, err := s.ListIDsForUser(userID)
	if err != nil {
		return nil, err
	}
	stats := &Stats{
		ByTier: make(map[model.Tier]int),
		ByType: make(map[model.MemoryType]int),
	}
	records, err := s.GetMany(userID, ids)
	if err != nil {
		return nil, err
	}
	stats.TotalMemories = len(records)
	for _, r := range records {
		stats.ByTier[r.Tier]++
		stats.ByType[r.MemoryType]++
	}
	return stats, nil
}
