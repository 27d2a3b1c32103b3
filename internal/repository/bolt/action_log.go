// Package bolt persists the audit trail in an embedded bbolt database.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	models "chaincatalog/internal/domain/models/catalog"
)

var bucketActionLogs = []byte("action_logs")

// ActionLogStorage stores action logs keyed by a monotonically increasing
// sequence, so cursor order is insertion order.
type ActionLogStorage struct {
	db *bolt.DB
}

// Open opens (or creates) the database file and the action log bucket
func Open(path string) (*ActionLogStorage, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create action log directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open action log database: %w", err)
	}

	storage, err := NewActionLogStorage(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return storage, nil
}

// NewActionLogStorage creates the storage over an open database
func NewActionLogStorage(db *bolt.DB) (*ActionLogStorage, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketActionLogs)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create action log bucket: %w", err)
	}
	return &ActionLogStorage{db: db}, nil
}

// Close closes the underlying database
func (s *ActionLogStorage) Close() error {
	return s.db.Close()
}

// Append stores a record
func (s *ActionLogStorage) Append(ctx context.Context, action *models.ActionLog) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketActionLogs)

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		data, err := json.Marshal(action)
		if err != nil {
			return fmt.Errorf("failed to marshal action log: %w", err)
		}

		return bucket.Put(sequenceKey(seq), data)
	})
}

// List returns up to limit records, newest first
func (s *ActionLogStorage) List(ctx context.Context, limit int) ([]models.ActionLog, error) {
	var logs []models.ActionLog

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketActionLogs).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(logs) >= limit {
				break
			}
			var action models.ActionLog
			if err := json.Unmarshal(v, &action); err != nil {
				return fmt.Errorf("failed to unmarshal action log: %w", err)
			}
			logs = append(logs, action)
		}
		return nil
	})

	return logs, err
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
