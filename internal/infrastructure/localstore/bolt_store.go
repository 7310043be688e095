package localstore

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	bolt "go.etcd.io/bbolt"
)

// BoltStore implements DurableStore on an embedded bbolt file.
// Each namespace gets its own bucket.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
}

// OpenBoltStore opens (creating if needed) the bbolt file at path
func OpenBoltStore(path, namespace string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store %s: %w", path, err)
	}

	bucket := []byte("pos")
	if namespace != "" {
		bucket = []byte("pos:" + namespace)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bolt bucket: %w", err)
	}

	return &BoltStore{db: db, bucket: bucket}, nil
}

// Get returns the value stored under key
func (s *BoltStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return shared.ErrStoreKeyNotFound
		}
		// v is only valid inside the transaction
		value = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set overwrites the value stored under key; the write is fsynced on commit
func (s *BoltStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write %q to bolt: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *BoltStore) Delete(ctx context.Context, key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete %q from bolt: %w", key, err)
	}
	return nil
}

// Close closes the bolt file
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Ensure BoltStore implements DurableStore
var _ shared.DurableStore = (*BoltStore)(nil)
