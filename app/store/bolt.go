package store

import (
	"context"
	"fmt"
	"path"
	"time"

	bolt "go.etcd.io/bbolt"
)

const slotsBktName = "slots"

// Bolt is a storage that uses BoltDB as a backend.
type Bolt struct {
	db *bolt.DB
}

// NewBolt creates new Bolt storage.
func NewBolt(dir string) (*Bolt, error) {
	// bolt holds an exclusive file lock, wait for it a bit
	// instead of hanging forever when another process owns the file
	db, err := bolt.Open(path.Join(dir, "bookmarks.db"), 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to make boltdb for %s: %w", dir, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(slotsBktName)); err != nil {
			return fmt.Errorf("create top-level bucket %s: %w", slotsBktName, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("make buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Put replaces the value stored under the key.
func (b *Bolt) Put(_ context.Context, key string, value []byte) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(slotsBktName)).Put([]byte(key), value); err != nil {
			return fmt.Errorf("put %s to storage: %w", key, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// Get returns the value stored under the key or ErrNotFound.
func (b *Bolt) Get(_ context.Context, key string) (value []byte, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bts := tx.Bucket([]byte(slotsBktName)).Get([]byte(key))
		if bts == nil {
			return ErrNotFound
		}

		// bytes returned by bolt are valid only within the transaction
		value = make([]byte, len(bts))
		copy(value, bts)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view storage: %w", err)
	}

	return value, nil
}

// Close closes the storage.
func (b *Bolt) Close() error { return b.db.Close() }
