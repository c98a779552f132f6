// Package store persists the per-vault policy, position and progress
// records in a bbolt database, one bucket per record kind, keyed by the
// vault seed.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/solroute/feeroute-go/distribute"
	"github.com/solroute/feeroute-go/policy"
	"github.com/solroute/feeroute-go/position"
	"github.com/solroute/feeroute-go/progress"
)

var (
	bucketPolicy   = []byte("policy")
	bucketPosition = []byte("position")
	bucketProgress = []byte("progress")
)

// BoltStore is a file-backed StateStore.
type BoltStore struct {
	db *bolt.DB
}

var _ distribute.StateStore = (*BoltStore)(nil)

// Open creates or opens the database at path, creating parent directories
// and the record buckets as needed.
func Open(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketPolicy, bucketPosition, bucketProgress} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) get(bucket []byte, vaultSeed string, notFound error) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucket).Get([]byte(vaultSeed))
		if v == nil {
			return notFound
		}
		data = append([]byte{}, v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *BoltStore) put(bucket []byte, vaultSeed string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(vaultSeed), data)
	})
}

func (s *BoltStore) GetPolicy(vaultSeed string) (*policy.Policy, error) {
	data, err := s.get(bucketPolicy, vaultSeed, policy.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return policy.Deserialize(data)
}

func (s *BoltStore) PutPolicy(p *policy.Policy) error {
	data, err := policy.Serialize(p)
	if err != nil {
		return err
	}
	if err := s.put(bucketPolicy, p.VaultSeed, data); err != nil {
		return fmt.Errorf("store: put policy: %w", err)
	}
	return nil
}

func (s *BoltStore) GetPosition(vaultSeed string) (*position.Position, error) {
	data, err := s.get(bucketPosition, vaultSeed, position.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return position.Deserialize(data)
}

func (s *BoltStore) PutPosition(p *position.Position) error {
	data, err := position.Serialize(p)
	if err != nil {
		return err
	}
	if err := s.put(bucketPosition, p.VaultSeed, data); err != nil {
		return fmt.Errorf("store: put position: %w", err)
	}
	return nil
}

func (s *BoltStore) GetProgress(vaultSeed string) (*progress.Progress, error) {
	data, err := s.get(bucketProgress, vaultSeed, progress.ErrNotFound)
	if err != nil {
		return nil, err
	}
	return progress.Deserialize(data)
}

func (s *BoltStore) PutProgress(p *progress.Progress) error {
	data, err := progress.Serialize(p)
	if err != nil {
		return err
	}
	if err := s.put(bucketProgress, p.VaultSeed, data); err != nil {
		return fmt.Errorf("store: put progress: %w", err)
	}
	return nil
}
