package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// DefaultStoreDir is the default artifact store directory name
	DefaultStoreDir = ".jbt-cache"

	// bucketName is the BoltDB bucket name for compile-unit entries
	bucketName = "units"
)

// Store manages compiled outputs and their metadata using BoltDB
type Store struct {
	db   *bbolt.DB
	root string // Root directory for the store (.jbt-cache/)
}

// OpenStore creates a new artifact store instance
// If storeDir is empty, uses DefaultStoreDir in current working directory
func OpenStore(storeDir string) (*Store, error) {
	if storeDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}

		storeDir = filepath.Join(cwd, DefaultStoreDir)
	}

	// Ensure store directory exists
	if err := os.MkdirAll(storeDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	// Open BoltDB
	dbPath := filepath.Join(storeDir, "store.db")
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}

	// Create bucket if it doesn't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create store bucket: %w", err)
	}

	return &Store{
		db:   db,
		root: storeDir,
	}, nil
}

// Close closes the store database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}

// Get retrieves an entry by unit hash
// Returns nil if cache miss
func (s *Store) Get(hash string) (*Entry, error) {
	var entry Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		data := b.Get([]byte(hash))
		if data == nil {
			return nil // Cache miss
		}

		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return nil, err
	}

	if entry.Hash == "" {
		return nil, nil // Cache miss
	}

	return &entry, nil
}

// Put saves an entry and copies the unit's outputs into the store
func (s *Store) Put(hash, unit, destination string, success bool) error {
	// Collect outputs produced under the unit's destination directory
	outputs, err := CollectOutputs(destination)
	if err != nil {
		return fmt.Errorf("failed to collect outputs: %w", err)
	}

	entry := Entry{
		Hash:        hash,
		Unit:        unit,
		Destination: destination,
		Timestamp:   time.Now(),
		Outputs:     outputs,
		Success:     success,
	}

	// Store metadata in BoltDB
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return b.Put([]byte(hash), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	// Copy artifacts into the store (outputs are relative to the destination)
	if success && len(outputs) > 0 {
		if err := CopyArtifacts(destination, s.artifactDir(hash), outputs); err != nil {
			return fmt.Errorf("failed to copy artifacts: %w", err)
		}
	}

	return nil
}

// Restore copies cached outputs back into the destination directory
func (s *Store) Restore(entry *Entry, destDir string) error {
	if !entry.Success || len(entry.Outputs) == 0 {
		return fmt.Errorf("cannot restore failed build or build with no outputs")
	}

	return RestoreArtifacts(s.artifactDir(entry.Hash), destDir, entry.Outputs)
}

// Clear removes all entries and artifacts
func (s *Store) Clear() error {
	// Clear BoltDB
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket([]byte(bucketName))
	})
	if err != nil {
		return err
	}

	// Recreate bucket
	err = s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
	if err != nil {
		return err
	}

	// Remove artifacts directory
	artifactsDir := filepath.Join(s.root, "artifacts")
	if err := os.RemoveAll(artifactsDir); err != nil {
		return fmt.Errorf("failed to remove artifacts: %w", err)
	}

	return nil
}

// Stats returns the entry count and total artifact size in bytes
func (s *Store) Stats() (int, int64, error) {
	var count int
	var totalSize int64

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		count = b.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	// Calculate total artifact size
	artifactsDir := filepath.Join(s.root, "artifacts")
	err = filepath.Walk(artifactsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		if !info.IsDir() {
			totalSize += info.Size()
		}

		return nil
	})
	if err != nil {
		return count, totalSize, nil
	}

	return count, totalSize, nil
}

// artifactDir returns the directory path for a given unit hash
func (s *Store) artifactDir(hash string) string {
	return filepath.Join(s.root, "artifacts", hash)
}
