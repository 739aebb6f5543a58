package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/novelforge/source-registry/internal/config"
)

// ErrNoIndex indicates that no catalog index file could be found in either
// the user data dir or the bundled location.
var ErrNoIndex = errors.New("no catalog index file found")

// Store defines the interface for catalog persistence
type Store interface {
	// Load reads the current catalog from durable storage
	Load() (*Catalog, error)

	// Save writes the catalog to the user-writable location
	Save(c *Catalog) error
}

// fileStore implements Store using local catalog index files
type fileStore struct {
	cfg *config.Config
}

var _ Store = (*fileStore)(nil)

// NewFileStore creates a new file-based catalog store
func NewFileStore(cfg *config.Config) Store {
	return &fileStore{cfg: cfg}
}

// Load reads the catalog index. In development mode, or when the user copy
// does not exist, the bundled copy is read instead. Writes always go to the
// user location, so the bundled copy is never modified.
func (s *fileStore) Load() (*Catalog, error) {
	indexFile := s.cfg.UserIndexFile()
	if s.cfg.DevMode || !fileExists(indexFile) {
		indexFile = s.cfg.BundledIndexFile()
	}

	data, err := os.ReadFile(indexFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoIndex, indexFile)
		}
		return nil, fmt.Errorf("failed to read catalog index: %w", err)
	}

	cat, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog index %s: %w", indexFile, err)
	}

	return cat, nil
}

// Save writes the catalog index to the user data dir. The write uses a
// temporary file and an atomic rename, guarded by a cross-process file lock
// so concurrent invocations do not interleave their writes.
func (s *fileStore) Save(c *Catalog) error {
	indexFile := s.cfg.UserIndexFile()
	if err := os.MkdirAll(filepath.Dir(indexFile), 0o750); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	lock := flock.New(indexFile + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock catalog index: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog index: %w", err)
	}

	tempPath := indexFile + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temporary catalog index: %w", err)
	}

	if err := os.Rename(tempPath, indexFile); err != nil {
		// Clean up temp file on error
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename catalog index: %w", err)
	}

	return nil
}

// fileExists reports whether path refers to an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
