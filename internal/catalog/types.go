// Package catalog defines the versioned handler catalog and its durable
// storage.
package catalog

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
)

// Entry is one handler's remote metadata. Entries are immutable once
// fetched; a newer version supersedes the whole entry.
type Entry struct {
	// Version is a monotonically increasing revision of the handler file.
	Version int64 `json:"version"`

	// FilePath is the file location relative to a sources root, using
	// forward slashes (for example "sources/en/novelfull.star").
	FilePath string `json:"file_path"`

	// URL is the download location of the handler file.
	URL string `json:"url"`
}

// AppInfo describes the application release declared by the catalog.
type AppInfo struct {
	Version string `json:"version"`
}

// Catalog is the versioned manifest of available handler files. Two
// instances exist during synchronization: the current (installed) catalog
// and the latest (remote) one.
type Catalog struct {
	// SyncedAt is the unix timestamp (seconds) of the last successful sync.
	SyncedAt int64 `json:"v"`

	// App is the application release info declared by the remote.
	App AppInfo `json:"app"`

	// Supported lists the supported site URLs, for display purposes.
	Supported []string `json:"supported"`

	// Rejected maps denied URLs or hostnames to human-readable reasons.
	Rejected map[string]string `json:"rejected"`

	// Entries maps handler ids to their metadata.
	Entries map[string]*Entry `json:"crawlers"`
}

// New creates an empty catalog with initialized maps.
func New() *Catalog {
	return &Catalog{
		Rejected: make(map[string]string),
		Entries:  make(map[string]*Entry),
	}
}

// HasEntries reports whether the catalog holds any handler entries.
func (c *Catalog) HasEntries() bool {
	return c != nil && len(c.Entries) > 0
}

// gzipMagic is the two-byte gzip stream prefix.
var gzipMagic = []byte{0x1f, 0x8b}

// Decode parses a catalog payload. Remote payloads are gzip-compressed;
// local index files are plain JSON. The compression is detected from the
// stream prefix.
func Decode(data []byte) (*Catalog, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("catalog payload cannot be empty")
	}

	if bytes.HasPrefix(data, gzipMagic) {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip payload: %w", err)
		}
		defer func() {
			_ = gz.Close()
		}()

		data, err = io.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress catalog payload: %w", err)
		}
	}

	cat := New()
	if err := json.Unmarshal(data, cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog payload: %w", err)
	}
	if cat.Rejected == nil {
		cat.Rejected = make(map[string]string)
	}
	if cat.Entries == nil {
		cat.Entries = make(map[string]*Entry)
	}

	return cat, nil
}
