package sync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	gosync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novelforge/source-registry/internal/catalog"
	"github.com/novelforge/source-registry/internal/config"
	"github.com/novelforge/source-registry/internal/taskman"
)

func newTestDownloader(t *testing.T, client *fakeClient) (*Downloader, *config.Config, catalog.Store) {
	t.Helper()
	cfg := newTestConfig(t)
	store := catalog.NewFileStore(cfg)
	d := NewDownloader(cfg, store, client, taskman.New(4, nil), nil)
	return d, cfg, store
}

func writeHandlerFile(t *testing.T, cfg *config.Config, rel string) {
	t.Helper()
	path := cfg.UserSourcePath(rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("handler()"), 0o600))
}

func TestDownloadAllOnlyFetchesChanged(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.responses["https://example.com/b.star"] = []byte("handler b")
	d, cfg, store := newTestDownloader(t, client)

	current := catalog.New()
	current.Entries["a"] = &catalog.Entry{Version: 1, FilePath: "sources/en/a.star"}
	writeHandlerFile(t, cfg, "sources/en/a.star")

	latest := catalog.New()
	latest.Entries["a"] = &catalog.Entry{Version: 1, FilePath: "sources/en/a.star", URL: "https://example.com/a.star"}
	latest.Entries["b"] = &catalog.Entry{Version: 2, FilePath: "sources/en/b.star", URL: "https://example.com/b.star"}

	d.DownloadAll(context.Background(), current, latest, nil)

	// Only the remote-only entry was fetched; the installed one was not.
	assert.Equal(t, []string{"https://example.com/b.star"}, client.calls)
	data, err := os.ReadFile(cfg.UserSourcePath("sources/en/b.star"))
	require.NoError(t, err)
	assert.Equal(t, "handler b", string(data))

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, persisted.Entries, 2)
}

func TestDownloadAllRedownloadsMissingFile(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.responses["https://example.com/a.star"] = []byte("handler a")
	d, cfg, _ := newTestDownloader(t, client)

	// Same version on both sides, but the file is gone from disk.
	current := catalog.New()
	current.Entries["a"] = &catalog.Entry{Version: 3, FilePath: "sources/en/a.star"}
	latest := catalog.New()
	latest.Entries["a"] = &catalog.Entry{Version: 3, FilePath: "sources/en/a.star", URL: "https://example.com/a.star"}

	d.DownloadAll(context.Background(), current, latest, nil)

	assert.Equal(t, 1, client.callCount())
	_, err := os.Stat(cfg.UserSourcePath("sources/en/a.star"))
	assert.NoError(t, err)
}

func TestDownloadAllSkipsBundledFile(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	d, cfg, _ := newTestDownloader(t, client)

	path := cfg.BundledSourcePath("sources/en/a.star")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("handler()"), 0o600))

	current := catalog.New()
	current.Entries["a"] = &catalog.Entry{Version: 1, FilePath: "sources/en/a.star"}
	latest := catalog.New()
	latest.Entries["a"] = &catalog.Entry{Version: 1, FilePath: "sources/en/a.star", URL: "https://example.com/a.star"}

	d.DownloadAll(context.Background(), current, latest, nil)
	assert.Zero(t, client.callCount())
}

func TestDownloadAllPrunesTombstones(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	d, _, _ := newTestDownloader(t, client)

	current := catalog.New()
	current.Entries["removed"] = &catalog.Entry{Version: 1, FilePath: "sources/en/removed.star"}
	latest := catalog.New()

	d.DownloadAll(context.Background(), current, latest, nil)
	assert.NotContains(t, current.Entries, "removed")
}

func TestDownloadAllFailureCommitsTheRest(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	for _, id := range []string{"a", "b", "c", "d"} {
		client.responses[fmt.Sprintf("https://example.com/%s.star", id)] = []byte("handler " + id)
	}
	client.errs["https://example.com/e.star"] = errors.New("connection reset")
	d, cfg, store := newTestDownloader(t, client)

	current := catalog.New()
	latest := catalog.New()
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		latest.Entries[id] = &catalog.Entry{
			Version:  1,
			FilePath: fmt.Sprintf("sources/en/%s.star", id),
			URL:      fmt.Sprintf("https://example.com/%s.star", id),
		}
	}

	d.DownloadAll(context.Background(), current, latest, nil)

	for _, id := range []string{"a", "b", "c", "d"} {
		_, err := os.Stat(cfg.UserSourcePath(fmt.Sprintf("sources/en/%s.star", id)))
		assert.NoError(t, err, "file for %s should exist", id)
	}
	_, err := os.Stat(cfg.UserSourcePath("sources/en/e.star"))
	assert.Error(t, err)

	// The failed entry's metadata stays in the catalog; the next run sees
	// the missing file and fetches it again.
	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Contains(t, persisted.Entries, "e")
	assert.EqualValues(t, 1, persisted.Entries["e"].Version)
}

func TestDownloadAllProgressReporting(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.responses["https://example.com/a.star"] = []byte("handler a")
	client.responses["https://example.com/b.star"] = []byte("handler b")
	d, _, _ := newTestDownloader(t, client)

	current := catalog.New()
	latest := catalog.New()
	latest.Entries["a"] = &catalog.Entry{Version: 1, FilePath: "sources/en/a.star", URL: "https://example.com/a.star"}
	latest.Entries["b"] = &catalog.Entry{Version: 1, FilePath: "sources/en/b.star", URL: "https://example.com/b.star"}

	var mu gosync.Mutex
	seen := 0
	d.DownloadAll(context.Background(), current, latest, func(done, total int, name string) {
		mu.Lock()
		defer mu.Unlock()
		seen++
		assert.Equal(t, 2, total)
	})
	assert.Equal(t, 2, seen)
}

func TestDownloadAllExcludeFilter(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.responses["https://example.com/keep.star"] = []byte("handler keep")
	d, cfg, _ := newTestDownloader(t, client)
	d.Exclude = []string{"skip*"}

	current := catalog.New()
	latest := catalog.New()
	latest.Entries["keep"] = &catalog.Entry{Version: 1, FilePath: "sources/en/keep.star", URL: "https://example.com/keep.star"}
	latest.Entries["skipme"] = &catalog.Entry{Version: 1, FilePath: "sources/en/skipme.star", URL: "https://example.com/skipme.star"}

	d.DownloadAll(context.Background(), current, latest, nil)

	assert.Equal(t, 1, client.callCount())
	_, err := os.Stat(cfg.UserSourcePath("sources/en/keep.star"))
	assert.NoError(t, err)
	_, err = os.Stat(cfg.UserSourcePath("sources/en/skipme.star"))
	assert.Error(t, err)
}
