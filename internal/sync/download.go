package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	gosync "sync"

	"github.com/novelforge/source-registry/internal/catalog"
	"github.com/novelforge/source-registry/internal/config"
	"github.com/novelforge/source-registry/internal/filtering"
	"github.com/novelforge/source-registry/internal/httpclient"
	"github.com/novelforge/source-registry/internal/logger"
	"github.com/novelforge/source-registry/internal/taskman"
)

// Downloader fetches handler files named by the latest index into the
// user data dir.
type Downloader struct {
	cfg    *config.Config
	store  catalog.Store
	client httpclient.Client
	exec   *taskman.Executor
	filter filtering.NameFilter
	log    logger.Logger

	// Include and Exclude are glob patterns over handler ids. An empty
	// include list admits everything; exclude wins.
	Include []string
	Exclude []string
}

// NewDownloader creates a downloader using the given executor.
func NewDownloader(
	cfg *config.Config,
	store catalog.Store,
	client httpclient.Client,
	exec *taskman.Executor,
	log logger.Logger,
) *Downloader {
	if log == nil {
		log = logger.NewNop()
	}
	return &Downloader{
		cfg:    cfg,
		store:  store,
		client: client,
		exec:   exec,
		filter: filtering.NewDefaultNameFilter(),
		log:    log,
	}
}

// DownloadAll reconciles the current catalog against the latest index
// and downloads every handler file that is new, has a newer version, or
// is missing from disk. Entries absent from the latest index are pruned
// from the current catalog first. Entry metadata is taken from the
// latest index before the file is fetched; the catalog is persisted
// after each successful download, so an interrupted batch leaves at most
// metadata ahead of files, which a later run repairs. Failed downloads
// are logged and skipped.
func (d *Downloader) DownloadAll(
	ctx context.Context,
	current, latest *catalog.Catalog,
	onProgress taskman.Progress,
) {
	if current.Entries == nil {
		current.Entries = make(map[string]*catalog.Entry)
	}
	for id := range current.Entries {
		if _, ok := latest.Entries[id]; !ok {
			delete(current.Entries, id)
		}
	}

	ids := make([]string, 0, len(latest.Entries))
	for id := range latest.Entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var saveMu gosync.Mutex
	tasks := make([]taskman.Task, 0, len(ids))
	for _, id := range ids {
		entry := latest.Entries[id]
		if keep, pattern := d.filter.ShouldInclude(id, d.Include, d.Exclude); !keep {
			d.log.Debug("handler excluded by filter",
				logger.String("id", id), logger.String("pattern", pattern))
			continue
		}

		prev, known := current.Entries[id]
		need := !known || prev.Version < entry.Version
		if !need && !d.fileOnDisk(entry.FilePath) {
			need = true
		}
		current.Entries[id] = entry

		if !need {
			continue
		}
		tasks = append(tasks, taskman.Task{
			Name: id,
			Run: func(ctx context.Context) error {
				if err := d.downloadOne(ctx, entry); err != nil {
					return err
				}
				saveMu.Lock()
				defer saveMu.Unlock()
				return d.store.Save(current)
			},
		})
	}

	if len(tasks) == 0 {
		d.log.Debug("all handler files are up to date")
		return
	}

	d.log.Info("downloading handler files", logger.Int("count", len(tasks)))
	failures := d.exec.RunAll(ctx, tasks, onProgress)
	for id, err := range failures {
		d.log.Warn("failed to download handler file",
			logger.String("id", id), logger.Err(err))
	}
	d.log.Info("handler download finished",
		logger.Int("succeeded", len(tasks)-len(failures)),
		logger.Int("failed", len(failures)))
}

// fileOnDisk reports whether the handler file exists in the user or
// bundled location.
func (d *Downloader) fileOnDisk(rel string) bool {
	for _, path := range []string{
		d.cfg.UserSourcePath(rel),
		d.cfg.BundledSourcePath(rel),
	} {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// downloadOne fetches a handler file and writes it atomically into the
// user data dir.
func (d *Downloader) downloadOne(ctx context.Context, entry *catalog.Entry) error {
	data, err := d.client.Get(ctx, entry.URL)
	if err != nil {
		return &NetworkError{URL: entry.URL, Err: err}
	}

	dest := d.cfg.UserSourcePath(entry.FilePath)
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("failed to create handler directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write handler file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to move handler file into place: %w", err)
	}
	return nil
}
