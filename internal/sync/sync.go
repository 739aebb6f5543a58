// Package sync keeps the local handler catalog in step with the remote
// index and downloads changed handler files.
package sync

import (
	"context"
	"errors"
	"time"

	"github.com/novelforge/source-registry/internal/catalog"
	"github.com/novelforge/source-registry/internal/config"
	"github.com/novelforge/source-registry/internal/httpclient"
	"github.com/novelforge/source-registry/internal/logger"
	"github.com/novelforge/source-registry/internal/versions"
)

// Notifier is called when the remote index advertises a newer
// application release than the running one.
type Notifier func(latestVersion string)

// Synchronizer refreshes the local catalog from the remote index.
type Synchronizer struct {
	cfg    *config.Config
	store  catalog.Store
	client httpclient.Client
	notify Notifier
	log    logger.Logger

	// now and runningVersion are swappable for tests.
	now            func() time.Time
	runningVersion string
}

// NewSynchronizer creates a synchronizer. The notifier may be nil.
func NewSynchronizer(
	cfg *config.Config,
	store catalog.Store,
	client httpclient.Client,
	notify Notifier,
	log logger.Logger,
) *Synchronizer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Synchronizer{
		cfg:    cfg,
		store:  store,
		client: client,
		notify: notify,
		log:    log,
		now:    time.Now,

		runningVersion: versions.GetVersionInfo().Version,
	}
}

// CheckForUpdates loads the current catalog and, when the sync interval
// has elapsed or force is set, fetches the latest remote index. A skipped
// fetch is a no-op: the cached catalog is returned as both current and
// latest, untouched. After a successful fetch the current catalog is
// stamped with the sync time, has its app, supported and rejected
// sections replaced from the latest index, and is persisted. When the
// fetch fails and a cached catalog exists, the cached copy stands in for
// the latest one and keeps its old timestamp, so the next run retries;
// without a cache the failure is fatal.
func (s *Synchronizer) CheckForUpdates(ctx context.Context, force bool) (current, latest *catalog.Catalog, err error) {
	current, err = s.store.Load()
	if err != nil {
		if !errors.Is(err, catalog.ErrNoIndex) {
			s.log.Warn("failed to load catalog index", logger.Err(err))
		}
		current = catalog.New()
	}

	if !force && s.now().Unix()-current.SyncedAt < int64(s.cfg.SyncInterval.Seconds()) {
		s.log.Debug("catalog index is fresh, skipping remote fetch",
			logger.Int64("synced_at", current.SyncedAt))
		return current, current, nil
	}

	latest, err = s.fetchLatest(ctx)
	if err != nil {
		if !current.HasEntries() {
			return nil, nil, &ConfigError{Msg: "no usable catalog index", Err: err}
		}
		s.log.Warn("failed to fetch remote index, using cached catalog",
			logger.Err(err))
		return current, current, nil
	}

	if !current.HasEntries() {
		current = latest
	}
	current.SyncedAt = s.now().Unix()
	current.App = latest.App
	current.Supported = latest.Supported
	current.Rejected = latest.Rejected

	if err := s.store.Save(current); err != nil {
		s.log.Warn("failed to persist catalog index", logger.Err(err))
	}

	s.notifyAppUpdate(latest)
	return current, latest, nil
}

// fetchLatest downloads and decodes the remote index.
func (s *Synchronizer) fetchLatest(ctx context.Context) (*catalog.Catalog, error) {
	indexURL := s.cfg.RemoteIndexURL
	s.log.Debug("fetching remote index", logger.String("url", indexURL))

	data, err := s.client.Get(ctx, indexURL)
	if err != nil {
		return nil, &NetworkError{URL: indexURL, Err: err}
	}
	latest, err := catalog.Decode(data)
	if err != nil {
		return nil, &NetworkError{URL: indexURL, Err: err}
	}
	return latest, nil
}

// notifyAppUpdate calls the notifier when the remote index advertises a
// newer application release. The notifier runs on its own goroutine so a
// slow callback cannot stall the sync.
func (s *Synchronizer) notifyAppUpdate(latest *catalog.Catalog) {
	if s.notify == nil || latest.App.Version == "" {
		return
	}
	if versions.IsNewerVersion(latest.App.Version, s.runningVersion) {
		s.log.Info("a newer release is available",
			logger.String("current", s.runningVersion),
			logger.String("latest", latest.App.Version))
		go s.notify(latest.App.Version)
	}
}
