// Package sources wires the catalog store, remote synchronizer, batch
// downloader and handler registry into one source management surface.
package sources

import (
	"context"

	"github.com/novelforge/source-registry/internal/catalog"
	"github.com/novelforge/source-registry/internal/config"
	"github.com/novelforge/source-registry/internal/handler"
	"github.com/novelforge/source-registry/internal/httpclient"
	"github.com/novelforge/source-registry/internal/logger"
	"github.com/novelforge/source-registry/internal/registry"
	"github.com/novelforge/source-registry/internal/sync"
	"github.com/novelforge/source-registry/internal/taskman"
)

// Manager defines the source management operations exposed to callers.
type Manager interface {
	// Load brings the catalog, handler files and dispatch table up to
	// date, honoring the sync interval. It returns the sync timestamp.
	Load(ctx context.Context, onProgress taskman.Progress) (int64, error)

	// Sync is Load with a forced remote refresh.
	Sync(ctx context.Context, onProgress taskman.Progress) (int64, error)

	// Prepare resolves a target URL to a ready handler instance. An
	// optional ad-hoc script path is force-loaded first.
	Prepare(ctx context.Context, targetURL, adHocFile string) (*handler.Instance, error)

	// Handlers lists the registered handler descriptors.
	Handlers() []*handler.Descriptor

	// Supported lists the site URLs advertised by the catalog.
	Supported() []string
}

type defaultManager struct {
	cfg          *config.Config
	store        catalog.Store
	registry     *registry.Registry
	synchronizer *sync.Synchronizer
	downloader   *sync.Downloader
	log          logger.Logger

	supported []string
}

var _ Manager = (*defaultManager)(nil)

// Options configures optional manager dependencies.
type Options struct {
	// Client overrides the HTTP client.
	Client httpclient.Client

	// Notifier is called when a newer application release is published.
	Notifier sync.Notifier

	// Concurrency bounds parallel handler downloads.
	Concurrency int

	// Include and Exclude are glob patterns over handler ids.
	Include []string
	Exclude []string
}

// NewManager creates a manager with its full dependency graph.
func NewManager(cfg *config.Config, log logger.Logger, opts Options) Manager {
	if log == nil {
		log = logger.NewNop()
	}
	client := opts.Client
	if client == nil {
		client = httpclient.NewDefaultClient(httpclient.DefaultTimeout)
	}

	store := catalog.NewFileStore(cfg)
	exec := taskman.New(opts.Concurrency, log)
	downloader := sync.NewDownloader(cfg, store, client, exec, log)
	downloader.Include = opts.Include
	downloader.Exclude = opts.Exclude

	return &defaultManager{
		cfg:          cfg,
		store:        store,
		registry:     registry.New(cfg, store, log),
		synchronizer: sync.NewSynchronizer(cfg, store, client, opts.Notifier, log),
		downloader:   downloader,
		log:          log,
	}
}

func (m *defaultManager) Load(ctx context.Context, onProgress taskman.Progress) (int64, error) {
	return m.load(ctx, false, onProgress)
}

func (m *defaultManager) Sync(ctx context.Context, onProgress taskman.Progress) (int64, error) {
	return m.load(ctx, true, onProgress)
}

// load runs the full pipeline: catalog refresh, handler downloads, then
// a dispatch table rebuild from the refreshed catalog. In dev mode the
// remote pipeline is skipped entirely and the dispatch table is built
// from the bundled tree alone.
func (m *defaultManager) load(ctx context.Context, force bool, onProgress taskman.Progress) (int64, error) {
	if m.cfg.DevMode {
		return m.loadBundled()
	}

	current, latest, err := m.synchronizer.CheckForUpdates(ctx, force)
	if err != nil {
		return 0, err
	}

	m.downloader.DownloadAll(ctx, current, latest, onProgress)
	m.registry.Init(current)
	m.supported = current.Supported

	m.log.Info("sources loaded",
		logger.Int("handlers", len(m.registry.Handlers())),
		logger.Int64("synced_at", current.SyncedAt))
	return current.SyncedAt, nil
}

// loadBundled rebuilds the dispatch table from the bundled index and
// sources without touching the network or the user data dir.
func (m *defaultManager) loadBundled() (int64, error) {
	current, err := m.store.Load()
	if err != nil {
		m.log.Warn("no bundled catalog index, registering bundled sources only",
			logger.Err(err))
		current = catalog.New()
	}

	m.registry.Init(current)
	m.supported = current.Supported

	m.log.Info("sources loaded from bundled tree",
		logger.Int("handlers", len(m.registry.Handlers())))
	return current.SyncedAt, nil
}

func (m *defaultManager) Prepare(ctx context.Context, targetURL, adHocFile string) (*handler.Instance, error) {
	return m.registry.Prepare(ctx, targetURL, adHocFile)
}

func (m *defaultManager) Handlers() []*handler.Descriptor {
	return m.registry.Handlers()
}

func (m *defaultManager) Supported() []string {
	return m.supported
}
