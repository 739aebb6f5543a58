// Package registry maintains the dispatch table from source URLs to
// handler descriptors, together with the rejection set that overrides it.
package registry

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"unicode"

	"github.com/novelforge/source-registry/internal/catalog"
	"github.com/novelforge/source-registry/internal/config"
	"github.com/novelforge/source-registry/internal/handler"
	"github.com/novelforge/source-registry/internal/logger"
)

// Registry owns the URL dispatch table, the handler loader and the
// rejection set. All mutating operations are safe for concurrent use.
type Registry struct {
	cfg        *config.Config
	store      catalog.Store
	loader     *handler.Loader
	log        logger.Logger
	rejections *Rejections

	mu       sync.RWMutex
	dispatch map[string]*handler.Descriptor
}

// New creates an empty registry backed by the given catalog store.
func New(cfg *config.Config, store catalog.Store, log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	return &Registry{
		cfg:        cfg,
		store:      store,
		loader:     handler.NewLoader(log),
		log:        log,
		rejections: NewRejections(),
		dispatch:   make(map[string]*handler.Descriptor),
	}
}

// Rejections exposes the rejection set for merging catalog data.
func (r *Registry) Rejections() *Rejections {
	return r.rejections
}

// Clear drops every registered handler. Rejections are kept.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dispatch = make(map[string]*handler.Descriptor)
}

// Init rebuilds the dispatch table from scratch: catalog rejections
// first, then bundled sources, then user-installed sources named by the
// catalog.
func (r *Registry) Init(current *catalog.Catalog) {
	r.Clear()
	r.rejections.Merge(current.Rejected)
	r.AddFromPath(r.cfg.BundledSourcesDir(), false)
	r.LoadInstalled(current)
}

// AddFromPath loads handlers from a file or directory and registers
// them. Files whose name starts with an underscore or a non-alphanumeric
// rune are skipped. Directories are walked for handler scripts, each
// subject to the same name check. Load failures are logged and skipped;
// they never fail the whole registration.
func (r *Registry) AddFromPath(path string, forceReload bool) {
	base := filepath.Base(path)
	if ignoredName(base) {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		r.log.Warn("handler path does not exist", logger.String("path", path))
		return
	}

	if info.IsDir() {
		_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if filepath.Ext(p) != handler.ScriptExtension {
				return nil
			}
			r.AddFromPath(p, forceReload)
			return nil
		})
		return
	}

	descs, err := r.loader.Load(path, forceReload)
	if err != nil {
		r.log.Warn("failed to load handlers",
			logger.String("path", path), logger.Err(err))
		return
	}

	for _, desc := range descs {
		r.register(desc)
	}
}

// LoadInstalled registers handlers for every catalog entry whose file is
// already present in the user data dir. Missing files are left for the
// downloader.
func (r *Registry) LoadInstalled(current *catalog.Catalog) {
	if current == nil {
		return
	}
	for _, entry := range current.Entries {
		path := r.cfg.UserSourcePath(entry.FilePath)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		r.AddFromPath(path, false)
	}
}

// register inserts a descriptor under every addressing variant of each
// base URL. Later registrations overwrite earlier ones for the same key.
// Disabled handlers feed the rejection set as well, so resolution can
// report the reason.
func (r *Registry) register(desc *handler.Descriptor) {
	if desc.Disabled {
		for _, baseURL := range desc.BaseURLs {
			r.rejections.Add(baseURL, desc.DisableReason)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, baseURL := range desc.BaseURLs {
		noWWW := stripWWW(baseURL)
		for _, key := range []string{
			baseURL,
			noWWW,
			hostnameOf(baseURL),
			hostnameOf(noWWW),
		} {
			if key == "" {
				continue
			}
			r.dispatch[key] = desc
		}
	}
}

// Lookup returns the descriptor registered under an exact key, if any.
func (r *Registry) Lookup(key string) (*handler.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.dispatch[key]
	return desc, ok
}

// Handlers returns the distinct registered descriptors, sorted by their
// first base URL.
func (r *Registry) Handlers() []*handler.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[*handler.Descriptor]struct{}, len(r.dispatch))
	descs := make([]*handler.Descriptor, 0, len(r.dispatch))
	for _, desc := range r.dispatch {
		if _, ok := seen[desc]; ok {
			continue
		}
		seen[desc] = struct{}{}
		descs = append(descs, desc)
	}
	sort.Slice(descs, func(i, j int) bool {
		if descs[i].FilePath != descs[j].FilePath {
			return descs[i].FilePath < descs[j].FilePath
		}
		return descs[i].Name < descs[j].Name
	})
	return descs
}

// Size returns the number of dispatch keys.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.dispatch)
}

// ignoredName reports whether a file name marks the file as private to
// the sources tree.
func ignoredName(name string) bool {
	if name == "" {
		return true
	}
	runes := []rune(name)
	if runes[0] == '_' {
		return true
	}
	return !unicode.IsLetter(runes[0]) && !unicode.IsDigit(runes[0])
}
