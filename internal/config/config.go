// Package config provides path resolution and runtime settings for the
// source registry.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix for all environment variable overrides.
	EnvPrefix = "SOURCE_REGISTRY"

	// DefaultSyncInterval is the minimum interval between remote catalog
	// refreshes.
	DefaultSyncInterval = 30 * time.Minute

	// DefaultRemoteIndexURL is the default location of the gzip-compressed
	// remote catalog index.
	DefaultRemoteIndexURL = "https://raw.githubusercontent.com/novelforge/source-registry/main/sources/_index.json.gz"

	// SourcesDirName is the directory that holds handler files and the
	// catalog index, under both the user data dir and the bundled dir.
	SourcesDirName = "sources"

	// IndexFileName is the name of the catalog index file.
	IndexFileName = "_index.json"

	// appDirName is the per-user data directory name.
	appDirName = "source-registry"
)

// Config holds resolved paths and runtime settings.
type Config struct {
	// UserDataDir is the user-writable root. Downloaded handler files and
	// the catalog index are written here.
	UserDataDir string

	// BundledDir is the read-only root shipped with the application.
	BundledDir string

	// RemoteIndexURL is the URL of the remote catalog index.
	RemoteIndexURL string

	// SyncInterval is the minimum interval between remote refreshes.
	SyncInterval time.Duration

	// DevMode disables remote synchronization and reads the index from the
	// bundled location.
	DevMode bool

	// devModeSet records an explicit DevMode override, suppressing the
	// git-marker detection.
	devModeSet bool
}

// Option configures a Config during construction.
type Option func(*Config) error

// WithUserDataDir overrides the user-writable root directory.
func WithUserDataDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return fmt.Errorf("user data dir cannot be empty")
		}
		c.UserDataDir = dir
		return nil
	}
}

// WithBundledDir overrides the bundled sources root directory.
func WithBundledDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return fmt.Errorf("bundled dir cannot be empty")
		}
		c.BundledDir = dir
		return nil
	}
}

// WithRemoteIndexURL overrides the remote catalog index URL.
func WithRemoteIndexURL(url string) Option {
	return func(c *Config) error {
		if url == "" {
			return fmt.Errorf("remote index URL cannot be empty")
		}
		c.RemoteIndexURL = url
		return nil
	}
}

// WithSyncInterval overrides the minimum sync interval.
func WithSyncInterval(interval time.Duration) Option {
	return func(c *Config) error {
		if interval < 0 {
			return fmt.Errorf("sync interval cannot be negative")
		}
		c.SyncInterval = interval
		return nil
	}
}

// WithDevMode forces development mode on or off.
func WithDevMode(dev bool) Option {
	return func(c *Config) error {
		c.DevMode = dev
		c.devModeSet = true
		return nil
	}
}

// New builds a Config from defaults, environment overrides, and options.
// Environment overrides use the SOURCE_REGISTRY_ prefix: MODE=dev enables
// development mode, INDEX_URL and SYNC_INTERVAL override their defaults.
func New(opts ...Option) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	cfg := &Config{
		UserDataDir:    filepath.Join(xdg.DataHome, appDirName),
		BundledDir:     defaultBundledDir(),
		RemoteIndexURL: DefaultRemoteIndexURL,
		SyncInterval:   DefaultSyncInterval,
	}

	if url := v.GetString("index_url"); url != "" {
		cfg.RemoteIndexURL = url
	}
	if interval := v.GetString("sync_interval"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s_SYNC_INTERVAL: %w", EnvPrefix, err)
		}
		cfg.SyncInterval = d
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// Development mode: explicit option wins, then the env override, then a
	// version-control marker next to the bundled sources.
	if !cfg.devModeSet {
		cfg.DevMode = v.GetString("mode") == "dev" || hasGitMarker(cfg.BundledDir)
	}

	return cfg, nil
}

// defaultBundledDir resolves the bundled sources root. It prefers the
// executable's directory, walking up one level if the sources tree lives
// next to the parent instead.
func defaultBundledDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	dir := filepath.Dir(exe)
	if _, err := os.Stat(filepath.Join(dir, SourcesDirName)); err == nil {
		return dir
	}
	parent := filepath.Dir(dir)
	if _, err := os.Stat(filepath.Join(parent, SourcesDirName)); err == nil {
		return parent
	}
	return dir
}

// hasGitMarker reports whether a git checkout marker exists at the root.
func hasGitMarker(root string) bool {
	_, err := os.Stat(filepath.Join(root, ".git", "HEAD"))
	return err == nil
}

// UserIndexFile returns the path of the catalog index in the user data dir.
func (c *Config) UserIndexFile() string {
	return filepath.Join(c.UserDataDir, SourcesDirName, IndexFileName)
}

// BundledIndexFile returns the path of the catalog index in the bundled dir.
func (c *Config) BundledIndexFile() string {
	return filepath.Join(c.BundledDir, SourcesDirName, IndexFileName)
}

// UserSourcePath resolves a catalog-relative file path against the user
// data dir.
func (c *Config) UserSourcePath(rel string) string {
	return filepath.Join(c.UserDataDir, filepath.FromSlash(rel))
}

// BundledSourcePath resolves a catalog-relative file path against the
// bundled dir.
func (c *Config) BundledSourcePath(rel string) string {
	return filepath.Join(c.BundledDir, filepath.FromSlash(rel))
}

// BundledSourcesDir returns the bundled handler sources tree.
func (c *Config) BundledSourcesDir() string {
	return filepath.Join(c.BundledDir, SourcesDirName)
}
