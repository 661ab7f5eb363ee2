// Package config loads waterfall settings from a TOML file.
//
//	[layout]
//	batch_size = 12
//	width = "820px"
//	load_timeout = "5s"
//
//	[feed]
//	source = "synthetic"
//	seed = 7
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
// Missing keys keep their defaults. Command-line flags override the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/waterfall/pkg/cache"
	"github.com/matzehuels/waterfall/pkg/errors"
	"github.com/matzehuels/waterfall/pkg/masonry"
)

const appName = "waterfall"

// Feed source names.
const (
	SourceSynthetic = "synthetic"
	SourceManifest  = "manifest"
	SourceRemote    = "remote"
)

// Defaults.
const (
	DefaultBatchSize = 10
	DefaultFeedCount = 30
	DefaultCacheTTL  = 7 * 24 * time.Hour
)

// Config is the full settings file.
type Config struct {
	Layout Layout `toml:"layout"`
	Feed   Feed   `toml:"feed"`
	Cache  Cache  `toml:"cache"`
}

// Layout configures the engine.
type Layout struct {
	BatchSize   int           `toml:"batch_size"`
	Width       Width         `toml:"width"`
	Container   string        `toml:"container"`
	MinColumns  int           `toml:"min_columns"`
	LoadTimeout time.Duration `toml:"load_timeout"`
}

// Feed selects where items come from.
type Feed struct {
	Source    string  `toml:"source"`
	Manifest  string  `toml:"manifest"`
	URL       string  `toml:"url"`
	Seed      uint64  `toml:"seed"`
	Count     int     `toml:"count"`
	MinHeight float64 `toml:"min_height"`
	MaxHeight float64 `toml:"max_height"`
	ItemWidth float64 `toml:"item_width"`
}

// Cache selects the layout cache backend.
type Cache struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	RedisDB   int           `toml:"redis_db"`
	TTL       time.Duration `toml:"ttl"`
}

// Width is a container width given either as a number or as a CSS pixel
// string such as "620px". Zero means "measure the surface".
type Width float64

// UnmarshalTOML implements toml.Unmarshaler.
func (w *Width) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case int64:
		*w = Width(x)
	case float64:
		*w = Width(x)
	case string:
		f, err := masonry.ParseWidth(x)
		if err != nil {
			return err
		}
		*w = Width(f)
	default:
		return errors.New(errors.ErrCodeInvalidWidth, "width must be a number or string, got %T", v)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Layout.BatchSize == 0 {
		c.Layout.BatchSize = DefaultBatchSize
	}
	if c.Layout.Container == "" {
		c.Layout.Container = masonry.DefaultContainer
	}
	if c.Layout.MinColumns == 0 {
		c.Layout.MinColumns = 1
	}
	if c.Feed.Source == "" {
		c.Feed.Source = SourceSynthetic
	}
	if c.Feed.Count == 0 && c.Feed.Source == SourceSynthetic {
		c.Feed.Count = DefaultFeedCount
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = cache.BackendFile
	}
	if c.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := errors.ValidateBatchSize(c.Layout.BatchSize); err != nil {
		return err
	}
	if c.Layout.Width < 0 {
		return errors.New(errors.ErrCodeInvalidWidth, "layout.width must not be negative")
	}
	if err := errors.ValidateContainerID(c.Layout.Container); err != nil {
		return err
	}
	if c.Layout.MinColumns < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.min_columns must be at least 1")
	}
	if c.Layout.LoadTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.load_timeout must not be negative")
	}

	switch c.Feed.Source {
	case SourceSynthetic:
	case SourceManifest:
		if err := errors.ValidatePath(c.Feed.Manifest); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "feed.manifest")
		}
	case SourceRemote:
		if c.Feed.URL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "feed.url is required for the remote source")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "feed.source must be %q, %q or %q, got %q", SourceSynthetic, SourceManifest, SourceRemote, c.Feed.Source)
	}

	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendFile, cache.BackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be none, file or redis, got %q", c.Cache.Backend)
	}
	return nil
}

// EngineConfig converts the layout section for masonry.New.
func (c *Config) EngineConfig() masonry.Config {
	return masonry.Config{
		BatchSize:   c.Layout.BatchSize,
		Width:       float64(c.Layout.Width),
		Container:   c.Layout.Container,
		MinColumns:  c.Layout.MinColumns,
		LoadTimeout: c.Layout.LoadTimeout,
	}
}

// CacheConfig converts the cache section for cache.Open.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis:   cache.RedisOptions{Addr: c.Cache.RedisAddr, DB: c.Cache.RedisDB},
	}
}

// Load reads the file at path over the defaults. An empty path reads the
// default location, where a missing file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	c := &Config{}
	md, err := toml.DecodeFile(path, c)
	switch {
	case os.IsNotExist(err) && !explicit:
		return Default(), nil
	case os.IsNotExist(err):
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
	}

	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Path returns the default config file location,
// $XDG_CONFIG_HOME/waterfall/config.toml or ~/.config/waterfall/config.toml.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate config: %w", err)
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the default cache directory,
// $XDG_CACHE_HOME/waterfall or ~/.cache/waterfall.
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
