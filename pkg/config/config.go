// Package config loads sourcegrid settings from a TOML file and the
// environment.
//
// The file lives at $XDG_CONFIG_HOME/sourcegrid/config.toml (or
// ~/.config/sourcegrid/config.toml). Every setting has a default, so the
// file is optional. Environment variables override the file:
//
//	SOURCEGRID_API_URL     api_url
//	SOURCEGRID_REDIS_ADDR  cache.redis_addr
//	SOURCEGRID_ADDR        server.addr
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/feedwatch/sourcegrid/pkg/cache"
	apperr "github.com/feedwatch/sourcegrid/pkg/errors"
	"github.com/feedwatch/sourcegrid/pkg/tiles"
)

// AppName names the config and cache directories.
const AppName = "sourcegrid"

// Environment variables read by [Load].
const (
	EnvAPIURL    = "SOURCEGRID_API_URL"
	EnvRedisAddr = "SOURCEGRID_REDIS_ADDR"
	EnvAddr      = "SOURCEGRID_ADDR"
)

// Config is the full set of settings.
type Config struct {
	APIURL   string        `toml:"api_url"`
	PageSize int           `toml:"page_size"`
	Timeout  time.Duration `toml:"timeout"`
	Grid     GridConfig    `toml:"grid"`
	Cache    CacheConfig   `toml:"cache"`
	Server   ServerConfig  `toml:"server"`
}

// GridConfig sizes the tile grid. Width is used when the container width
// cannot be measured, e.g. when writing JSON from the CLI.
type GridConfig struct {
	TileMinWidth float64 `toml:"tile_min_width"`
	Gap          float64 `toml:"gap"`
	Width        float64 `toml:"width"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend       string        `toml:"backend"` // file, redis or none
	TTL           time.Duration `toml:"ttl"`
	Dir           string        `toml:"dir"` // file backend, defaults to the XDG cache dir
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	Prefix        string        `toml:"prefix"` // key prefix shared by all backends
}

// ServerConfig configures `sourcegrid serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		APIURL:   "http://localhost:8000",
		PageSize: 50,
		Timeout:  10 * time.Second,
		Grid: GridConfig{
			TileMinWidth: tiles.DefaultMinTileWidth,
			Gap:          tiles.DefaultGap,
			Width:        1200,
		},
		Cache: CacheConfig{
			Backend:   cache.BackendFile,
			TTL:       5 * time.Minute,
			RedisAddr: "localhost:6379",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// DefaultPath returns the config file location following the XDG spec.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the default file cache directory (~/.cache/sourcegrid).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Load reads the config file at path on top of the defaults and applies the
// environment. An empty path means [DefaultPath], which may be absent; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			cfg.ApplyEnv(os.Getenv)
			return cfg, nil
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			cfg.ApplyEnv(os.Getenv)
			return cfg, nil
		}
		return nil, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "load config %s", path)
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// Parse decodes TOML from r on top of the defaults. The environment is not
// consulted.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "parse config")
	}
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables read with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if err := apperr.ValidateURL(c.APIURL); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "api_url")
	}
	if c.PageSize < 1 || c.PageSize > apperr.MaxPageSize {
		return apperr.New(apperr.ErrCodeInvalidConfig, "page_size must be between 1 and %d, got %d", apperr.MaxPageSize, c.PageSize)
	}
	if c.Timeout <= 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "timeout must be positive, got %s", c.Timeout)
	}
	if c.Grid.TileMinWidth <= 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "grid.tile_min_width must be positive, got %g", c.Grid.TileMinWidth)
	}
	if c.Grid.Gap < 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "grid.gap must not be negative, got %g", c.Grid.Gap)
	}
	if c.Grid.Width <= 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "grid.width must be positive, got %g", c.Grid.Width)
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return apperr.New(apperr.ErrCodeInvalidConfig, "cache.backend must be one of file, redis, none, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	return nil
}

// TileGrid returns the grid geometry.
func (c *Config) TileGrid() tiles.Grid {
	return tiles.Grid{MinTileWidth: c.Grid.TileMinWidth, Gap: c.Grid.Gap}
}

// CacheOptions returns the options for [cache.Open]. When noCache is set the
// null backend is selected.
func (c *Config) CacheOptions(noCache bool) (cache.Options, error) {
	opts := cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   AppName + ":",
		},
	}
	if noCache {
		opts.Backend = cache.BackendNone
		return opts, nil
	}
	if (opts.Backend == "" || opts.Backend == cache.BackendFile) && opts.Dir == "" {
		dir, err := CacheDir()
		if err != nil {
			return opts, fmt.Errorf("resolve cache dir: %w", err)
		}
		opts.Dir = dir
	}
	return opts, nil
}

// Keyer returns the cache keyer, scoped by Cache.Prefix when set.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Prefix)
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
