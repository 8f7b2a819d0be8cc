package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/feedwatch/sourcegrid/pkg/api"
	"github.com/feedwatch/sourcegrid/pkg/cache"
	"github.com/feedwatch/sourcegrid/pkg/config"
	apperr "github.com/feedwatch/sourcegrid/pkg/errors"
	"github.com/feedwatch/sourcegrid/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Global flags
	configPath string
	apiURL     string
	noCache    bool
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Environment - Config, Cache and Client
// =============================================================================

// env bundles what most commands need: the loaded configuration, the
// response cache and a backend client reading through it.
type env struct {
	cfg    *config.Config
	cache  cache.Cache
	client *api.Client
	logger *log.Logger
}

// loadConfig reads the configuration and applies the global flag overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.apiURL != "" {
		cfg.APIURL = c.apiURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openEnv loads the configuration and connects the cache and the client.
// The caller must Close the returned env.
func (c *CLI) openEnv(ctx context.Context) (*env, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	ch := c.openCache(ctx, cfg)
	client, err := api.New(cfg.APIURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		api.WithCache(ch, cfg.Cache.TTL),
		api.WithKeyer(cfg.Keyer()),
		api.WithLogger(c.Logger),
	)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	c.Logger.Debug("environment ready", "api", client.BaseURL(), "cache", cfg.Cache.Backend, "no_cache", c.noCache)
	return &env{cfg: cfg, cache: ch, client: client, logger: c.Logger}, nil
}

// openCache opens the configured cache. An unusable cache never fails the
// command; it degrades to no caching with a warning.
func (c *CLI) openCache(ctx context.Context, cfg *config.Config) cache.Cache {
	opts, err := cfg.CacheOptions(c.noCache)
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	ch, err := cache.Open(ctx, opts)
	if err != nil {
		c.Logger.Warn("cache disabled", "backend", opts.Backend, "err", err)
		return cache.NewNullCache()
	}
	return ch
}

// runner creates a pipeline runner reading pages through the client.
func (e *env) runner() *pipeline.Runner {
	return pipeline.NewRunner(e.client, e.cache, e.cfg.Keyer(), e.logger)
}

// pipelineOptions returns options carrying the configured paging and grid
// geometry.
func (e *env) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Limit:     e.cfg.PageSize,
		Width:     e.cfg.Grid.Width,
		Gap:       e.cfg.Grid.Gap,
		TileWidth: e.cfg.Grid.TileMinWidth,
		Logger:    e.logger,
	}
}

// Close releases the cache.
func (e *env) Close() error {
	return e.cache.Close()
}

// =============================================================================
// Argument Helpers
// =============================================================================

// parseID parses a positive id argument.
func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.ErrCodeInvalidInput, "invalid %s id %q", kind, s)
	}
	if err := apperr.ValidateID(kind, id); err != nil {
		return 0, err
	}
	return id, nil
}

// parseIDs parses a list of positive id arguments.
func parseIDs(kind string, args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(kind, a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseSwitch parses an on/off argument.
func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "enable", "true":
		return true, nil
	case "off", "disable", "false":
		return false, nil
	}
	return false, apperr.New(apperr.ErrCodeInvalidInput, "expected on or off, got %q", s)
}

// openOutput returns stdout for "" or "-", else creates path.
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
