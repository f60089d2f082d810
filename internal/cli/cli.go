// Package cli implements the pngexport command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pngexport/pkg/cache"
	"github.com/matzehuels/pngexport/pkg/config"
	"github.com/matzehuels/pngexport/pkg/deliver"
	"github.com/matzehuels/pngexport/pkg/dom"
	"github.com/matzehuels/pngexport/pkg/export"
	"github.com/matzehuels/pngexport/pkg/source"
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

	// configPath overrides the default config file location (--config).
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the config file selected by --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// Exporter Factory
// =============================================================================

// session is a loaded document with an exporter over it.
type session struct {
	doc      *dom.Document
	exporter *export.Exporter
	cache    cache.Cache
}

func (s *session) Close() error {
	return s.cache.Close()
}

// openSession loads the source at path and prepares an exporter for it.
// d may be nil when every request brings its own deliverer.
func (c *CLI) openSession(ctx context.Context, cfg *config.Config, path string, d deliver.Deliverer, noCache bool) (*session, error) {
	logger := loggerFromContext(ctx)
	cc, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}

	doc, err := source.NewLoader(cc, logger).Load(ctx, path)
	if err != nil {
		cc.Close()
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	exp := export.New(doc, d, cc, logger)
	exp.Decoder.Strict = cfg.Export.Strict
	if ttl, err := cfg.CacheTTL(); err == nil {
		exp.CacheTTL = ttl
	}
	if cfg.Cache.Prefix != "" {
		exp.Keyer = cache.NewScopedKeyer(exp.Keyer, cfg.Cache.Prefix)
	}
	return &session{doc: doc, exporter: exp, cache: cc}, nil
}

// redisPrefix namespaces all keys in a shared redis database.
const redisPrefix = appName + ":"

// newCache opens the configured cache backend.
func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   redisPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		return rc, nil
	case config.BackendFile:
		dir, err := cfg.CacheDir()
		if err != nil {
			loggerFromContext(ctx).Warn("file cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	default:
		return cache.NewNullCache(), nil
	}
}
