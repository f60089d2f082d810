// Package config loads pngexport settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/pngexport/config.toml, falling back to
// ~/.config/pngexport/config.toml. Every field is optional; a missing file
// yields [Default]. Command-line flags override the loaded values.
//
// Example:
//
//	[export]
//	width = 1200
//	download_dir = "~/Downloads"
//
//	[cache]
//	backend = "redis"
//	ttl = "72h"
//
//	[redis]
//	addr = "localhost:6379"
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pngexport/pkg/cache"
	"github.com/matzehuels/pngexport/pkg/errors"
)

// AppName names the config and cache directories.
const AppName = "pngexport"

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the full settings file.
type Config struct {
	Export ExportConfig `toml:"export"`
	Cache  CacheConfig  `toml:"cache"`
	Redis  RedisConfig  `toml:"redis"`
	Server ServerConfig `toml:"server"`
}

// ExportConfig holds defaults for export requests.
type ExportConfig struct {
	Width       float64 `toml:"width"`
	Height      float64 `toml:"height"`
	Strict      bool    `toml:"strict"`
	DownloadDir string  `toml:"download_dir"`
	Overwrite   bool    `toml:"overwrite"`
}

// CacheConfig selects and tunes the payload cache.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	TTL     string `toml:"ttl"`

	// Prefix scopes cache keys, e.g. to keep entries of separate projects
	// apart in a shared backend.
	Prefix string `toml:"prefix"`
}

// RedisConfig is the connection for the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ServerConfig configures "pngexport serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Export: ExportConfig{DownloadDir: ".", Strict: true},
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     cache.TTLArtifact.String(),
		},
		Redis:  RedisConfig{Addr: "localhost:6379"},
		Server: ServerConfig{Addr: "localhost:8080"},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the file at path over the defaults. An empty path means
// [Path]. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendNone, BackendFile, BackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"cache.backend %q must be one of none, file, redis", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if c.Export.Width < 0 || c.Export.Height < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "export width and height must not be negative")
	}
	if c.Cache.Backend == BackendRedis && c.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "redis.addr is required for the redis backend")
	}
	return nil
}

// CacheTTL parses cache.ttl. An empty value means [cache.TTLArtifact].
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return cache.TTLArtifact, nil
	}
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || ttl <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "cache.ttl %q must be a positive duration", c.Cache.TTL)
	}
	return ttl, nil
}

// DownloadDir returns export.download_dir with a leading "~" expanded.
func (c *Config) DownloadDir() string {
	return expandHome(c.Export.DownloadDir)
}

// CacheDir returns cache.dir with a leading "~" expanded. An empty value
// means $XDG_CACHE_HOME/pngexport or ~/.cache/pngexport.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return expandHome(c.Cache.Dir), nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Encode renders c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}

// Write stores c at path, creating parent directories. An existing file is
// only replaced when force is set.
func (c *Config) Write(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrCodeInvalidConfig, "%s already exists", path)
		}
	}
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create config dir")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
