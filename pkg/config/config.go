// Package config loads depscope settings from a TOML file and wires the
// configured cache backend. All fields are optional; zero values fall back
// to the library defaults.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/depscope/depscope/pkg/cache"
)

// Config is the top-level configuration document.
type Config struct {
	Registry RegistryConfig `toml:"registry"`
	Resolve  ResolveConfig  `toml:"resolve"`
	Cache    CacheConfig    `toml:"cache"`
}

// RegistryConfig selects the npm endpoints to query.
type RegistryConfig struct {
	URL          string `toml:"url"`
	DownloadsURL string `toml:"downloads_url"`
}

// ResolveConfig bounds the dependency crawl.
type ResolveConfig struct {
	MaxDepth    int `toml:"max_depth"`
	Concurrency int `toml:"concurrency"`
}

// CacheConfig selects and parameterizes a cache backend. Backend is one of
// "memory", "file", "redis", or "none".
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	TTL       duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
}

// duration lets TTL be written as "24h" in the TOML document.
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Default returns the configuration used when no file is present: an
// in-memory cache and library defaults for everything else.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{Backend: "memory"},
	}
}

// Load reads a TOML configuration file. A missing file is not an error;
// the defaults are returned instead.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// TTL returns the configured cache TTL, or zero when unset.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.Cache.TTL)
}

// BuildCache constructs the configured cache backend.
func (c *Config) BuildCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case "", "memory":
		return cache.NewMemoryCache(cache.DefaultMemorySize)
	case "file":
		dir := c.Cache.Dir
		if dir == "" {
			home, err := os.UserCacheDir()
			if err != nil {
				return nil, fmt.Errorf("resolve cache dir: %w", err)
			}
			dir = filepath.Join(home, "depscope")
		}
		return cache.NewFileCache(dir)
	case "redis":
		if c.Cache.RedisAddr == "" {
			return nil, fmt.Errorf("cache backend %q requires redis_addr", c.Cache.Backend)
		}
		return cache.NewRedisCache(ctx, c.Cache.RedisAddr)
	case "none":
		return cache.NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
}
