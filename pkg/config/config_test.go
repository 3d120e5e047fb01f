package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "depscope.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[registry]
url = "https://registry.example.com"
downloads_url = "https://api.example.com/downloads"

[resolve]
max_depth = 5
concurrency = 4

[cache]
backend = "file"
dir = "/tmp/depscope-cache"
ttl = "12h"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Registry.URL != "https://registry.example.com" {
		t.Errorf("registry url = %q", cfg.Registry.URL)
	}
	if cfg.Resolve.MaxDepth != 5 || cfg.Resolve.Concurrency != 4 {
		t.Errorf("resolve = %+v", cfg.Resolve)
	}
	if cfg.Cache.Backend != "file" || cfg.Cache.Dir != "/tmp/depscope-cache" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.TTL() != 12*time.Hour {
		t.Errorf("TTL = %v, want 12h", cfg.TTL())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("default backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Resolve.MaxDepth != 0 {
		t.Errorf("MaxDepth = %d, want 0 (library default applies downstream)", cfg.Resolve.MaxDepth)
	}
}

func TestLoadPartialDocument(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[resolve]\nmax_depth = 3\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Resolve.MaxDepth != 3 {
		t.Errorf("MaxDepth = %d", cfg.Resolve.MaxDepth)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("unset sections should keep defaults, backend = %q", cfg.Cache.Backend)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	if _, err := Load(writeConfig(t, "registry = [broken")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadRejectsBadTTL(t *testing.T) {
	if _, err := Load(writeConfig(t, "[cache]\nttl = \"soon\"\n")); err == nil {
		t.Fatal("expected duration parse error")
	}
}

func TestBuildCache(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     CacheConfig
		wantErr bool
	}{
		{name: "DefaultsToMemory", cfg: CacheConfig{}},
		{name: "Memory", cfg: CacheConfig{Backend: "memory"}},
		{name: "None", cfg: CacheConfig{Backend: "none"}},
		{name: "RedisWithoutAddr", cfg: CacheConfig{Backend: "redis"}, wantErr: true},
		{name: "Unknown", cfg: CacheConfig{Backend: "bolt"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Cache: tt.cfg}
			c, err := cfg.BuildCache(ctx)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildCache: %v", err)
			}
			defer c.Close()
		})
	}
}

func TestBuildCacheFile(t *testing.T) {
	cfg := &Config{Cache: CacheConfig{Backend: "file", Dir: t.TempDir()}}
	c, err := cfg.BuildCache(context.Background())
	if err != nil {
		t.Fatalf("BuildCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v", data, ok, err)
	}
}
