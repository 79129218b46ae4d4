package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/stammbaum/pkg/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Store.Backend != StoreMemory {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Cache.Backend != CacheFile {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[server]
addr = ":9000"

[store]
backend = "mongo"
mongo_uri = "mongodb://localhost:27017"

[cache]
backend = "none"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.Store.Backend != StoreMongo {
		t.Errorf("Store.Backend = %q, want mongo", cfg.Store.Backend)
	}
	if cfg.Store.MongoDatabase != DefaultMongoDatabase {
		t.Errorf("MongoDatabase = %q, want default applied", cfg.Store.MongoDatabase)
	}
	if cfg.Cache.Backend != CacheNone {
		t.Errorf("Cache.Backend = %q, want none", cfg.Cache.Backend)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeConfig) {
		t.Fatalf("err = %v, want CONFIG_ERROR", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STAMMBAUM_ADDR", ":7777")
	t.Setenv("STAMMBAUM_CACHE", "redis")
	t.Setenv("STAMMBAUM_REDIS_ADDR", "localhost:6379")
	t.Setenv("STAMMBAUM_REDIS_DB", "3")

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7777" {
		t.Errorf("Addr = %q, want :7777", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("redis override not applied: %+v", cfg.Cache)
	}
	if cfg.Cache.RedisDB != 3 {
		t.Errorf("RedisDB = %d, want 3", cfg.Cache.RedisDB)
	}
}

func TestValidateRejectsUnknownBackends(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad store", Config{Store: StoreConfig{Backend: "postgres"}}},
		{"bad cache", Config{Cache: CacheConfig{Backend: "memcached"}}},
		{"mongo without uri", Config{Store: StoreConfig{Backend: "mongo"}}},
		{"redis without addr", Config{Cache: CacheConfig{Backend: "redis"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeConfig) {
				t.Errorf("err = %v, want CONFIG_ERROR", err)
			}
		})
	}
}

func TestCacheDirExplicit(t *testing.T) {
	cfg := Default()
	cfg.Cache.Dir = "/tmp/custom"
	dir, err := cfg.CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/tmp/custom" {
		t.Errorf("CacheDir = %q, want /tmp/custom", dir)
	}
}
