// Package config loads the stammbaum configuration from a TOML file with
// environment-variable overrides.
//
// Lookup order: explicit --config path, $STAMMBAUM_CONFIG, then
// ~/.config/stammbaum/config.toml. A missing file yields the defaults; a
// malformed one is a CONFIG_ERROR.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stammbaum/pkg/errors"
)

const appName = "stammbaum"

// Defaults.
const (
	DefaultAddr          = ":8321"
	DefaultStoreBackend  = "memory"
	DefaultCacheBackend  = "file"
	DefaultMongoDatabase = "stammbaum"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `toml:"addr"`
}

// StoreConfig selects and configures the family store backend.
type StoreConfig struct {
	// Backend is "memory" or "mongo".
	Backend string `toml:"backend"`

	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// CacheConfig selects and configures the snapshot/artifact cache backend.
type CacheConfig struct {
	// Backend is "file", "redis", or "none".
	Backend string `toml:"backend"`

	// Dir is the file-cache directory. Empty means the XDG cache dir.
	Dir string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	_ = cfg.ValidateAndSetDefaults()
	return cfg
}

// Load reads the configuration. path may be empty, in which case the
// default locations are tried; a missing file is not an error. Environment
// overrides are applied after the file, so they win.
func Load(path string) (Config, error) {
	var cfg Config

	resolved, explicit := resolvePath(path)
	if resolved != "" {
		if _, err := toml.DecodeFile(resolved, &cfg); err != nil {
			if !os.IsNotExist(err) || explicit {
				return Config{}, errors.Wrap(errors.ErrCodeConfig, err, "load config %s", resolved)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ValidateAndSetDefaults fills zero fields and rejects unknown backends.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultStoreBackend
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Store.MongoDatabase == "" {
		c.Store.MongoDatabase = DefaultMongoDatabase
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeConfig, "store backend mongo requires mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeConfig, "unknown store backend %q (memory, mongo)", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeConfig, "cache backend redis requires redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeConfig, "unknown cache backend %q (file, redis, none)", c.Cache.Backend)
	}
	return nil
}

// CacheDir returns the file-cache directory, defaulting to the XDG cache
// location (~/.cache/stammbaum).
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeConfig, err, "resolve cache dir")
	}
	return filepath.Join(home, ".cache", appName), nil
}

// applyEnv overrides fields from STAMMBAUM_* environment variables.
func (c *Config) applyEnv() {
	setString(&c.Server.Addr, "STAMMBAUM_ADDR")
	setString(&c.Store.Backend, "STAMMBAUM_STORE")
	setString(&c.Store.MongoURI, "STAMMBAUM_MONGO_URI")
	setString(&c.Store.MongoDatabase, "STAMMBAUM_MONGO_DATABASE")
	setString(&c.Cache.Backend, "STAMMBAUM_CACHE")
	setString(&c.Cache.Dir, "STAMMBAUM_CACHE_DIR")
	setString(&c.Cache.RedisAddr, "STAMMBAUM_REDIS_ADDR")
	setString(&c.Cache.RedisPassword, "STAMMBAUM_REDIS_PASSWORD")
	setInt(&c.Cache.RedisDB, "STAMMBAUM_REDIS_DB")
}

// resolvePath picks the config file location. The second return reports
// whether the caller named it explicitly (missing explicit files are errors).
func resolvePath(path string) (string, bool) {
	if path != "" {
		return path, true
	}
	if env := os.Getenv("STAMMBAUM_CONFIG"); env != "" {
		return env, true
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appName, "config.toml"), false
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
