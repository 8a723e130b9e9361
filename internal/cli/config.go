package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/RCBiczok/terraces/pkg/cache"
	"github.com/RCBiczok/terraces/pkg/session"
)

// Config holds the optional settings read from the TOML config file.
type Config struct {
	// CompressThreshold gates leaf-set compression during a scan.
	// Zero keeps the engine default.
	CompressThreshold int `toml:"compress_threshold"`

	Cache   CacheConfig   `toml:"cache"`
	History HistoryConfig `toml:"history"`
}

// CacheConfig selects the analysis result cache backend.
type CacheConfig struct {
	Backend  string      `toml:"backend"` // none | file | redis
	Dir      string      `toml:"dir"`
	TTLHours int         `toml:"ttl_hours"` // parsed but not applied: results are cached without expiry
	Redis    RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// HistoryConfig selects the run history backend.
type HistoryConfig struct {
	Backend string      `toml:"backend"` // none | file | mongo
	Dir     string      `toml:"dir"`
	Mongo   MongoConfig `toml:"mongo"`
}

// MongoConfig configures the mongo history backend.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// defaultConfig is used when no config file exists.
func defaultConfig() *Config {
	return &Config{
		Cache:   CacheConfig{Backend: "file"},
		History: HistoryConfig{Backend: "file"},
	}
}

// defaultConfigPath returns ~/.config/terraces/config.toml.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "terraces", "config.toml"), nil
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing file at the default location is not an error;
// a missing file at an explicit path is.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return defaultConfig(), nil
		}
	}

	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// cacheDir returns the analysis result cache directory.
func cacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return filepath.Join(base, "terraces"), nil
}

// openCache constructs the configured cache backend.
func openCache(ctx context.Context, cfg *Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "", "none":
		return cache.NewNullCache(), nil
	case "file":
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// openStore constructs the configured run history backend.
// A "none" backend yields a nil store, which disables history.
func openStore(ctx context.Context, cfg *Config) (session.Store, error) {
	switch cfg.History.Backend {
	case "", "none":
		return nil, nil
	case "file":
		return session.NewFileStore(cfg.History.Dir)
	case "mongo":
		return session.NewMongoStore(ctx, session.MongoConfig{
			URI:      cfg.History.Mongo.URI,
			Database: cfg.History.Mongo.Database,
		})
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}
