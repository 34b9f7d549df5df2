package repo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/klauspost/compress/zlib"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/afero"
)

// ConfigFileName is the config file inside the metadata directory.
const ConfigFileName = "config.toml"

// Config stores repository-local settings. Values come from config.toml and
// may be overridden by TINYGIT_* environment variables.
type Config struct {
	Core  CoreConfig  `toml:"core"`
	Cache CacheConfig `toml:"cache"`
}

// CoreConfig controls how objects are written.
type CoreConfig struct {
	// Compression is the zlib level for new objects, -1 (default) through 9.
	Compression int `toml:"compression" env:"TINYGIT_COMPRESSION, overwrite"`
}

// CacheConfig sizes in-memory caches.
type CacheConfig struct {
	// Objects is the number of decoded objects kept in memory. 0 disables
	// the cache.
	Objects int `toml:"objects" env:"TINYGIT_CACHE_OBJECTS, overwrite"`
}

// DefaultConfig returns the settings written by Init.
func DefaultConfig() *Config {
	return &Config{
		Core:  CoreConfig{Compression: zlib.DefaultCompression},
		Cache: CacheConfig{Objects: 256},
	}
}

// Validate rejects settings the store cannot honor.
func (c *Config) Validate() error {
	if c.Core.Compression < zlib.DefaultCompression || c.Core.Compression > zlib.BestCompression {
		return fmt.Errorf("core.compression must be between %d and %d, got %d",
			zlib.DefaultCompression, zlib.BestCompression, c.Core.Compression)
	}
	if c.Cache.Objects < 0 {
		return fmt.Errorf("cache.objects must not be negative, got %d", c.Cache.Objects)
	}
	return nil
}

func configPath(gitDir string) string {
	return filepath.Join(gitDir, ConfigFileName)
}

// ReadConfig loads gitDir/config.toml on top of the defaults, then applies
// environment overrides from env. A missing file yields the defaults.
func ReadConfig(ctx context.Context, fsys afero.Fs, gitDir string, env envconfig.Lookuper) (*Config, error) {
	cfg := DefaultConfig()

	data, err := afero.ReadFile(fsys, configPath(gitDir))
	switch {
	case err == nil:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("read config: decode: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if env != nil {
		if err := envconfig.ProcessWith(ctx, &envconfig.Config{
			Target:   cfg,
			Lookuper: env,
		}); err != nil {
			return nil, fmt.Errorf("read config: env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// WriteConfig atomically writes gitDir/config.toml.
func WriteConfig(fsys afero.Fs, gitDir string, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: marshal: %w", err)
	}

	tmp, err := afero.TempFile(fsys, gitDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		fsys.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		fsys.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := fsys.Rename(tmpName, configPath(gitDir)); err != nil {
		fsys.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}
