// Package config loads vastmap settings from defaults, an optional
// vastmap.yaml, VASTMAP_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/matzehuels/vastmap/pkg/pipeline"
	"github.com/matzehuels/vastmap/pkg/store"
)

const (
	appName = "vastmap"

	// EnvPrefix prefixes environment overrides. A double underscore separates
	// nesting levels: VASTMAP_STORE__REDIS_URL sets store.redis_url.
	EnvPrefix = "VASTMAP_"

	// DefaultTTL is how long published documents are kept.
	DefaultTTL = 24 * time.Hour

	// DefaultAddr is the listen address of `vastmap serve`.
	DefaultAddr = ":8080"
)

// configFiles are looked up in the working directory, in order.
var configFiles = []string{"vastmap.yaml", "vastmap.yml"}

// flagKeys maps flag names that differ from their config key.
var flagKeys = map[string]string{
	"store":     "store.backend",
	"store-dir": "store.dir",
	"redis-url": "store.redis_url",
	"ttl":       "store.ttl",
	"addr":      "serve.addr",
}

// Config is the resolved configuration.
type Config struct {
	Input  string      `koanf:"input"`
	Width  float64     `koanf:"width"`
	Height float64     `koanf:"height"`
	Ratio  float64     `koanf:"ratio"`
	Mode   string      `koanf:"mode"`
	Render bool        `koanf:"render"`
	Store  StoreConfig `koanf:"store"`
	Serve  ServeConfig `koanf:"serve"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// StoreConfig selects the document store used by --publish and serve.
type StoreConfig struct {
	Backend  string        `koanf:"backend"`
	Dir      string        `koanf:"dir"`
	RedisURL string        `koanf:"redis_url"`
	Prefix   string        `koanf:"prefix"`
	TTL      time.Duration `koanf:"ttl"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr string `koanf:"addr"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]interface{} {
	dir, err := storeDir()
	if err != nil {
		dir = filepath.Join(os.TempDir(), appName)
	}
	return map[string]interface{}{
		"input":         pipeline.DefaultInput,
		"width":         pipeline.DefaultWidth,
		"height":        pipeline.DefaultHeight,
		"ratio":         0.0,
		"mode":          pipeline.DefaultMode,
		"render":        true,
		"store.backend": store.BackendNone,
		"store.dir":     dir,
		"store.ttl":     DefaultTTL.String(),
		"serve.addr":    DefaultAddr,
	}
}

// Load reads configuration. Precedence, highest first: flags that were
// explicitly set, environment, config file, defaults. An empty cfgFile
// searches the working directory.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	path := findConfigFile(cfgFile)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment: VASTMAP_STORE__REDIS_URL -> store.redis_url
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that the pipeline and store cannot check later.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case store.BackendNone, store.BackendFile:
	case store.BackendRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid store.backend: %q (must be one of: none, file, redis)", c.Store.Backend)
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("store.ttl must not be negative")
	}
	if c.Store.Backend == store.BackendFile && c.Store.Dir == "" {
		return fmt.Errorf("store.dir is required for the file backend")
	}
	opts := c.PipelineOptions()
	return opts.ValidateAndSetDefaults()
}

// PipelineOptions returns the pipeline options for this configuration.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Input:  c.Input,
		Mode:   c.Mode,
		Width:  c.Width,
		Height: c.Height,
		Ratio:  c.Ratio,
	}
}

// Capabilities returns the host capabilities enabled by this configuration.
func (c *Config) Capabilities() pipeline.Capabilities {
	return pipeline.Capabilities{HasRenderer: c.Render}
}

// StoreOptions returns the document store options.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:  c.Store.Backend,
		Dir:      c.Store.Dir,
		RedisURL: c.Store.RedisURL,
		Prefix:   c.Store.Prefix,
	}
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// storeDir returns the file store directory using the XDG standard
// (~/.cache/vastmap/).
func storeDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
