package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/vastmap/pkg/pipeline"
	"github.com/matzehuels/vastmap/pkg/store"
)

// chdir moves into an empty directory so no stray vastmap.yaml is found.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("mode", pipeline.DefaultMode, "")
	fs.Float64("width", pipeline.DefaultWidth, "")
	fs.Float64("height", pipeline.DefaultHeight, "")
	fs.Bool("render", true, "")
	fs.String("store", store.BackendNone, "")
	fs.String("store-dir", "", "")
	fs.String("redis-url", "", "")
	fs.Duration("ttl", DefaultTTL, "")
	fs.String("addr", DefaultAddr, "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "vast.json", cfg.Input)
	assert.Equal(t, 940.0, cfg.Width)
	assert.Equal(t, 450.0, cfg.Height)
	assert.Equal(t, "aggregate", cfg.Mode)
	assert.True(t, cfg.Render)
	assert.Equal(t, store.BackendNone, cfg.Store.Backend)
	assert.Equal(t, filepath.Join("/tmp/xdg", "vastmap"), cfg.Store.Dir)
	assert.Equal(t, 24*time.Hour, cfg.Store.TTL)
	assert.Equal(t, ":8080", cfg.Serve.Addr)
	assert.Empty(t, cfg.File)
}

func TestLoadPrecedence(t *testing.T) {
	dir := chdir(t)
	yaml := "mode: size\nwidth: 800\nheight: 600\nstore:\n  backend: file\n  dir: " + dir + "\n  ttl: 1h\n"
	require.NoError(t, os.WriteFile("vastmap.yaml", []byte(yaml), 0644))

	t.Setenv("VASTMAP_HEIGHT", "300")
	t.Setenv("VASTMAP_STORE__TTL", "30m")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--mode", "count"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)

	assert.Equal(t, "vastmap.yaml", cfg.File)
	assert.Equal(t, "count", cfg.Mode, "flag beats file")
	assert.Equal(t, 800.0, cfg.Width, "file beats default")
	assert.Equal(t, 300.0, cfg.Height, "env beats file")
	assert.Equal(t, 30*time.Minute, cfg.Store.TTL, "nested env key")
	assert.Equal(t, store.BackendFile, cfg.Store.Backend)
}

func TestLoadUnchangedFlagsIgnored(t *testing.T) {
	chdir(t)
	t.Setenv("VASTMAP_MODE", "size")

	fs := testFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "size", cfg.Mode)
}

func TestLoadMappedFlags(t *testing.T) {
	chdir(t)

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{
		"--store", "redis",
		"--redis-url", "redis://localhost:6379/0",
		"--ttl", "5m",
		"--addr", "127.0.0.1:9000",
		"--render=false",
	}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, store.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.RedisURL)
	assert.Equal(t, 5*time.Minute, cfg.Store.TTL)
	assert.Equal(t, "127.0.0.1:9000", cfg.Serve.Addr)
	assert.False(t, cfg.Capabilities().HasRenderer)
}

func TestLoadExplicitFile(t *testing.T) {
	dir := chdir(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input: sizes.toml\nratio: 2\n"), 0644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)

	opts := cfg.PipelineOptions()
	assert.Equal(t, "sizes.toml", opts.Input)
	assert.Equal(t, 2.0, opts.Ratio)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdir(t)
	_, err := Load("nope.yaml", nil)
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad backend", map[string]string{"VASTMAP_STORE__BACKEND": "mongo"}, "store.backend"},
		{"redis without url", map[string]string{"VASTMAP_STORE__BACKEND": "redis"}, "redis_url"},
		{"bad mode", map[string]string{"VASTMAP_MODE": "area"}, "mode"},
		{"negative width", map[string]string{"VASTMAP_WIDTH": "-5"}, "canvas"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStoreOptions(t *testing.T) {
	cfg := Config{Store: StoreConfig{Backend: "file", Dir: "/x", Prefix: "team"}}
	assert.Equal(t, store.Options{Backend: "file", Dir: "/x", Prefix: "team"}, cfg.StoreOptions())
}
