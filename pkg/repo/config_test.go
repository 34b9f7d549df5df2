package repo

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestReadConfigMissingReturnsDefaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/work/.git", 0o755))

	cfg, err := ReadConfig(context.Background(), fsys, "/work/.git", envconfig.MapLookuper(nil))
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/work/.git", 0o755))

	want := &Config{
		Core:  CoreConfig{Compression: 9},
		Cache: CacheConfig{Objects: 0},
	}
	require.NoError(t, WriteConfig(fsys, "/work/.git", want))

	got, err := ReadConfig(context.Background(), fsys, "/work/.git", envconfig.MapLookuper(nil))
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestReadConfigPartialFileKeepsDefaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/work/.git/config.toml", []byte("[core]\ncompression = 1\n"), 0o644))

	cfg, err := ReadConfig(context.Background(), fsys, "/work/.git", envconfig.MapLookuper(nil))
	require.NoError(t, err)
	if cfg.Core.Compression != 1 {
		t.Errorf("compression = %d, want 1", cfg.Core.Compression)
	}
	if cfg.Cache.Objects != DefaultConfig().Cache.Objects {
		t.Errorf("cache.objects = %d, want default", cfg.Cache.Objects)
	}
}

func TestReadConfigEnvOverrides(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/work/.git/config.toml", []byte("[core]\ncompression = 1\n"), 0o644))

	env := envconfig.MapLookuper(map[string]string{
		"TINYGIT_COMPRESSION":   "6",
		"TINYGIT_CACHE_OBJECTS": "0",
	})
	cfg, err := ReadConfig(context.Background(), fsys, "/work/.git", env)
	require.NoError(t, err)
	if cfg.Core.Compression != 6 {
		t.Errorf("compression = %d, want 6", cfg.Core.Compression)
	}
	if cfg.Cache.Objects != 0 {
		t.Errorf("cache.objects = %d, want 0", cfg.Cache.Objects)
	}
}

func TestReadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{"level too high", "[core]\ncompression = 10\n", nil},
		{"level too low", "[core]\ncompression = -2\n", nil},
		{"negative cache", "[cache]\nobjects = -1\n", nil},
		{"bad toml", "[core\n", nil},
		{"bad env", "", map[string]string{"TINYGIT_COMPRESSION": "fast"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fsys, "/g/config.toml", []byte(tt.file), 0o644))
			_, err := ReadConfig(context.Background(), fsys, "/g", envconfig.MapLookuper(tt.env))
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestOpenUsesConfig(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, err := Init(context.Background(), fsys, "/work")
	require.NoError(t, err)

	r, err := Open(context.Background(), fsys, "/work",
		WithEnv(envconfig.MapLookuper(map[string]string{"TINYGIT_COMPRESSION": "0"})))
	require.NoError(t, err)
	if r.Config.Core.Compression != 0 {
		t.Errorf("compression = %d, want 0", r.Config.Core.Compression)
	}

	// Level 0 stores deflate "stored" blocks; the object must still round-trip.
	h, err := r.Store.WriteBlob([]byte("stored, not squeezed"))
	require.NoError(t, err)
	data, err := r.Store.ReadBlob(h)
	require.NoError(t, err)
	if string(data) != "stored, not squeezed" {
		t.Errorf("ReadBlob = %q", data)
	}
}
