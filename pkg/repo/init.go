package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/odvcencio/tinygit/pkg/object"
	"github.com/odvcencio/tinygit/pkg/zstore"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const defaultHead = "ref: refs/heads/main\n"

// Init creates a new repository at path. It creates the .git/ directory
// structure: HEAD, objects/, refs/ and a default config.toml. Returns an
// error if a .git/ directory already exists.
func Init(ctx context.Context, fsys afero.Fs, path string, opts ...Option) (*Repo, error) {
	gitDir := filepath.Join(path, MetaDirName)

	exists, err := afero.Exists(fsys, gitDir)
	if err != nil {
		return nil, fmt.Errorf("init: stat %s: %w", gitDir, err)
	}
	if exists {
		return nil, fmt.Errorf("init: repository already exists at %s", gitDir)
	}

	dirs := []string{
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := fsys.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	headPath := filepath.Join(gitDir, "HEAD")
	if err := afero.WriteFile(fsys, headPath, []byte(defaultHead), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}
	if err := WriteConfig(fsys, gitDir, DefaultConfig()); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	return open(ctx, fsys, path, gitDir, buildOptions(opts))
}

// Open searches upward from path for a .git/ directory and opens the
// repository. Returns an error if no .git/ directory is found.
func Open(ctx context.Context, fsys afero.Fs, path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitDir := filepath.Join(cur, MetaDirName)
		ok, err := afero.IsDir(fsys, gitDir)
		if err == nil && ok {
			return open(ctx, fsys, cur, gitDir, buildOptions(opts))
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: not a repository (or any parent up to /)")
		}
		cur = parent
	}
}

func open(ctx context.Context, fsys afero.Fs, root, gitDir string, o *options) (*Repo, error) {
	cfg, err := ReadConfig(ctx, fsys, gitDir, o.env)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	files, err := zstore.New(fsys, gitDir, zstore.WithLevel(cfg.Core.Compression))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	store, err := object.NewStore(files,
		object.WithCache(cfg.Cache.Objects),
		object.WithLogger(o.log.Named("store")),
	)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	o.log.Debug("opened repository",
		zap.String("root", root),
		zap.Int("compression", cfg.Core.Compression),
		zap.Int("cache_objects", cfg.Cache.Objects),
	)
	return &Repo{
		RootDir: root,
		GitDir:  gitDir,
		FS:      fsys,
		Config:  cfg,
		Store:   store,
		Log:     o.log,
	}, nil
}

// Head reads .git/HEAD. If the content starts with "ref: ", it returns the
// ref path (e.g., "refs/heads/main"). Otherwise it returns the raw content.
func (r *Repo) Head() (string, error) {
	data, err := afero.ReadFile(r.FS, filepath.Join(r.GitDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")
	return strings.TrimPrefix(content, "ref: "), nil
}
