package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Test 1: Init creates .git/ structure (HEAD, objects/, refs/heads/, config).
func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()

	r, err := Init(context.Background(), afero.NewOsFs(), dir, WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatalf("Init(%q): %v", dir, err)
	}
	if r.RootDir != dir {
		t.Errorf("RootDir = %q, want %q", r.RootDir, dir)
	}

	gitDir := filepath.Join(dir, ".git")
	if r.GitDir != gitDir {
		t.Errorf("GitDir = %q, want %q", r.GitDir, gitDir)
	}

	assertDir(t, gitDir)
	assertFile(t, filepath.Join(gitDir, "HEAD"))
	assertFile(t, filepath.Join(gitDir, ConfigFileName))
	assertDir(t, filepath.Join(gitDir, "objects"))
	assertDir(t, filepath.Join(gitDir, "refs", "heads"))

	if r.Store == nil {
		t.Error("Store is nil after Init")
	}
}

// Test 2: Init on existing repo returns error.
func TestInit_ExistingRepo_Error(t *testing.T) {
	fsys := afero.NewMemMapFs()

	_, err := Init(context.Background(), fsys, "/work")
	require.NoError(t, err)

	if _, err := Init(context.Background(), fsys, "/work"); err == nil {
		t.Fatal("second Init should fail on existing repo, got nil error")
	}
}

// Test 3: Open finds .git/ from subdirectory.
func TestOpen_FromSubdirectory(t *testing.T) {
	fsys := afero.NewMemMapFs()

	_, err := Init(context.Background(), fsys, "/work")
	require.NoError(t, err)

	sub := "/work/a/b/c"
	require.NoError(t, fsys.MkdirAll(sub, 0o755))

	r, err := Open(context.Background(), fsys, sub)
	if err != nil {
		t.Fatalf("Open(%q): %v", sub, err)
	}
	if r.RootDir != "/work" {
		t.Errorf("RootDir = %q, want %q", r.RootDir, "/work")
	}
	if r.GitDir != "/work/.git" {
		t.Errorf("GitDir = %q, want %q", r.GitDir, "/work/.git")
	}
	if r.Store == nil {
		t.Error("Store is nil after Open")
	}
}

// Test 4: Open in non-repo directory returns error.
func TestOpen_NoRepo_Error(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/plain/dir", 0o755))

	if _, err := Open(context.Background(), fsys, "/plain/dir"); err == nil {
		t.Fatal("Open should fail in non-repo directory, got nil error")
	}
}

// Test 5: HEAD defaults to "ref: refs/heads/main".
func TestInit_HeadDefault(t *testing.T) {
	r, err := Init(context.Background(), afero.NewMemMapFs(), "/work")
	require.NoError(t, err)

	ref, err := r.Head()
	if err != nil {
		t.Fatalf("Head(): %v", err)
	}
	if ref != "refs/heads/main" {
		t.Errorf("Head() = %q, want %q", ref, "refs/heads/main")
	}
}

// Test 6: objects written through an opened repo land on the shared fs.
func TestOpen_StoreRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	r1, err := Init(context.Background(), fsys, "/work")
	require.NoError(t, err)

	h, err := r1.Store.WriteBlob([]byte("what is up, doc?"))
	require.NoError(t, err)

	r2, err := Open(context.Background(), fsys, "/work")
	require.NoError(t, err)
	data, err := r2.Store.ReadBlob(h)
	require.NoError(t, err)
	if string(data) != "what is up, doc?" {
		t.Errorf("ReadBlob = %q", data)
	}

	ok, err := afero.Exists(fsys, "/work/.git/objects/bd/9dbf5aae1a3862dd1526723246b20206e5fc37")
	require.NoError(t, err)
	if !ok {
		t.Error("expected loose object under .git/objects")
	}
}

// helpers

func assertDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory %q to exist: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("%q exists but is not a directory", path)
	}
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected file %q to exist: %v", path, err)
		return
	}
	if info.IsDir() {
		t.Errorf("%q exists but is a directory, expected file", path)
	}
}
