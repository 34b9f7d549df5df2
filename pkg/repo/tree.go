package repo

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"

	"github.com/odvcencio/tinygit/pkg/object"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// ObjectWriter persists blobs and trees and returns their hashes.
// *object.Store satisfies it.
type ObjectWriter interface {
	WriteBlob(data []byte) (object.Hash, error)
	WriteTree(t *object.Tree) (object.Hash, error)
}

// TreeBuilder snapshots a directory into blob and tree objects.
type TreeBuilder struct {
	fs      afero.Fs
	objects ObjectWriter
	log     *zap.Logger
}

// NewTreeBuilder returns a builder that reads from fsys and writes every
// object it produces to w.
func NewTreeBuilder(fsys afero.Fs, w ObjectWriter, log *zap.Logger) *TreeBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	return &TreeBuilder{fs: fsys, objects: w, log: log}
}

// Build walks dir depth-first, writing a blob for every regular file and a
// tree for every directory, and returns the hash of the tree for dir itself.
// Directories named .git are skipped; a regular file named .git is kept. Any unreadable entry aborts the build.
func (b *TreeBuilder) Build(dir string) (object.Hash, error) {
	return b.buildDir(dir)
}

func (b *TreeBuilder) buildDir(dir string) (object.Hash, error) {
	infos, err := afero.ReadDir(b.fs, dir)
	if err != nil {
		return "", fmt.Errorf("build tree %s: %w: %w", dir, object.ErrIO, err)
	}

	// Traversal order follows full paths. The encoded order is re-derived
	// from entry names by the tree codec.
	sort.Slice(infos, func(i, j int) bool {
		return filepath.Join(dir, infos[i].Name()) < filepath.Join(dir, infos[j].Name())
	})

	var tree object.Tree
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() && name == MetaDirName {
			continue
		}
		child := filepath.Join(dir, name)

		switch mode := info.Mode(); {
		case mode.IsDir():
			h, err := b.buildDir(child)
			if err != nil {
				return "", err
			}
			tree.Add(object.TreeModeDir, name, h)
		case mode.IsRegular():
			h, err := b.writeBlob(child)
			if err != nil {
				return "", err
			}
			tree.Add(object.TreeModeFile, name, h)
		default:
			return "", fmt.Errorf("build tree %s: %w: unsupported file type %s", child, object.ErrIO, mode.Type())
		}
	}

	h, err := b.objects.WriteTree(&tree)
	if err != nil {
		return "", fmt.Errorf("write tree %s: %w", dir, err)
	}
	b.log.Debug("wrote tree",
		zap.String("path", dir),
		zap.Stringer("hash", h),
		zap.Int("entries", len(tree.Entries)),
	)
	return h, nil
}

func (b *TreeBuilder) writeBlob(p string) (object.Hash, error) {
	data, err := afero.ReadFile(b.fs, p)
	if err != nil {
		return "", fmt.Errorf("read %s: %w: %w", p, object.ErrIO, err)
	}
	h, err := b.objects.WriteBlob(data)
	if err != nil {
		return "", fmt.Errorf("write blob %s: %w", p, err)
	}
	b.log.Debug("wrote blob", zap.String("path", p), zap.Stringer("hash", h), zap.Int("size", len(data)))
	return h, nil
}

// BuildTree snapshots dir into the repository's object store.
func (r *Repo) BuildTree(dir string) (object.Hash, error) {
	return NewTreeBuilder(r.FS, r.Store, r.Log.Named("tree")).Build(dir)
}

// WriteTree snapshots the whole working tree.
func (r *Repo) WriteTree() (object.Hash, error) {
	return r.BuildTree(r.RootDir)
}

// TreeFileEntry is one entry of a listed tree.
type TreeFileEntry struct {
	Path string
	Mode string
	Kind object.Kind
	Hash object.Hash
}

// ListTree reads the tree h. Without recursion it returns the immediate
// entries; with recursion it returns every blob beneath h with its full
// slash-separated path.
func (r *Repo) ListTree(h object.Hash, recursive bool) ([]TreeFileEntry, error) {
	return r.listTreeRec(h, "", recursive)
}

func (r *Repo) listTreeRec(h object.Hash, prefix string, recursive bool) ([]TreeFileEntry, error) {
	tree, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("list tree: read %s: %w", h, err)
	}

	var result []TreeFileEntry
	for _, entry := range tree.Entries {
		fullPath := entry.Name
		if prefix != "" {
			fullPath = path.Join(prefix, entry.Name)
		}

		if entry.IsDir() && recursive {
			sub, err := r.listTreeRec(entry.Hash, fullPath, true)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
			continue
		}

		kind := object.KindBlob
		if entry.IsDir() {
			kind = object.KindTree
		}
		result = append(result, TreeFileEntry{
			Path: fullPath,
			Mode: entry.Mode,
			Kind: kind,
			Hash: entry.Hash,
		})
	}
	return result, nil
}
