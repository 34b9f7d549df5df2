// Package zstore reads and writes zlib-compressed files. It knows nothing
// about what the bytes mean; callers hand it a relative path and a payload.
package zstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/klauspost/compress/zlib"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

var (
	// ErrIO marks filesystem failures (missing files, permissions, short writes).
	ErrIO = errors.New("io error")
	// ErrCompression marks a stream that is not valid zlib data.
	ErrCompression = errors.New("corrupt compressed stream")
)

// Store is a compressed byte store rooted at a directory of an afero.Fs.
type Store struct {
	fs    afero.Fs
	root  string
	level int
}

// Option configures a Store.
type Option func(*Store)

// WithLevel sets the zlib compression level. Out-of-range levels are
// rejected by New.
func WithLevel(level int) Option {
	return func(s *Store) {
		s.level = level
	}
}

// New creates a Store rooted at root on fsys. Directories are created lazily
// on first write.
func New(fsys afero.Fs, root string, opts ...Option) (*Store, error) {
	s := &Store{
		fs:    fsys,
		root:  root,
		level: zlib.DefaultCompression,
	}
	for _, o := range opts {
		o(s)
	}
	if s.level < zlib.HuffmanOnly || s.level > zlib.BestCompression {
		return nil, fmt.Errorf("zstore: invalid compression level %d", s.level)
	}
	return s, nil
}

// Root returns the directory all paths are resolved against.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) fullPath(p string) string {
	return filepath.Join(s.root, filepath.FromSlash(p))
}

// Exists reports whether a file is present at p.
func (s *Store) Exists(p string) (bool, error) {
	ok, err := afero.Exists(s.fs, s.fullPath(p))
	if err != nil {
		return false, fmt.Errorf("zstore stat %s: %w: %w", p, ErrIO, err)
	}
	return ok, nil
}

// Write compresses data and stores it at p. The file is written to a temp
// file in the destination directory and renamed into place, so readers never
// observe a partial file.
func (s *Store) Write(p string, data []byte) error {
	compressed, err := s.compress(data)
	if err != nil {
		return fmt.Errorf("zstore write %s: %w", p, err)
	}

	dest := s.fullPath(p)
	dir := filepath.Dir(dest)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("zstore write %s: mkdir: %w: %w", p, ErrIO, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("zstore write %s: tmpfile: %w: %w", p, ErrIO, err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(compressed)
	err = multierr.Append(err, tmp.Close())
	if err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("zstore write %s: %w: %w", p, ErrIO, err)
	}

	if err := s.fs.Rename(tmpName, dest); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("zstore write %s: rename: %w: %w", p, ErrIO, err)
	}
	return nil
}

// Read loads the file at p and inflates it. A missing file yields an error
// matching both ErrIO and fs.ErrNotExist.
func (s *Store) Read(p string) ([]byte, error) {
	raw, err := afero.ReadFile(s.fs, s.fullPath(p))
	if err != nil {
		return nil, fmt.Errorf("zstore read %s: %w: %w", p, ErrIO, err)
	}
	data, err := decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("zstore read %s: %w", p, err)
	}
	return data, nil
}

func (s *Store) compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, s.level)
	if err != nil {
		return nil, err
	}
	_, err = zw.Write(data)
	if err = multierr.Append(err, zw.Close()); err != nil {
		return nil, fmt.Errorf("deflate: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(raw []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompression, err)
	}
	data, err := io.ReadAll(zr)
	if err = multierr.Append(err, zr.Close()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompression, err)
	}
	return data, nil
}

// IsNotExist reports whether err came from reading a file that is absent.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
