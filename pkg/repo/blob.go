package repo

import (
	"fmt"

	"github.com/odvcencio/tinygit/pkg/object"
	"github.com/spf13/afero"
)

// HashFile computes the blob hash of the file at p. When write is set the
// blob is also stored.
func (r *Repo) HashFile(p string, write bool) (object.Hash, error) {
	if !write {
		f, err := r.FS.Open(p)
		if err != nil {
			return "", fmt.Errorf("hash file: %w: %w", object.ErrIO, err)
		}
		defer f.Close()
		info, err := f.Stat()
		if err != nil {
			return "", fmt.Errorf("hash file: %w: %w", object.ErrIO, err)
		}
		if !info.Mode().IsRegular() {
			return "", fmt.Errorf("hash file %s: not a regular file", p)
		}
		return object.HashBlobReader(f, info.Size())
	}

	data, err := afero.ReadFile(r.FS, p)
	if err != nil {
		return "", fmt.Errorf("hash file: %w: %w", object.ErrIO, err)
	}
	return r.Store.WriteBlob(data)
}
