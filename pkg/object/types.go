package object

import (
	"errors"
	"fmt"

	"github.com/odvcencio/tinygit/pkg/zstore"
)

// Hash is a 40-character lowercase hex-encoded SHA-1 digest.
type Hash string

// Kind identifies the type of a stored object.
type Kind string

const (
	KindBlob Kind = "blob"
	KindTree Kind = "tree"
)

// ParseKind maps a header tag to a Kind. Unknown tags are an error rather
// than a silent default.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBlob, KindTree:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w: unknown object type %q", ErrDecode, s)
	}
}

const (
	// Tree mode constants.
	TreeModeDir  = "040000"
	TreeModeFile = "100644"

	// gitTreeModeDir is how git itself writes directory modes.
	gitTreeModeDir = "40000"
)

var (
	ErrNotFound     = errors.New("object not found")
	ErrDecode       = errors.New("malformed object")
	ErrKindMismatch = errors.New("object type mismatch")

	ErrIO          = zstore.ErrIO
	ErrCompression = zstore.ErrCompression
)

// Object is one immutable typed record. Its identity is the hash of its
// serialized form.
type Object struct {
	Kind Kind
	Body []byte
}

// NewBlob wraps file content as a blob object.
func NewBlob(data []byte) *Object {
	return &Object{Kind: KindBlob, Body: data}
}

// Size is the body length in bytes.
func (o *Object) Size() int {
	return len(o.Body)
}

// Hash returns the content hash of the serialized object.
func (o *Object) Hash() Hash {
	return HashObject(o.Kind, o.Body)
}

// TreeEntry is one entry in a tree object.
type TreeEntry struct {
	Mode string
	Name string
	Hash Hash
}

// IsDir reports whether the entry references a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == TreeModeDir
}

// Tree is a directory listing. Entries are kept in insertion order and
// sorted by name only when encoded.
type Tree struct {
	Entries []TreeEntry
}

// Add appends an entry.
func (t *Tree) Add(mode, name string, h Hash) {
	t.Entries = append(t.Entries, TreeEntry{Mode: mode, Name: name, Hash: h})
}
