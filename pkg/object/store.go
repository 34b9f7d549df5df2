package object

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/odvcencio/tinygit/pkg/zstore"
	"go.uber.org/zap"
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123... Each file holds the
// zlib-compressed "type len\0content" envelope.
type Store struct {
	files *zstore.Store
	cache *lru.Cache[Hash, *Object]
	log   *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store) error

// WithCache keeps up to size decoded objects in memory. Size 0 disables
// caching.
func WithCache(size int) StoreOption {
	return func(s *Store) error {
		if size <= 0 {
			s.cache = nil
			return nil
		}
		c, err := lru.New[Hash, *Object](size)
		if err != nil {
			return fmt.Errorf("object cache: %w", err)
		}
		s.cache = c
		return nil
	}
}

// WithLogger sets the logger used for store operations.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) error {
		s.log = l
		return nil
	}
}

// NewStore creates a Store on top of a compressed file store whose root is
// the metadata directory (the parent of objects/).
func NewStore(files *zstore.Store, opts ...StoreOption) (*Store, error) {
	s := &Store{files: files, log: zap.NewNop()}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.log = s.log.With(zap.String("root", files.Root()))
	return s, nil
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) (bool, error) {
	p, err := ObjectPath(h)
	if err != nil {
		return false, err
	}
	return s.files.Exists(p)
}

// Write stores an object and returns its content hash. Writing an object
// that is already present is a no-op.
func (s *Store) Write(o *Object) (Hash, error) {
	if _, err := ParseKind(string(o.Kind)); err != nil {
		return "", fmt.Errorf("object write: %w", err)
	}
	h := o.Hash()
	p, err := ObjectPath(h)
	if err != nil {
		return "", err
	}

	exists, err := s.files.Exists(p)
	if err != nil {
		return "", fmt.Errorf("object write %s: %w", h, err)
	}
	if exists {
		s.log.Debug("object already stored", zap.Stringer("hash", h), zap.String("kind", string(o.Kind)))
		return h, nil
	}

	if err := s.files.Write(p, Serialize(o.Kind, o.Body)); err != nil {
		return "", fmt.Errorf("object write %s: %w", h, err)
	}
	s.log.Debug("object stored",
		zap.Stringer("hash", h),
		zap.String("kind", string(o.Kind)),
		zap.Int("size", o.Size()),
	)
	return h, nil
}

// Read retrieves an object by hash. The returned object may be shared with
// the cache and must not be modified.
func (s *Store) Read(h Hash) (*Object, error) {
	if s.cache != nil {
		if o, ok := s.cache.Get(h); ok {
			return o, nil
		}
	}

	o, err := s.load(h)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Add(h, o)
	}
	return o, nil
}

// load reads and decodes h from disk, bypassing the cache.
func (s *Store) load(h Hash) (*Object, error) {
	p, err := ObjectPath(h)
	if err != nil {
		return nil, fmt.Errorf("object read: %w", err)
	}
	raw, err := s.files.Read(p)
	if err != nil {
		if zstore.IsNotExist(err) {
			return nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
		}
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	o, err := Deserialize(raw)
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return o, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// WriteBlob stores data as a blob.
func (s *Store) WriteBlob(data []byte) (Hash, error) {
	return s.Write(NewBlob(data))
}

// ReadBlob reads a blob and returns a copy of its content that the caller
// owns.
func (s *Store) ReadBlob(h Hash) ([]byte, error) {
	o, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if o.Kind != KindBlob {
		return nil, fmt.Errorf("object %s: %w: got %q, want %q", h, ErrKindMismatch, o.Kind, KindBlob)
	}
	return append([]byte(nil), o.Body...), nil
}

// WriteTree encodes and stores a Tree.
func (s *Store) WriteTree(t *Tree) (Hash, error) {
	o, err := MarshalTree(t)
	if err != nil {
		return "", err
	}
	return s.Write(o)
}

// ReadTree reads and decodes a Tree.
func (s *Store) ReadTree(h Hash) (*Tree, error) {
	o, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	t, err := UnmarshalTree(o)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	return t, nil
}

// IsNotFound reports whether err means the object is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
