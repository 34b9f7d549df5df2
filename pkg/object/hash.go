package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// HashSize is the length of a raw SHA-1 digest.
	HashSize = sha1.Size
	// HashHexSize is the length of a hex-encoded Hash.
	HashHexSize = 2 * HashSize
)

// HashObject computes the SHA-1 of the envelope "type len\0content", the
// same digest git uses as an object's name.
func HashObject(kind Kind, data []byte) Hash {
	h := sha1.New()
	h.Write(header(kind, len(data)))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// HashBlobReader hashes size bytes from r as a blob without buffering the
// whole payload.
func HashBlobReader(r io.Reader, size int64) (Hash, error) {
	h := sha1.New()
	h.Write([]byte("blob " + strconv.FormatInt(size, 10) + "\x00"))
	n, err := io.Copy(h, r)
	if err != nil {
		return "", fmt.Errorf("hash blob: %w", err)
	}
	if n != size {
		return "", fmt.Errorf("hash blob: read %d bytes, want %d", n, size)
	}
	return Hash(hex.EncodeToString(h.Sum(nil))), nil
}

// ParseHash validates a 40-character hex string and returns it lowercased.
func ParseHash(s string) (Hash, error) {
	if len(s) != HashHexSize {
		return "", fmt.Errorf("invalid hash %q: want %d hex characters", s, HashHexSize)
	}
	s = strings.ToLower(s)
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("invalid hash %q: %w", s, err)
	}
	return Hash(s), nil
}

// HashFromBytes converts a raw 20-byte digest to a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	if len(b) != HashSize {
		return "", fmt.Errorf("invalid raw hash length %d", len(b))
	}
	return Hash(hex.EncodeToString(b)), nil
}

// Bytes returns the raw 20-byte digest.
func (h Hash) Bytes() ([]byte, error) {
	if len(h) != HashHexSize {
		return nil, fmt.Errorf("invalid hash %q", string(h))
	}
	b, err := hex.DecodeString(string(h))
	if err != nil {
		return nil, fmt.Errorf("invalid hash %q: %w", string(h), err)
	}
	return b, nil
}

// String implements fmt.Stringer.
func (h Hash) String() string {
	return string(h)
}

// ObjectPath returns the slash-separated storage key for h relative to the
// store root: objects/ab/cdef0123...
func ObjectPath(h Hash) (string, error) {
	if _, err := h.Bytes(); err != nil {
		return "", err
	}
	return "objects/" + string(h[:2]) + "/" + string(h[2:]), nil
}
