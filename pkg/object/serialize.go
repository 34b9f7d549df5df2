package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Envelope
// ---------------------------------------------------------------------------

func header(kind Kind, size int) []byte {
	return []byte(string(kind) + " " + strconv.Itoa(size) + "\x00")
}

// Serialize returns the canonical "type len\0content" form of an object.
func Serialize(kind Kind, body []byte) []byte {
	h := header(kind, len(body))
	out := make([]byte, 0, len(h)+len(body))
	out = append(out, h...)
	return append(out, body...)
}

// Deserialize parses the canonical form produced by Serialize. The header
// length must match the body exactly.
func Deserialize(raw []byte) (*Object, error) {
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return nil, fmt.Errorf("%w: invalid format (no NUL)", ErrDecode)
	}
	hdr := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	parts := strings.Fields(hdr)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: invalid header %q", ErrDecode, hdr)
	}
	kind, err := ParseKind(parts[0])
	if err != nil {
		return nil, err
	}
	length, err := strconv.ParseUint(parts[1], 10, 63)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid length %q: %w", ErrDecode, parts[1], err)
	}
	if uint64(len(content)) != length {
		return nil, fmt.Errorf("%w: length mismatch (header=%d, actual=%d)", ErrDecode, length, len(content))
	}

	body := make([]byte, len(content))
	copy(body, content)
	return &Object{Kind: kind, Body: body}, nil
}

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// EncodeTree serializes entries into a tree body. Entries are sorted by the
// raw bytes of Name, whatever order they were added in. Each entry is:
//
//	<mode> <name>\0<20 raw hash bytes>
func EncodeTree(entries []TreeEntry) ([]byte, error) {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for i, e := range sorted {
		if err := validateEntryName(e.Name); err != nil {
			return nil, fmt.Errorf("encode tree: %w", err)
		}
		if i > 0 && sorted[i-1].Name == e.Name {
			return nil, fmt.Errorf("encode tree: duplicate entry %q", e.Name)
		}
		if e.Mode != TreeModeFile && e.Mode != TreeModeDir {
			return nil, fmt.Errorf("encode tree: entry %q: unknown mode %q", e.Name, e.Mode)
		}
		raw, err := e.Hash.Bytes()
		if err != nil {
			return nil, fmt.Errorf("encode tree: entry %q: %w", e.Name, err)
		}
		buf.WriteString(e.Mode)
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

// DecodeTree parses a tree body into entries, in stored order.
func DecodeTree(body []byte) ([]TreeEntry, error) {
	var entries []TreeEntry
	for len(body) > 0 {
		nulIdx := bytes.IndexByte(body, 0)
		if nulIdx < 0 {
			return nil, fmt.Errorf("%w: tree entry %d: missing NUL", ErrDecode, len(entries))
		}
		mode, name, ok := strings.Cut(string(body[:nulIdx]), " ")
		if !ok {
			return nil, fmt.Errorf("%w: tree entry %d: no space in %q", ErrDecode, len(entries), body[:nulIdx])
		}
		mode, err := parseTreeMode(mode)
		if err != nil {
			return nil, fmt.Errorf("%w: tree entry %d: %w", ErrDecode, len(entries), err)
		}
		if !utf8.ValidString(name) {
			return nil, fmt.Errorf("%w: tree entry %d: name is not valid UTF-8", ErrDecode, len(entries))
		}
		body = body[nulIdx+1:]
		if len(body) < HashSize {
			return nil, fmt.Errorf("%w: tree entry %q: truncated hash (%d of %d bytes)", ErrDecode, name, len(body), HashSize)
		}
		h, err := HashFromBytes(body[:HashSize])
		if err != nil {
			return nil, fmt.Errorf("%w: tree entry %q: %w", ErrDecode, name, err)
		}
		body = body[HashSize:]
		entries = append(entries, TreeEntry{Mode: mode, Name: name, Hash: h})
	}
	return entries, nil
}

// MarshalTree encodes t as a tree object ready to be written.
func MarshalTree(t *Tree) (*Object, error) {
	body, err := EncodeTree(t.Entries)
	if err != nil {
		return nil, err
	}
	return &Object{Kind: KindTree, Body: body}, nil
}

// UnmarshalTree decodes a tree object.
func UnmarshalTree(o *Object) (*Tree, error) {
	if o.Kind != KindTree {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrKindMismatch, o.Kind, KindTree)
	}
	entries, err := DecodeTree(o.Body)
	if err != nil {
		return nil, err
	}
	return &Tree{Entries: entries}, nil
}

func validateEntryName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty entry name")
	case name == "." || name == "..":
		return fmt.Errorf("invalid entry name %q", name)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("entry name %q contains a separator", name)
	case !utf8.ValidString(name):
		return fmt.Errorf("entry name %q is not valid UTF-8", name)
	}
	return nil
}

func parseTreeMode(mode string) (string, error) {
	switch mode {
	case TreeModeDir, gitTreeModeDir:
		return TreeModeDir, nil
	case TreeModeFile:
		return TreeModeFile, nil
	default:
		return "", fmt.Errorf("unknown mode %q", mode)
	}
}
