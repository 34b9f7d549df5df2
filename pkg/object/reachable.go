package object

import (
	"fmt"
	"sort"
	"strings"
)

// VerifySummary reports the outcome of Store.Verify.
type VerifySummary struct {
	Blobs int
	Trees int
}

type reachableRef struct {
	hash Hash
	want Kind // empty for roots
}

// Verify walks every object reachable from roots by following tree entries.
// Each object is read from disk, not the cache, and re-hashed against its
// address; every tree entry must point at an object of the kind its mode
// claims. Every reachable object must exist.
func (s *Store) Verify(roots []Hash) (*VerifySummary, error) {
	roots = uniqueNormalizedHashes(roots)
	report := &VerifySummary{}
	seen := make(map[Hash]Kind, len(roots))

	stack := make([]reachableRef, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, reachableRef{hash: roots[i]})
	}
	for len(stack) > 0 {
		ref := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if kind, ok := seen[ref.hash]; ok {
			if ref.want != "" && kind != ref.want {
				return nil, fmt.Errorf("verify %s: %w: got %q, want %q", ref.hash, ErrKindMismatch, kind, ref.want)
			}
			continue
		}

		o, err := s.load(ref.hash)
		if err != nil {
			return nil, fmt.Errorf("verify: %w", err)
		}
		if actual := o.Hash(); actual != ref.hash {
			return nil, fmt.Errorf("verify %s: %w: content hashes to %s", ref.hash, ErrDecode, actual)
		}
		if ref.want != "" && o.Kind != ref.want {
			return nil, fmt.Errorf("verify %s: %w: got %q, want %q", ref.hash, ErrKindMismatch, o.Kind, ref.want)
		}
		seen[ref.hash] = o.Kind

		refs, err := referencedObjects(o)
		if err != nil {
			return nil, fmt.Errorf("verify parse %s (%s): %w", ref.hash, o.Kind, err)
		}
		if o.Kind == KindTree {
			report.Trees++
		} else {
			report.Blobs++
		}
		stack = append(stack, refs...)
	}

	return report, nil
}

// referencedObjects returns the children of o with the kind each entry's
// mode implies.
func referencedObjects(o *Object) ([]reachableRef, error) {
	switch o.Kind {
	case KindBlob:
		return nil, nil
	case KindTree:
		entries, err := DecodeTree(o.Body)
		if err != nil {
			return nil, err
		}
		refs := make([]reachableRef, 0, len(entries))
		for _, e := range entries {
			want := KindBlob
			if e.IsDir() {
				want = KindTree
			}
			refs = append(refs, reachableRef{hash: e.Hash, want: want})
		}
		return refs, nil
	default:
		return nil, fmt.Errorf("unsupported object type %q", o.Kind)
	}
}

func uniqueNormalizedHashes(in []Hash) []Hash {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[Hash]struct{}, len(in))
	out := make([]Hash, 0, len(in))
	for _, h := range in {
		h = Hash(strings.ToLower(strings.TrimSpace(string(h))))
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
