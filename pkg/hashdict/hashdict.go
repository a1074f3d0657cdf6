// Package hashdict implements the two hashed/id-keyed collections spec.md
// §4.2 calls for: Hashdict (key = hash(value)) and Iddict (monotonically
// assigned integer keys). Both are plain Go maps under the hood — the
// corpus has no persistent-map library (dendrite's own caches
// (internal/caching) are themselves thin wrappers around map-backed
// stores such as ristretto/go-cache) — wrapped so that callers get
// value-semantics: every mutating method returns the new collection
// rather than mutating a shared one, matching the "purely
// value-transforming" core spec.md §5 requires.
package hashdict

import "fmt"

// Hasher computes the stable key a value is stored under.
type Hasher[V any] func(V) string

// Hashdict stores values under hash(value). Re-inserting a value whose
// hash collides with an existing entry replaces that entry, per spec.md
// §4.2 ("insert v replaces any prior entry whose hash collides").
type Hashdict[V any] struct {
	hash  Hasher[V]
	items map[string]V
}

// New creates an empty Hashdict using the given hash function.
func New[V any](hash Hasher[V]) Hashdict[V] {
	return Hashdict[V]{hash: hash, items: map[string]V{}}
}

// Insert returns a new Hashdict with v stored under hash(v).
func (h Hashdict[V]) Insert(v V) Hashdict[V] {
	out := h.clone()
	out.items[h.hash(v)] = v
	return out
}

// Get looks a value up by its hash key.
func (h Hashdict[V]) Get(key string) (V, bool) {
	v, ok := h.items[key]
	return v, ok
}

// Remove returns a new Hashdict with key absent.
func (h Hashdict[V]) Remove(key string) Hashdict[V] {
	out := h.clone()
	delete(out.items, key)
	return out
}

// Len reports the number of stored values.
func (h Hashdict[V]) Len() int { return len(h.items) }

// Keys returns the stored hash keys in unspecified order.
func (h Hashdict[V]) Keys() []string {
	keys := make([]string, 0, len(h.items))
	for k := range h.items {
		keys = append(keys, k)
	}
	return keys
}

// Values returns the stored values in unspecified order.
func (h Hashdict[V]) Values() []V {
	vals := make([]V, 0, len(h.items))
	for _, v := range h.items {
		vals = append(vals, v)
	}
	return vals
}

// Rehash rebuilds the dictionary under a new hash function, per spec.md
// §4.2 ("rehash f rebuilds under a new hash").
func (h Hashdict[V]) Rehash(newHash Hasher[V]) Hashdict[V] {
	out := New(newHash)
	for _, v := range h.items {
		out = out.Insert(v)
	}
	return out
}

// Validate checks, for every stored value, that hash(v) == key — the
// invariant Coder (see coder.go) enforces on decode. It returns a
// descriptive error identifying the first violation found, matching
// spec.md §4.2's "invalid hash in hashdict" decode-failure message.
func (h Hashdict[V]) Validate() error {
	for key, v := range h.items {
		if got := h.hash(v); got != key {
			return fmt.Errorf("invalid hash in hashdict: stored under %q but hashes to %q", key, got)
		}
	}
	return nil
}

func (h Hashdict[V]) clone() Hashdict[V] {
	out := Hashdict[V]{hash: h.hash, items: make(map[string]V, len(h.items)+1)}
	for k, v := range h.items {
		out.items[k] = v
	}
	return out
}
