package hashdict

import (
	"fmt"

	"github.com/matrix-org/govault/pkg/codec"
)

// Coder builds a Coder[Hashdict[V]] serializing as a JSON object keyed by
// the stored hash (spec.md §6 "Persisted state layout": "Hashdicts
// serialize as JSON objects keyed by the stored hash"). Decode rejects any
// entry whose value does not rehash to its own key by calling Validate on
// the freshly-decoded dict, the decode-time use of the §4.2 "invalid hash
// in hashdict" invariant Validate exists to check.
func Coder[V any](inner codec.Coder[V], hash Hasher[V]) codec.Coder[Hashdict[V]] {
	mapCoder := codec.MapOfStringKeys(inner)
	return codec.Coder[Hashdict[V]]{
		Encode: func(h Hashdict[V]) interface{} { return mapCoder.Encode(h.items) },
		Decode: func(raw interface{}) (Hashdict[V], []codec.Log, error) {
			items, logs, err := mapCoder.Decode(raw)
			if err != nil {
				return Hashdict[V]{}, logs, err
			}
			out := Hashdict[V]{hash: hash, items: items}
			if err := out.Validate(); err != nil {
				return Hashdict[V]{}, logs, err
			}
			return out, logs, nil
		},
		Doc: codec.Doc{TypeName: "hashdict<" + inner.Doc.TypeName + ">"},
	}
}

// SoftCoder behaves like Coder but repairs a mismatched entry by rehashing
// it to its correct key instead of failing decode, logging a warning for
// each entry it repairs. This is the "rehash on load" recovery path spec.md
// §4.2 allows alongside outright rejection, for callers that would rather
// tolerate a stale persisted blob than reject it wholesale.
func SoftCoder[V any](inner codec.Coder[V], hash Hasher[V]) codec.Coder[Hashdict[V]] {
	mapCoder := codec.MapOfStringKeys(inner)
	return codec.Coder[Hashdict[V]]{
		Encode: func(h Hashdict[V]) interface{} { return mapCoder.Encode(h.items) },
		Decode: func(raw interface{}) (Hashdict[V], []codec.Log, error) {
			items, logs, err := mapCoder.Decode(raw)
			if err != nil {
				return Hashdict[V]{}, logs, err
			}
			out := New(hash)
			for key, v := range items {
				if got := hash(v); got != key {
					logs = append(logs, codec.Log(fmt.Sprintf("hashdict: entry stored under %q rehashes to %q, repairing on load", key, got)))
				}
				out = out.Insert(v)
			}
			return out, logs, nil
		},
		Doc: codec.Doc{TypeName: "hashdict<" + inner.Doc.TypeName + ">"},
	}
}

// iddictWire is the serialized shape of an Iddict: the monotonic cursor
// plus its int-keyed item map (spec.md §4.2, §6).
type iddictWire[V any] struct {
	Cursor int
	Items  map[int]V
}

// IddictCoder builds a Coder[Iddict[V]], serializing as
// {"cursor": n, "items": {"0": ..., "1": ...}} so the cursor survives a
// round trip even when the highest-numbered item has since been removed
// (spec.md §4.2 "cursor is preserved across serialization").
func IddictCoder[V any](inner codec.Coder[V]) codec.Coder[Iddict[V]] {
	itemsCoder := codec.IntKeyedMap(inner)
	wireCoder := codec.Object("Iddict", "monotonically-keyed persistent collection", func() iddictWire[V] { return iddictWire[V]{} },
		codec.FieldRequired("cursor", "next key to be assigned", func(w iddictWire[V]) int { return w.Cursor }, func(w *iddictWire[V], v int) { w.Cursor = v }, codec.Int()),
		codec.FieldRequired("items", "", func(w iddictWire[V]) map[int]V { return w.Items }, func(w *iddictWire[V], v map[int]V) { w.Items = v }, itemsCoder),
	)
	return codec.MapCoder(wireCoder,
		func(w iddictWire[V]) Iddict[V] {
			d := NewIddict[V]()
			d.items = w.Items
			if w.Items == nil {
				d.items = map[int]V{}
			}
			d = d.WithCursor(w.Cursor)
			return d
		},
		func(d Iddict[V]) iddictWire[V] { return iddictWire[V]{Cursor: d.cursor, Items: d.items} },
	)
}
