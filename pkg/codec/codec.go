// Package codec implements the JSON codec combinator layer described in
// spec.md §4.1: one artifact per type binding encoding, decoding,
// defaulting and self-documentation together, built out of a handful of
// primitive combinators (string, bool, int, float, list, maybe,
// map-of-string-keys, int-keyed-map, set, lazy, parser, object, map,
// andThen).
//
// The source language expresses object_1..object_11 as a family of
// fixed-arity functions (one per field count). Go generics let us collapse
// that family into a single variadic Object[Object](fields...) — this is
// a deliberate, Go-idiomatic simplification of the source's combinator
// family, not a different contract: every Field still describes one
// projection/injection pair exactly as object_N would, and the corpus
// itself prefers a single flexible constructor over N near-duplicates
// (e.g. dendrite's single UnmarshalJSON helper used for every request
// shape in clientapi/httputil, rather than one helper per field count).
package codec

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Log is a single decode-time warning: a defaulted missing optional field,
// a hashdict rehash, etc. Decoding never fails because of a Log entry.
type Log string

// Decoder decodes a generic JSON value (as produced by encoding/json:
// map[string]interface{}, []interface{}, string, float64, bool, nil) into
// an A, returning accumulated warnings. A non-nil error is fatal to the
// surrounding decode (spec.md §4.1, "decoder fails").
type Decoder[A any] func(raw interface{}) (A, []Log, error)

// Encoder renders an A back to a generic JSON value.
type Encoder[A any] func(a A) interface{}

// Doc is the structural self-documentation attached to a Coder.
type Doc struct {
	TypeName    string
	Description string
	Fields      []FieldDoc
}

// FieldDoc documents a single field of an object coder.
type FieldDoc struct {
	Name        string
	Description string
	Required    string // "required" | "optional" | "default:<rendering>"
}

// Coder bundles the encode/decode/doc triple for a type A (spec.md §4.1).
type Coder[A any] struct {
	Encode Encoder[A]
	Decode Decoder[A]
	Doc    Doc
}

// RoundTrips checks the round-trip law for one value: it encodes v,
// decodes the result, and reports whether equal(decoded, v) holds,
// together with the decode logs and any decode error (spec.md §4.1).
func RoundTrips[A any](c Coder[A], v A, equal func(A, A) bool) (ok bool, logs []Log, err error) {
	raw := c.Encode(v)
	got, logs, err := c.Decode(raw)
	if err != nil {
		return false, logs, err
	}
	return equal(got, v), logs, nil
}

func fail(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// EncodeJSON renders v through c and marshals the result with
// encoding/json, the module's JSON marshal substrate.
func EncodeJSON[A any](c Coder[A], v A) ([]byte, error) {
	return json.Marshal(c.Encode(v))
}

// DecodeJSON unmarshals data into the generic JSON representation and
// runs it through c.Decode. Decode warnings are logged at Warn level in
// addition to being returned, the way dendrite surfaces decode problems
// through logrus while still returning them to the caller
// (SPEC_FULL.md §A.1).
func DecodeJSON[A any](c Coder[A], data []byte) (A, []Log, error) {
	var raw interface{}
	var zero A
	if err := json.Unmarshal(data, &raw); err != nil {
		logrus.WithError(err).Warn("codec: invalid JSON")
		return zero, nil, fmt.Errorf("invalid JSON: %w", err)
	}
	v, logs, err := c.Decode(raw)
	for _, l := range logs {
		logrus.WithField("type", c.Doc.TypeName).Warn(string(l))
	}
	return v, logs, err
}
