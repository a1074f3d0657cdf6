// Package clientops declares the concrete request/response/update
// implementations for each logical client-server operation (invite, ban,
// setRoomAccountData, sendMessageEvent, sync), resolved through
// pkg/dispatch (spec.md §4.4, §6).
package clientops

import (
	"encoding/json"
	"sort"

	"github.com/matrix-org/govault/pkg/codec"
	"github.com/matrix-org/govault/pkg/update"
	"github.com/tidwall/sjson"
)

// Attributes is a request implementation's shape (spec.md §4.4): method,
// pre-joined URL-encoded path segments, whether to attach the access
// token header, body/query key-values, an optional full-body override,
// and URL segment substitutions (e.g. {roomId}).
type Attributes struct {
	Method            string
	PathSegments      []string
	AccessTokenHeader bool
	BodyFields        map[string]interface{}
	QueryFields       map[string]string
	FullBodyJSON      interface{}
	ReplaceURLSegment map[string]string
}

// Implementation is one version's concrete request/response/update
// triple for a logical operation.
type Implementation[Resp any] struct {
	Attributes     Attributes
	DecodeResponse func(raw interface{}) (Resp, []codec.Log, error)
	EmitUpdate     func(Resp) update.EnvelopeUpdate
}

// pathSegment returns the pre-encoded segments as a fresh slice; it does
// not join them and does not escape them.
func pathSegment(segments ...string) []string {
	return append([]string(nil), segments...)
}

// MarshalBody renders a.BodyFields (or a.FullBodyJSON verbatim, when set)
// to wire JSON. BodyFields is spliced in one key at a time via
// tidwall/sjson rather than built as a map and passed through a single
// json.Marshal, since a version's Attributes only ever adds a handful of
// known top-level keys (user_id, reason, ...) over a base shape -- the
// same incremental-patch shape sjson is built for.
func MarshalBody(a Attributes) ([]byte, error) {
	if a.FullBodyJSON != nil {
		return json.Marshal(a.FullBodyJSON)
	}
	keys := make([]string, 0, len(a.BodyFields))
	for k := range a.BodyFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	body := []byte("{}")
	var err error
	for _, k := range keys {
		if body, err = sjson.SetBytes(body, k, a.BodyFields[k]); err != nil {
			return nil, err
		}
	}
	return body, nil
}
