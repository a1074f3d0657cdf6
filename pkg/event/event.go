// Package event implements the immutable event record (spec.md §3) and
// its redaction chain, plus the StrippedEvent type spec.md §9 directs
// implementers to treat as real (the source leaves it a Debug.todo).
package event

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/matrix-org/govault/pkg/codec"
	"github.com/matrix-org/govault/pkg/mstime"
)

// MaxRedactionChainDepth bounds how many "redacted_because" links RedactionChain
// will follow before giving up, guarding against a homeserver reporting a
// cycle (spec.md §9 suggests 32).
const MaxRedactionChainDepth = 32

// UnsignedData carries the metadata Matrix attaches outside an event's
// signed content (spec.md §3).
type UnsignedData struct {
	Age             *int64
	PrevContent     interface{} // raw JSON, shape depends on event type
	RedactedBecause *Event      // one level of the redaction chain; see RedactionChain for the iterative walk
	TransactionID   *string
	Membership      *string // added in spec >= v1.11, per spec.md §3
}

// Event is a single immutable room event. It is created once, on batch
// insertion, and never mutated afterwards (spec.md §3 lifecycle note);
// redactions arrive as new Event values carrying the redaction ancestor.
type Event struct {
	Content        interface{} // raw JSON
	EventID        string
	OriginServerTS mstime.Timestamp
	RoomID         string
	Sender         string
	StateKey       *string
	EventType      string
	Unsigned       *UnsignedData
}

// StrippedEvent is the minimal event shape used for invite-state and
// ephemeral events: content plus type, supplemented (per SPEC_FULL.md §C.1)
// with the sender/state-key Matrix's "Stripped State Event" shape always
// carries.
type StrippedEvent struct {
	Content   interface{}
	EventType string
	StateKey  *string
	Sender    string
}

// MemberKey uniquely identifies a state event within a room's
// StateManager (spec.md §3, "memberKey {eventType, stateKey}").
type MemberKey struct {
	EventType string
	StateKey  string
}

// Hash computes the Hashdict key for an Event: the event id itself, since
// Matrix event ids are already content-addressed in modern room versions.
// This is what the event store (pkg/room) keys events under.
func Hash(e Event) string { return e.EventID }

// HashStripped computes a stable key for a StrippedEvent, used when
// stripped events need set/hashdict membership (e.g. deduping invite
// state). Unlike full events, stripped events carry no event id, so the
// key is derived from their content.
func HashStripped(e StrippedEvent) string {
	sum := sha256.Sum256(mustJSON(e))
	return base64.RawURLEncoding.EncodeToString(sum[:16])
}

// RedactedBecause returns the event that redacted e, unwrapped one level
// (spec.md example 5: "redactedBecause() returns E4 unwrapped once").
func (e Event) RedactedBecause() (Event, bool) {
	if e.Unsigned == nil || e.Unsigned.RedactedBecause == nil {
		return Event{}, false
	}
	return *e.Unsigned.RedactedBecause, true
}

// RedactionChain walks the redaction ancestry iteratively (stack-safe, per
// spec.md §4.7 "toEvent walks the chain iteratively"), stopping after
// MaxRedactionChainDepth links and returning whether the chain was
// truncated.
func (e Event) RedactionChain() (chain []Event, truncated bool) {
	cur := e
	for i := 0; i < MaxRedactionChainDepth; i++ {
		next, ok := cur.RedactedBecause()
		if !ok {
			return chain, false
		}
		chain = append(chain, next)
		cur = next
	}
	_, more := cur.RedactedBecause()
	return chain, more
}

func mustJSON(e StrippedEvent) []byte {
	data, err := codec.EncodeJSON(strippedEventCoder, e)
	if err != nil {
		// Content is always JSON-shaped by construction (it only ever
		// arrives through the decode side of this same coder).
		panic(err)
	}
	return data
}

// Coder is the codec artifact for Event (spec.md §4.1).
var Coder = eventCoderAtDepth(0)

// UnsignedCoder is the codec artifact for UnsignedData, built lazily
// because it embeds Event (spec.md §9, "lazy coder constructor").
var UnsignedCoder = unsignedCoderAtDepth(0)

// StrippedEventCoder is the codec artifact for StrippedEvent.
var strippedEventCoder = buildStrippedEventCoder()

func StrippedEventCoder() codec.Coder[StrippedEvent] { return strippedEventCoder }

func buildStrippedEventCoder() codec.Coder[StrippedEvent] {
	return codec.Object("StrippedEvent", "minimal pre-join/ephemeral event", func() StrippedEvent { return StrippedEvent{} },
		codec.FieldRequired("content", "opaque event content", func(s StrippedEvent) interface{} { return s.Content }, func(s *StrippedEvent, v interface{}) { s.Content = v }, rawJSON()),
		codec.FieldRequired("type", "Matrix event type", func(s StrippedEvent) string { return s.EventType }, func(s *StrippedEvent, v string) { s.EventType = v }, codec.String()),
		codec.FieldOptional("state_key", "", func(s StrippedEvent) *string { return s.StateKey }, func(s *StrippedEvent, v *string) { s.StateKey = v }, codec.Maybe(codec.String())),
		codec.FieldRequired("sender", "", func(s StrippedEvent) string { return s.Sender }, func(s *StrippedEvent, v string) { s.Sender = v }, codec.String()),
	)
}

func rawJSON() codec.Coder[interface{}] {
	return codec.Coder[interface{}]{
		Encode: func(v interface{}) interface{} { return v },
		Decode: func(raw interface{}) (interface{}, []codec.Log, error) { return raw, nil, nil },
		Doc:    codec.Doc{TypeName: "json"},
	}
}

// eventCoderAtDepth builds the Event coder used depth levels deep inside a
// redacted_because chain (depth 0 is the top-level event.Coder). The depth
// is threaded through so unsignedCoderAtDepth can cut the recursion off at
// MaxRedactionChainDepth instead of recursing unbounded on a malicious or
// malformed chain (spec.md §9, SPEC_FULL.md §C.3/§D.2).
func eventCoderAtDepth(depth int) codec.Coder[Event] {
	tsCoder := codec.MapCoder(codec.Float(), func(f float64) mstime.Timestamp { return mstime.FromMs(int64(f)) }, func(t mstime.Timestamp) float64 { return float64(mstime.ToMs(t)) })
	return codec.Object("Event", "a single room event", func() Event { return Event{} },
		codec.FieldRequired("content", "", func(e Event) interface{} { return e.Content }, func(e *Event, v interface{}) { e.Content = v }, rawJSON()),
		codec.FieldRequired("event_id", "", func(e Event) string { return e.EventID }, func(e *Event, v string) { e.EventID = v }, codec.String()),
		codec.FieldRequired("origin_server_ts", "", func(e Event) mstime.Timestamp { return e.OriginServerTS }, func(e *Event, v mstime.Timestamp) { e.OriginServerTS = v }, tsCoder),
		codec.FieldRequired("room_id", "", func(e Event) string { return e.RoomID }, func(e *Event, v string) { e.RoomID = v }, codec.String()),
		codec.FieldRequired("sender", "", func(e Event) string { return e.Sender }, func(e *Event, v string) { e.Sender = v }, codec.String()),
		codec.FieldOptional("state_key", "", func(e Event) *string { return e.StateKey }, func(e *Event, v *string) { e.StateKey = v }, codec.Maybe(codec.String())),
		codec.FieldRequired("type", "", func(e Event) string { return e.EventType }, func(e *Event, v string) { e.EventType = v }, codec.String()),
		codec.FieldOptional("unsigned", "", func(e Event) *UnsignedData { return e.Unsigned }, func(e *Event, v *UnsignedData) { e.Unsigned = v }, codec.Maybe(codec.Lazy(func() codec.Coder[UnsignedData] { return unsignedCoderAtDepth(depth) }))),
	)
}

func unsignedCoderAtDepth(depth int) codec.Coder[UnsignedData] {
	intPtr := codec.MapCoder(codec.Float(), func(f float64) int64 { return int64(f) }, func(i int64) float64 { return float64(i) })
	return codec.Object("UnsignedData", "event metadata carried outside the signed content", func() UnsignedData { return UnsignedData{} },
		codec.FieldOptional("age", "", func(u UnsignedData) *int64 { return u.Age }, func(u *UnsignedData, v *int64) { u.Age = v }, codec.Maybe(intPtr)),
		codec.FieldOptional("prev_content", "", func(u UnsignedData) interface{} { return u.PrevContent }, func(u *UnsignedData, v interface{}) { u.PrevContent = v }, rawJSON()),
		codec.FieldOptional("redacted_because", "", func(u UnsignedData) *Event { return u.RedactedBecause }, func(u *UnsignedData, v *Event) { u.RedactedBecause = v }, redactedBecauseCoder(depth)),
		codec.FieldOptional("transaction_id", "", func(u UnsignedData) *string { return u.TransactionID }, func(u *UnsignedData, v *string) { u.TransactionID = v }, codec.Maybe(codec.String())),
		codec.FieldOptional("membership", "added in spec >= v1.11", func(u UnsignedData) *string { return u.Membership }, func(u *UnsignedData, v *string) { u.Membership = v }, codec.Maybe(codec.String())),
	)
}

// redactedBecauseCoder builds the *Event coder for one level of the
// redacted_because chain. Below MaxRedactionChainDepth it recurses via
// codec.Lazy at depth+1, same as every other self-referential field; at
// the limit it stops materializing the nested event entirely and reports
// a Log instead, bounding Decode's stack depth against a homeserver
// payload carrying a very deep or cyclic-looking redaction chain.
func redactedBecauseCoder(depth int) codec.Coder[*Event] {
	if depth >= MaxRedactionChainDepth {
		return codec.Coder[*Event]{
			Encode: func(e *Event) interface{} {
				if e == nil {
					return nil
				}
				return eventCoderAtDepth(depth).Encode(*e)
			},
			Decode: func(raw interface{}) (*Event, []codec.Log, error) {
				if raw == nil {
					return nil, nil, nil
				}
				return nil, []codec.Log{codec.Log("redacted_because: redaction chain truncated at max depth")}, nil
			},
			Doc: codec.Doc{TypeName: "maybe<Event>"},
		}
	}
	return codec.Maybe(codec.Lazy(func() codec.Coder[Event] { return eventCoderAtDepth(depth + 1) }))
}

