package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactedBecause_NoUnsigned(t *testing.T) {
	e := Event{EventID: "$e1"}
	_, ok := e.RedactedBecause()
	assert.False(t, ok)
}

func TestRedactedBecause_OneLevel(t *testing.T) {
	redactor := Event{EventID: "$e2"}
	e := Event{EventID: "$e1", Unsigned: &UnsignedData{RedactedBecause: &redactor}}

	got, ok := e.RedactedBecause()
	require.True(t, ok)
	assert.Equal(t, "$e2", got.EventID)
}

func TestRedactionChain_WalksEveryLink(t *testing.T) {
	e4 := Event{EventID: "$e4"}
	e3 := Event{EventID: "$e3", Unsigned: &UnsignedData{RedactedBecause: &e4}}
	e2 := Event{EventID: "$e2", Unsigned: &UnsignedData{RedactedBecause: &e3}}
	e1 := Event{EventID: "$e1", Unsigned: &UnsignedData{RedactedBecause: &e2}}

	chain, truncated := e1.RedactionChain()
	require.False(t, truncated)
	require.Len(t, chain, 3)
	assert.Equal(t, "$e2", chain[0].EventID)
	assert.Equal(t, "$e3", chain[1].EventID)
	assert.Equal(t, "$e4", chain[2].EventID)
}

func TestRedactionChain_TruncatesAtMaxDepth(t *testing.T) {
	// Build a chain deeper than MaxRedactionChainDepth.
	var tail *Event
	for i := 0; i < MaxRedactionChainDepth+5; i++ {
		next := Event{EventID: "$link", Unsigned: &UnsignedData{RedactedBecause: tail}}
		tail = &next
	}

	chain, truncated := tail.RedactionChain()
	assert.True(t, truncated)
	assert.Len(t, chain, MaxRedactionChainDepth)
}

func TestEventCoder_RoundTrip(t *testing.T) {
	e := Event{
		Content:        map[string]interface{}{"body": "hi"},
		EventID:        "$e1",
		OriginServerTS: 1000,
		RoomID:         "!r:x",
		Sender:         "@a:x",
		EventType:      "m.room.message",
	}
	raw := Coder.Encode(e)
	got, logs, err := Coder.Decode(raw)
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Equal(t, e, got)
}

func TestEventCoder_RedactedBecauseRoundTrips(t *testing.T) {
	redactor := Event{EventID: "$e2", EventType: "m.room.redaction", RoomID: "!r:x", Sender: "@a:x", Content: map[string]interface{}{}}
	e := Event{
		EventID:   "$e1",
		EventType: "m.room.message",
		RoomID:    "!r:x",
		Sender:    "@a:x",
		Content:   map[string]interface{}{},
		Unsigned:  &UnsignedData{RedactedBecause: &redactor},
	}

	raw := Coder.Encode(e)
	got, _, err := Coder.Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, got.Unsigned)
	require.NotNil(t, got.Unsigned.RedactedBecause)
	assert.Equal(t, "$e2", got.Unsigned.RedactedBecause.EventID)
}

func TestEventCoder_TruncatesDeepRedactionChainOnDecode(t *testing.T) {
	// encode a chain one level beyond MaxRedactionChainDepth and verify
	// Decode truncates with a log instead of recursing unbounded.
	var nested *Event
	for i := 0; i < MaxRedactionChainDepth+2; i++ {
		e := Event{EventID: "$link", EventType: "m.room.message", RoomID: "!r:x", Sender: "@a:x", Content: map[string]interface{}{}}
		if nested != nil {
			e.Unsigned = &UnsignedData{RedactedBecause: nested}
		}
		nested = &e
	}

	raw := Coder.Encode(*nested)
	_, logs, err := Coder.Decode(raw)
	require.NoError(t, err)

	found := false
	for _, l := range logs {
		if string(l) == "redacted_because: redaction chain truncated at max depth" {
			found = true
		}
	}
	assert.True(t, found, "expected a truncation log, got %v", logs)
}
