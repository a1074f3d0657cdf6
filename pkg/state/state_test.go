package state

import (
	"testing"

	"github.com/matrix-org/govault/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateKey(s string) *string { return &s }

func TestInsert_NoStateKeyIsNoOp(t *testing.T) {
	s := New()
	e := event.Event{EventID: "$e1", EventType: "m.room.message"}
	out := s.Insert(e)
	assert.Equal(t, s, out)
}

func TestInsertAndGet(t *testing.T) {
	s := New()
	e := event.Event{EventID: "$e1", EventType: "m.room.member", StateKey: stateKey("@a:x")}
	s = s.Insert(e)

	got, ok := s.Get(event.MemberKey{EventType: "m.room.member", StateKey: "@a:x"})
	require.True(t, ok)
	assert.Equal(t, "$e1", got.EventID)
}

func TestInsertReplacesPriorEventForSameKey(t *testing.T) {
	s := New()
	key := event.MemberKey{EventType: "m.room.member", StateKey: "@a:x"}
	s = s.Insert(event.Event{EventID: "$e1", EventType: "m.room.member", StateKey: stateKey("@a:x")})
	s = s.Insert(event.Event{EventID: "$e2", EventType: "m.room.member", StateKey: stateKey("@a:x")})

	got, ok := s.Get(key)
	require.True(t, ok)
	assert.Equal(t, "$e2", got.EventID)
}

func TestRemove_PrunesEmptyInnerMap(t *testing.T) {
	s := New()
	s = s.Insert(event.Event{EventID: "$e1", EventType: "m.room.member", StateKey: stateKey("@a:x")})
	s = s.Remove(event.MemberKey{EventType: "m.room.member", StateKey: "@a:x"})

	_, ok := s.Get(event.MemberKey{EventType: "m.room.member", StateKey: "@a:x"})
	assert.False(t, ok)
	assert.Empty(t, s.EventTypes())
}

func TestRemove_UnknownKeyIsNoOp(t *testing.T) {
	s := New()
	out := s.Remove(event.MemberKey{EventType: "m.room.member", StateKey: "@a:x"})
	assert.Equal(t, s, out)
}

func TestEventTypesAndStateKeysFor(t *testing.T) {
	s := New()
	s = s.Insert(event.Event{EventID: "$e1", EventType: "m.room.member", StateKey: stateKey("@a:x")})
	s = s.Insert(event.Event{EventID: "$e2", EventType: "m.room.member", StateKey: stateKey("@b:x")})
	s = s.Insert(event.Event{EventID: "$e3", EventType: "m.room.name", StateKey: stateKey("")})

	assert.ElementsMatch(t, []string{"m.room.member", "m.room.name"}, s.EventTypes())
	assert.ElementsMatch(t, []string{"@a:x", "@b:x"}, s.StateKeysFor("m.room.member"))
}

func TestAll_ReturnsEveryCurrentStateEvent(t *testing.T) {
	s := New()
	s = s.Insert(event.Event{EventID: "$e1", EventType: "m.room.member", StateKey: stateKey("@a:x")})
	s = s.Insert(event.Event{EventID: "$e2", EventType: "m.room.name", StateKey: stateKey("")})

	ids := make([]string, 0, 2)
	for _, e := range s.All() {
		ids = append(ids, e.EventID)
	}
	assert.ElementsMatch(t, []string{"$e1", "$e2"}, ids)
}

func TestCoder_RoundTrip(t *testing.T) {
	s := New()
	s = s.Insert(event.Event{EventID: "$e1", EventType: "m.room.member", StateKey: stateKey("@a:x")})

	c := Coder()
	raw := c.Encode(s)
	got, logs, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Empty(t, logs)

	e, ok := got.Get(event.MemberKey{EventType: "m.room.member", StateKey: "@a:x"})
	require.True(t, ok)
	assert.Equal(t, "$e1", e.EventID)
}
