package room

import (
	"testing"

	"github.com/matrix-org/govault/pkg/event"
	"github.com/matrix-org/govault/pkg/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsEmpty(t *testing.T) {
	r := New("!r:x")
	assert.Equal(t, "!r:x", r.RoomID)
	assert.Empty(t, r.Events.Keys())
	assert.Empty(t, r.PendingInvites)
}

func TestSetAccountData(t *testing.T) {
	r := New("!r:x")
	r = r.SetAccountData("m.tag", map[string]interface{}{"a": 1.0})
	assert.Equal(t, map[string]interface{}{"a": 1.0}, r.AccountData["m.tag"])
}

func TestAddEvent_RecordsInEventsAndState(t *testing.T) {
	r := New("!r:x")
	stateKey := ""
	r = r.AddEvent(event.Event{EventID: "$e1", EventType: "m.room.name", StateKey: &stateKey})

	_, ok := r.Events.Get("$e1")
	assert.True(t, ok)
	_, ok = r.State.Get(event.MemberKey{EventType: "m.room.name", StateKey: ""})
	assert.True(t, ok)
}

func TestAddSync_RecordsTimelineEventsAndEventStore(t *testing.T) {
	r := New("!r:x")
	r = r.AddSync(timeline.Batch{Events: []event.Event{{EventID: "$e1", EventType: "m.room.message"}}, End: "tok1"})

	assert.Equal(t, 1, r.Timeline.FilledBatchCount())
	_, ok := r.Events.Get("$e1")
	assert.True(t, ok)
}

func TestInvite_RecordsPendingInvite(t *testing.T) {
	r := New("!r:x")
	r = r.Invite("@bob:x")
	_, ok := r.PendingInvites["@bob:x"]
	assert.True(t, ok)
}

func TestCoder_RoomRoundTrip(t *testing.T) {
	r := New("!r:x")
	r = r.SetAccountData("k", "v")
	r = r.AddSync(timeline.Batch{Events: []event.Event{{EventID: "$e1", EventType: "m.room.message", Content: map[string]interface{}{}}}, End: "tok1"})

	c := Coder()
	raw := c.Encode(r)
	got, logs, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Equal(t, r.RoomID, got.RoomID)
	assert.Equal(t, "v", got.AccountData["k"])
	_, ok := got.Events.Get("$e1")
	assert.True(t, ok)
}

func TestInviteCoder_RoundTrip(t *testing.T) {
	i := Invite{RoomID: "!r:x", State: []event.StrippedEvent{{EventType: "m.room.name", Sender: "@a:x", Content: map[string]interface{}{}}}}
	c := InviteCoder()
	raw := c.Encode(i)
	got, logs, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Equal(t, i, got)
}
