package vault

import (
	"testing"

	"github.com/matrix-org/govault/pkg/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IsEmpty(t *testing.T) {
	v := New()
	assert.Empty(t, v.Rooms.Keys())
	assert.Empty(t, v.Invites.Keys())
	assert.Nil(t, v.NextBatch)
}

func TestCreateRoomIfNotExists_IsIdempotent(t *testing.T) {
	v := New()
	v = v.CreateRoomIfNotExists("!r:x")
	r1, _ := v.FromRoomID("!r:x")
	r1 = r1.SetAccountData("k", "v")
	v = v.MapRoom("!r:x", func(room.Room) room.Room { return r1 })

	v = v.CreateRoomIfNotExists("!r:x")
	r2, ok := v.FromRoomID("!r:x")
	require.True(t, ok)
	assert.Equal(t, "v", r2.AccountData["k"])
}

func TestMapRoom_UnknownRoomIsNoOp(t *testing.T) {
	v := New()
	out := v.MapRoom("!missing:x", func(r room.Room) room.Room { return r.SetAccountData("k", "v") })
	// Compared through the encoding: Hashdict holds a hash func, and
	// reflect.DeepEqual never treats two non-nil funcs as equal.
	assert.Equal(t, Coder().Encode(v), Coder().Encode(out))
}

func TestSetInviteAndRemoveInvite(t *testing.T) {
	v := New()
	v = v.SetInvite(room.Invite{RoomID: "!r:x"})
	_, ok := v.Invites.Get("!r:x")
	require.True(t, ok)

	v = v.RemoveInvite("!r:x")
	_, ok = v.Invites.Get("!r:x")
	assert.False(t, ok)
}

func TestSetNextBatch(t *testing.T) {
	v := New()
	v = v.SetNextBatch("s123")
	require.NotNil(t, v.NextBatch)
	assert.Equal(t, "s123", *v.NextBatch)
}

func TestCoder_RoundTrip(t *testing.T) {
	v := New()
	v = v.SetAccountData("m.direct", map[string]interface{}{"a": "b"})
	v = v.SetNextBatch("s123")
	v = v.CreateRoomIfNotExists("!r:x")

	c := Coder()
	raw := c.Encode(v)
	got, logs, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Empty(t, logs)

	require.NotNil(t, got.NextBatch)
	assert.Equal(t, "s123", *got.NextBatch)
	assert.Equal(t, map[string]interface{}{"a": "b"}, got.AccountData["m.direct"])
	_, ok := got.FromRoomID("!r:x")
	assert.True(t, ok)
}
