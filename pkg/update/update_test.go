package update

import (
	"testing"

	"github.com/matrix-org/govault/pkg/room"
	"github.com/matrix-org/govault/pkg/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldVault_CreateAndSetAccountData(t *testing.T) {
	v := vault.New()
	v = FoldVault(v, []VaultUpdate{
		VaultCreateRoomIfNotExists("!r:x"),
		VaultSetAccountData("m.direct", map[string]interface{}{"a": "b"}),
	})

	_, ok := v.FromRoomID("!r:x")
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"a": "b"}, v.AccountData["m.direct"])
}

func TestFoldVault_MapRoomAppliesRoomUpdates(t *testing.T) {
	v := vault.New()
	v = FoldVault(v, []VaultUpdate{
		VaultCreateRoomIfNotExists("!r:x"),
		VaultMapRoom("!r:x", RoomSetAccountData("k", "v")),
	})

	r, ok := v.FromRoomID("!r:x")
	require.True(t, ok)
	assert.Equal(t, "v", r.AccountData["k"])
}

func TestFoldVault_DeeplyNestedMoreIsStackSafe(t *testing.T) {
	var nested VaultUpdate = VaultSetAccountData("k", 0)
	const depth = 200000
	for i := 0; i < depth; i++ {
		nested = VaultMore(nested)
	}

	v := FoldVault(vault.New(), []VaultUpdate{nested})
	assert.Equal(t, 0, v.AccountData["k"])
}

func TestFoldVault_OptionalNilIsIdentity(t *testing.T) {
	v := vault.New()
	var none VaultUpdate
	out := FoldVault(v, []VaultUpdate{VaultOptional(none)})
	// Compared through the encoding: Hashdict holds a hash func, and
	// reflect.DeepEqual never treats two non-nil funcs as equal.
	assert.Equal(t, vault.Coder().Encode(v), vault.Coder().Encode(out))
}

func TestFoldRoom_InviteRecordsPendingInvite(t *testing.T) {
	r := room.New("!r:x")
	r = FoldRoom(r, []RoomUpdate{RoomInvite("@bob:x")})
	_, ok := r.PendingInvites["@bob:x"]
	assert.True(t, ok)
}
