// Package vault implements the Vault aggregate: account data, invites,
// the next_batch cursor, and the room collection (spec.md §3 "Vault").
package vault

import (
	"github.com/matrix-org/govault/pkg/hashdict"
	"github.com/matrix-org/govault/pkg/room"
)

// HashRoom is the Hashdict key function for room.Room, keyed by roomId
// (spec.md §3 invariant: "every room in rooms has a roomId matching its
// hashdict key").
func HashRoom(r room.Room) string { return r.RoomID }

// Vault is the root aggregate.
type Vault struct {
	AccountData map[string]interface{}
	Invites     hashdict.Hashdict[room.Invite]
	NextBatch   *string
	Rooms       hashdict.Hashdict[room.Room]
}

// New returns an empty Vault.
func New() Vault {
	return Vault{
		AccountData: map[string]interface{}{},
		Invites:     hashdict.New[room.Invite](room.HashInvite),
		Rooms:       hashdict.New[room.Room](HashRoom),
	}
}

// FromRoomID looks a room up by id.
func (v Vault) FromRoomID(roomID string) (room.Room, bool) {
	return v.Rooms.Get(roomID)
}

// SetAccountData records key/val as vault-scoped (global) account data.
func (v Vault) SetAccountData(key string, val interface{}) Vault {
	out := v.clone()
	out.AccountData[key] = val
	return out
}

// SetNextBatch records the sync cursor.
func (v Vault) SetNextBatch(token string) Vault {
	out := v.clone()
	out.NextBatch = &token
	return out
}

// SetInvite records or replaces an invite.
func (v Vault) SetInvite(i room.Invite) Vault {
	out := v.clone()
	out.Invites = out.Invites.Insert(i)
	return out
}

// RemoveInvite drops a pending invite, typically once the room has been
// joined (spec.md §4.6 "RemoveInvite").
func (v Vault) RemoveInvite(roomID string) Vault {
	out := v.clone()
	out.Invites = out.Invites.Remove(roomID)
	return out
}

// CreateRoomIfNotExists ensures a Room exists for roomID, leaving any
// existing room untouched (spec.md §4.6 "CreateRoomIfNotExists").
func (v Vault) CreateRoomIfNotExists(roomID string) Vault {
	if _, ok := v.Rooms.Get(roomID); ok {
		return v
	}
	out := v.clone()
	out.Rooms = out.Rooms.Insert(room.New(roomID))
	return out
}

// MapRoom applies f to the room at roomID, if it exists, replacing it
// with f's result (spec.md §4.6 "MapRoom").
func (v Vault) MapRoom(roomID string, f func(room.Room) room.Room) Vault {
	r, ok := v.Rooms.Get(roomID)
	if !ok {
		return v
	}
	out := v.clone()
	out.Rooms = out.Rooms.Insert(f(r))
	return out
}

func (v Vault) clone() Vault {
	out := v
	out.AccountData = make(map[string]interface{}, len(v.AccountData))
	for k, val := range v.AccountData {
		out.AccountData[k] = val
	}
	return out
}
