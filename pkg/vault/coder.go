package vault

import (
	"fmt"

	"github.com/matrix-org/govault/pkg/codec"
	"github.com/matrix-org/govault/pkg/hashdict"
	"github.com/matrix-org/govault/pkg/room"
)

func rawJSONMap() codec.Coder[map[string]interface{}] {
	return codec.Coder[map[string]interface{}]{
		Encode: func(v map[string]interface{}) interface{} { return v },
		Decode: func(raw interface{}) (map[string]interface{}, []codec.Log, error) {
			if raw == nil {
				return map[string]interface{}{}, nil, nil
			}
			obj, ok := raw.(map[string]interface{})
			if !ok {
				return nil, nil, fmt.Errorf("vault: expected an object, got %T", raw)
			}
			return obj, nil, nil
		},
		Doc: codec.Doc{TypeName: "json"},
	}
}

// Coder is the codec artifact for Vault (spec.md §3 "Vault", §6 "Persisted
// state layout"), the root of the serialized Envelope[Vault] the rest of
// the codec layer builds up to.
func Coder() codec.Coder[Vault] {
	invitesCoder := hashdict.Coder(room.InviteCoder(), room.HashInvite)
	roomsCoder := hashdict.Coder(room.Coder(), HashRoom)
	return codec.Object("Vault", "root aggregate: account data, invites, sync cursor, rooms", func() Vault { return New() },
		codec.FieldRequired("account_data", "", func(v Vault) map[string]interface{} { return v.AccountData }, func(v *Vault, val map[string]interface{}) { v.AccountData = val }, rawJSONMap()),
		codec.FieldRequired("invites", "", func(v Vault) hashdict.Hashdict[room.Invite] { return v.Invites }, func(v *Vault, val hashdict.Hashdict[room.Invite]) { v.Invites = val }, invitesCoder),
		codec.FieldOptional("next_batch", "", func(v Vault) *string { return v.NextBatch }, func(v *Vault, val *string) { v.NextBatch = val }, codec.Maybe(codec.String())),
		codec.FieldRequired("rooms", "", func(v Vault) hashdict.Hashdict[room.Room] { return v.Rooms }, func(v *Vault, val hashdict.Hashdict[room.Room]) { v.Rooms = val }, roomsCoder),
	)
}
