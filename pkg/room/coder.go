package room

import (
	"fmt"

	"github.com/matrix-org/govault/pkg/codec"
	"github.com/matrix-org/govault/pkg/event"
	"github.com/matrix-org/govault/pkg/hashdict"
	"github.com/matrix-org/govault/pkg/state"
	"github.com/matrix-org/govault/pkg/timeline"
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
				return nil, nil, fmt.Errorf("room: expected an object, got %T", raw)
			}
			return obj, nil, nil
		},
		Doc: codec.Doc{TypeName: "json"},
	}
}

func strSet() codec.Coder[map[string]struct{}] {
	list := codec.List(codec.String())
	return codec.MapCoder(list,
		func(keys []string) map[string]struct{} {
			out := make(map[string]struct{}, len(keys))
			for _, k := range keys {
				out[k] = struct{}{}
			}
			return out
		},
		func(m map[string]struct{}) []string {
			out := make([]string, 0, len(m))
			for k := range m {
				out = append(out, k)
			}
			return out
		},
	)
}

// InviteCoder is the codec artifact for Invite (spec.md §3, §6).
func InviteCoder() codec.Coder[Invite] {
	return codec.Object("Invite", "pre-join stripped state a homeserver discloses for a room", func() Invite { return Invite{} },
		codec.FieldRequired("room_id", "", func(i Invite) string { return i.RoomID }, func(i *Invite, v string) { i.RoomID = v }, codec.String()),
		codec.FieldRequired("state", "", func(i Invite) []event.StrippedEvent { return i.State }, func(i *Invite, v []event.StrippedEvent) { i.State = v }, codec.List(event.StrippedEventCoder())),
	)
}

// Coder is the codec artifact for Room (spec.md §3, §6 "Persisted state
// layout"), wiring in every collection the Room aggregate is built from:
// the event Hashdict, the StateManager, and the Timeline.
func Coder() codec.Coder[Room] {
	eventsCoder := hashdict.Coder(event.Coder, event.Hash)
	return codec.Object("Room", "per-room aggregate: account data, ephemeral events, event store, state, timeline", func() Room { return New("") },
		codec.FieldRequired("room_id", "", func(r Room) string { return r.RoomID }, func(r *Room, v string) { r.RoomID = v }, codec.String()),
		codec.FieldRequired("account_data", "", func(r Room) map[string]interface{} { return r.AccountData }, func(r *Room, v map[string]interface{}) { r.AccountData = v }, rawJSONMap()),
		codec.FieldRequired("ephemeral", "", func(r Room) []event.StrippedEvent { return r.Ephemeral }, func(r *Room, v []event.StrippedEvent) { r.Ephemeral = v }, codec.List(event.StrippedEventCoder())),
		codec.FieldRequired("events", "", func(r Room) hashdict.Hashdict[event.Event] { return r.Events }, func(r *Room, v hashdict.Hashdict[event.Event]) { r.Events = v }, eventsCoder),
		codec.FieldRequired("state", "", func(r Room) state.StateManager { return r.State }, func(r *Room, v state.StateManager) { r.State = v }, state.Coder()),
		codec.FieldRequired("timeline", "", func(r Room) timeline.Timeline { return r.Timeline }, func(r *Room, v timeline.Timeline) { r.Timeline = v }, timeline.Coder()),
		codec.FieldRequired("pending_invites", "", func(r Room) map[string]struct{} { return r.PendingInvites }, func(r *Room, v map[string]struct{}) { r.PendingInvites = v }, strSet()),
	)
}
