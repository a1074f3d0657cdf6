// Package room implements the Room aggregate: account data, ephemeral
// events, the event store, current state, and the timeline for one
// Matrix room (spec.md §3 "Room").
package room

import (
	"github.com/matrix-org/govault/pkg/event"
	"github.com/matrix-org/govault/pkg/hashdict"
	"github.com/matrix-org/govault/pkg/state"
	"github.com/matrix-org/govault/pkg/timeline"
)

// Room is the per-room aggregate. Every eventId referenced by Timeline is
// either present in Events or intentionally omitted as a gap (spec.md §3
// invariant) — Room does not itself enforce this; callers that translate
// sync responses are responsible for inserting events alongside batches.
type Room struct {
	RoomID       string
	AccountData  map[string]interface{}
	Ephemeral    []event.StrippedEvent
	Events       hashdict.Hashdict[event.Event]
	State        state.StateManager
	Timeline     timeline.Timeline
	// PendingInvites records third-party invite targets recorded via the
	// Invite(User) RoomUpdate (spec.md §4.6); spec.md gives this variant
	// no further shape, so it is carried as a plain user-id set rather
	// than folded into Ephemeral or State, which both have a defined
	// meaning already.
	PendingInvites map[string]struct{}
}

// New returns an empty Room for roomID.
func New(roomID string) Room {
	return Room{
		RoomID:         roomID,
		AccountData:    map[string]interface{}{},
		Events:         hashdict.New[event.Event](event.Hash),
		State:          state.New(),
		Timeline:       timeline.New(),
		PendingInvites: map[string]struct{}{},
	}
}

// SetAccountData records key/val as room-scoped account data.
func (r Room) SetAccountData(key string, val interface{}) Room {
	out := r.clone()
	out.AccountData[key] = val
	return out
}

// SetEphemeral replaces the room's ephemeral event list (typing,
// receipts, etc. — all carried as opaque StrippedEvent, spec.md §4.6).
func (r Room) SetEphemeral(events []event.StrippedEvent) Room {
	out := r.clone()
	out.Ephemeral = append([]event.StrippedEvent(nil), events...)
	return out
}

// AddEvent records e in the event store and, if it carries state, in
// current state (spec.md §4.6 "AddEvent").
func (r Room) AddEvent(e event.Event) Room {
	out := r.clone()
	out.Events = out.Events.Insert(e)
	out.State = out.State.Insert(e)
	return out
}

// AddSync inserts b into the timeline and records every event it carries
// in the event store and current state, keeping Room's invariant that
// timeline events are reachable from Events (spec.md §4.6 "AddSync").
func (r Room) AddSync(b timeline.Batch) Room {
	out := r.clone()
	out.Timeline = out.Timeline.AddSync(b)
	for _, e := range b.Events {
		out.Events = out.Events.Insert(e)
		out.State = out.State.Insert(e)
	}
	return out
}

// Invite records that userID has been invited into this room (spec.md
// §4.6 "Invite(User)"; see PendingInvites doc comment for the shape
// decision).
func (r Room) Invite(userID string) Room {
	out := r.clone()
	out.PendingInvites[userID] = struct{}{}
	return out
}

// Invite is the minimal room-pre-join state set a homeserver includes in
// a sync response's "invite" section: a room id and the stripped state
// events the server chooses to disclose before the user has joined
// (spec.md §3 "Invite").
type Invite struct {
	RoomID string
	State  []event.StrippedEvent
}

// HashInvite is the Hashdict key function for Invite, keyed by roomId
// (spec.md §3 "Vault... invites: hashdict<Invite by roomId>").
func HashInvite(i Invite) string { return i.RoomID }

func (r Room) clone() Room {
	out := r
	out.AccountData = make(map[string]interface{}, len(r.AccountData))
	for k, v := range r.AccountData {
		out.AccountData[k] = v
	}
	out.Ephemeral = append([]event.StrippedEvent(nil), r.Ephemeral...)
	out.PendingInvites = make(map[string]struct{}, len(r.PendingInvites))
	for u := range r.PendingInvites {
		out.PendingInvites[u] = struct{}{}
	}
	return out
}
