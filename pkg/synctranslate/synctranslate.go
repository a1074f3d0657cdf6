// Package synctranslate decodes a /sync response under a chosen
// protocol revision and emits an update tree (spec.md §4.7).
//
// Revisions: V1≈r0.3.0, V2≈v1.1-v1.3, V3≈v1.4-v1.10, V4≈v1.11
// (SPEC_FULL.md §C.4). Structure is read via gjson path lookups rather
// than four near-duplicate struct definitions, mirroring dendrite's own
// use of tidwall/gjson in syncapi/sync/v4_roomdata.go to pull fields out
// of raw sync JSON without committing to one exhaustive struct per
// revision.
package synctranslate

import (
	"fmt"

	"github.com/matrix-org/govault/pkg/codec"
	"github.com/matrix-org/govault/pkg/event"
	"github.com/matrix-org/govault/pkg/filter"
	"github.com/matrix-org/govault/pkg/room"
	"github.com/matrix-org/govault/pkg/timeline"
	"github.com/matrix-org/govault/pkg/update"
	"github.com/tidwall/gjson"
)

// Revision selects which /sync schema nuances apply.
type Revision int

const (
	// V1 approximates r0.3.0: the rooms.invite section is not read
	// (SPEC_FULL.md §D.4).
	V1 Revision = iota
	// V2 approximates v1.1-v1.3.
	V2
	// V3 approximates v1.4-v1.10: invite rooms are acted upon.
	V3
	// V4 approximates v1.11: gap-closing empty batches, membership field
	// on UnsignedData.
	V4
)

// Translate decodes body (the raw /sync response JSON) under revision,
// against since (the request's since token, used as the fallback batch
// start per spec.md §4.7), and returns the update tree plus any decode
// warnings.
func Translate(rev Revision, body []byte, since string) ([]update.EnvelopeUpdate, []codec.Log, error) {
	if !gjson.ValidBytes(body) {
		return nil, nil, fmt.Errorf("synctranslate: invalid JSON")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, nil, fmt.Errorf("synctranslate: sync response: expected an object")
	}

	var updates []update.EnvelopeUpdate
	var logs []codec.Log

	nextBatch := doc.Get("next_batch").String()
	if doc.Get("next_batch").Exists() {
		updates = append(updates, update.EnvelopeSetNextBatch(nextBatch))
	}

	doc.Get("account_data.events").ForEach(func(_, ev gjson.Result) bool {
		ae, ok := decodeAccountDataEvent(ev)
		if ok {
			updates = append(updates, update.EnvelopeContentUpdate(update.VaultSetAccountData(ae.Type, ae.Content)))
		}
		return true
	})

	roomUpdates, roomLogs := translateRoomSection(doc.Get("rooms.join"), rev, since, nextBatch)
	updates = append(updates, roomUpdates...)
	logs = append(logs, roomLogs...)

	if rev != V1 {
		inviteUpdates, inviteLogs := translateInviteSection(doc.Get("rooms.invite"))
		updates = append(updates, inviteUpdates...)
		logs = append(logs, inviteLogs...)
	}

	return updates, logs, nil
}

type accountDataEvent struct {
	Type    string
	Content interface{}
}

func decodeAccountDataEvent(ev gjson.Result) (accountDataEvent, bool) {
	if !ev.IsObject() {
		return accountDataEvent{}, false
	}
	return accountDataEvent{Type: ev.Get("type").String(), Content: ev.Get("content").Value()}, true
}

func translateInviteSection(invites gjson.Result) ([]update.EnvelopeUpdate, []codec.Log) {
	var updates []update.EnvelopeUpdate
	var logs []codec.Log
	invites.ForEach(func(roomID, roomNode gjson.Result) bool {
		if !roomNode.Exists() {
			return true
		}
		var stripped []event.StrippedEvent
		roomNode.Get("invite_state.events").ForEach(func(_, se gjson.Result) bool {
			s, ok := decodeStrippedEvent(se)
			if ok {
				stripped = append(stripped, s)
			} else {
				logs = append(logs, codec.Log("skipped malformed invite_state event in room "+roomID.String()))
			}
			return true
		})
		if len(stripped) > 0 {
			updates = append(updates, update.EnvelopeContentUpdate(
				update.VaultSetInvite(room.Invite{RoomID: roomID.String(), State: stripped}),
			))
		}
		return true
	})
	return updates, logs
}

func decodeStrippedEvent(se gjson.Result) (event.StrippedEvent, bool) {
	if !se.IsObject() {
		return event.StrippedEvent{}, false
	}
	out := event.StrippedEvent{
		Content:   se.Get("content").Value(),
		EventType: se.Get("type").String(),
		Sender:    se.Get("sender").String(),
	}
	if sk := se.Get("state_key"); sk.Exists() {
		v := sk.String()
		out.StateKey = &v
	}
	return out, true
}

func translateRoomSection(rooms gjson.Result, rev Revision, since, nextBatch string) ([]update.EnvelopeUpdate, []codec.Log) {
	var updates []update.EnvelopeUpdate
	var logs []codec.Log

	rooms.ForEach(func(roomIDResult, roomNode gjson.Result) bool {
		roomID := roomIDResult.String()
		if !roomNode.Exists() {
			return true
		}

		var roomUpdates []update.RoomUpdate

		roomNode.Get("account_data.events").ForEach(func(_, ev gjson.Result) bool {
			ae, ok := decodeAccountDataEvent(ev)
			if ok {
				roomUpdates = append(roomUpdates, update.RoomSetAccountData(ae.Type, ae.Content))
			}
			return true
		})

		var ephemeral []event.StrippedEvent
		roomNode.Get("ephemeral.events").ForEach(func(_, ev gjson.Result) bool {
			s, ok := decodeStrippedEvent(ev)
			if ok {
				ephemeral = append(ephemeral, s)
			}
			return true
		})
		if len(ephemeral) > 0 {
			roomUpdates = append(roomUpdates, update.RoomSetEphemeral(ephemeral))
		}

		timelineNode := roomNode.Get("timeline")
		if timelineNode.Exists() {
			batchUpdates, ls := translateTimeline(timelineNode, rev, since, nextBatch)
			logs = append(logs, ls...)
			roomUpdates = append(roomUpdates, batchUpdates...)
		}

		if len(roomUpdates) > 0 {
			updates = append(updates,
				update.EnvelopeContentUpdate(update.VaultCreateRoomIfNotExists(roomID)),
				update.EnvelopeContentUpdate(update.VaultMapRoom(roomID, roomUpdates...)),
			)
		}
		return true
	})

	return updates, logs
}

func translateTimeline(t gjson.Result, rev Revision, since, nextBatch string) ([]update.RoomUpdate, []codec.Log) {
	var events []event.Event
	var logs []codec.Log
	t.Get("events").ForEach(func(_, ev gjson.Result) bool {
		e, decodeLogs, err := event.Coder.Decode(ev.Value())
		logs = append(logs, decodeLogs...)
		if err != nil {
			logs = append(logs, codec.Log("skipped malformed timeline event: "+err.Error()))
			return true
		}
		events = append(events, e)
		return true
	})

	prevBatch := since
	hasPrevBatch := false
	if pb := t.Get("prev_batch"); pb.Exists() {
		prevBatch = pb.String()
		hasPrevBatch = true
	}
	limited := t.Get("limited").Bool()

	var out []update.RoomUpdate
	if rev == V4 && !limited && hasPrevBatch && prevBatch != since {
		// Gap-closing empty batch (spec.md §4.7 "V4... when limited=false
		// and prevBatch is provided and differs from since, a gap-closing
		// empty batch from since to prevBatch precedes the real batch").
		out = append(out, update.RoomAddSync(timeline.Batch{
			Events: nil,
			Filter: filter.All(),
			Start:  strPtrOrNil(since),
			End:    prevBatch,
		}))
	}

	out = append(out, update.RoomAddSync(timeline.Batch{
		Events: events,
		Filter: filter.All(),
		Start:  strPtrOrNil(prevBatch),
		End:    nextBatch,
	}))

	return out, logs
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
