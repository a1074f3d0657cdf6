// Package update implements the update tree (EnvelopeUpdate, VaultUpdate,
// RoomUpdate) and its stack-safe fold (spec.md §4.6, §9 "Recursive update
// trees").
package update

import (
	"github.com/matrix-org/govault/pkg/envelope"
	"github.com/matrix-org/govault/pkg/event"
	"github.com/matrix-org/govault/pkg/mstime"
	"github.com/matrix-org/govault/pkg/room"
	"github.com/matrix-org/govault/pkg/timeline"
	"github.com/matrix-org/govault/pkg/vault"
)

// RoomUpdate is a diff applied to a single room.Room (spec.md §4.6).
type RoomUpdate interface{ applyRoom(room.Room) room.Room }

type roomAddEvent struct{ Event event.Event }

func (u roomAddEvent) applyRoom(r room.Room) room.Room { return r.AddEvent(u.Event) }

// RoomAddEvent records an event in the room's store and state.
func RoomAddEvent(e event.Event) RoomUpdate { return roomAddEvent{Event: e} }

type roomAddSync struct{ Batch timeline.Batch }

func (u roomAddSync) applyRoom(r room.Room) room.Room { return r.AddSync(u.Batch) }

// RoomAddSync appends a sync-fetched batch to the room's timeline.
func RoomAddSync(b timeline.Batch) RoomUpdate { return roomAddSync{Batch: b} }

type roomInvite struct{ User string }

func (u roomInvite) applyRoom(r room.Room) room.Room { return r.Invite(u.User) }

// RoomInvite records that User has been invited into the room.
func RoomInvite(user string) RoomUpdate { return roomInvite{User: user} }

type roomMore struct{ Updates []RoomUpdate }

func (u roomMore) applyRoom(r room.Room) room.Room { return FoldRoom(r, u.Updates) }

// RoomMore folds a list of updates left-to-right.
func RoomMore(updates ...RoomUpdate) RoomUpdate { return roomMore{Updates: updates} }

type roomOptional struct{ Update RoomUpdate }

func (u roomOptional) applyRoom(r room.Room) room.Room {
	if u.Update == nil {
		return r
	}
	return u.Update.applyRoom(r)
}

// RoomOptional applies update if non-nil, else is identity.
func RoomOptional(update RoomUpdate) RoomUpdate { return roomOptional{Update: update} }

type roomSetAccountData struct {
	Key   string
	Value interface{}
}

func (u roomSetAccountData) applyRoom(r room.Room) room.Room {
	return r.SetAccountData(u.Key, u.Value)
}

// RoomSetAccountData records room-scoped account data.
func RoomSetAccountData(key string, value interface{}) RoomUpdate {
	return roomSetAccountData{Key: key, Value: value}
}

type roomSetEphemeral struct{ Events []event.StrippedEvent }

func (u roomSetEphemeral) applyRoom(r room.Room) room.Room { return r.SetEphemeral(u.Events) }

// RoomSetEphemeral replaces the room's ephemeral event list.
func RoomSetEphemeral(events []event.StrippedEvent) RoomUpdate {
	return roomSetEphemeral{Events: events}
}

// FoldRoom applies updates to r left-to-right, iteratively: nested
// RoomMore/RoomOptional never recurse natively (spec.md §9).
func FoldRoom(r room.Room, updates []RoomUpdate) room.Room {
	stack := flattenRoom(updates)
	for _, u := range stack {
		r = u.applyRoom(r)
	}
	return r
}

// flattenRoom expands nested More/Optional into one flat, ordered list
// using an explicit work-list rather than recursion.
func flattenRoom(updates []RoomUpdate) []RoomUpdate {
	var out []RoomUpdate
	type frame struct {
		updates []RoomUpdate
		i       int
	}
	stack := []frame{{updates: updates}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.i >= len(top.updates) {
			stack = stack[:len(stack)-1]
			continue
		}
		u := top.updates[top.i]
		top.i++
		switch v := u.(type) {
		case roomMore:
			stack = append(stack, frame{updates: v.Updates})
		case roomOptional:
			if v.Update != nil {
				stack = append(stack, frame{updates: []RoomUpdate{v.Update}})
			}
		default:
			out = append(out, u)
		}
	}
	return out
}

// VaultUpdate is a diff applied to vault.Vault (spec.md §4.6).
type VaultUpdate interface{ applyVault(vault.Vault) vault.Vault }

type vaultCreateRoomIfNotExists struct{ RoomID string }

func (u vaultCreateRoomIfNotExists) applyVault(v vault.Vault) vault.Vault {
	return v.CreateRoomIfNotExists(u.RoomID)
}

// VaultCreateRoomIfNotExists ensures roomID exists, a no-op otherwise.
func VaultCreateRoomIfNotExists(roomID string) VaultUpdate {
	return vaultCreateRoomIfNotExists{RoomID: roomID}
}

type vaultMapRoom struct {
	RoomID  string
	Updates []RoomUpdate
}

func (u vaultMapRoom) applyVault(v vault.Vault) vault.Vault {
	return v.MapRoom(u.RoomID, func(r room.Room) room.Room { return FoldRoom(r, u.Updates) })
}

// VaultMapRoom applies updates to the room at roomID, if it exists.
func VaultMapRoom(roomID string, updates ...RoomUpdate) VaultUpdate {
	return vaultMapRoom{RoomID: roomID, Updates: updates}
}

type vaultMore struct{ Updates []VaultUpdate }

func (u vaultMore) applyVault(v vault.Vault) vault.Vault { return FoldVault(v, u.Updates) }

// VaultMore folds a list of updates left-to-right.
func VaultMore(updates ...VaultUpdate) VaultUpdate { return vaultMore{Updates: updates} }

type vaultOptional struct{ Update VaultUpdate }

func (u vaultOptional) applyVault(v vault.Vault) vault.Vault {
	if u.Update == nil {
		return v
	}
	return u.Update.applyVault(v)
}

// VaultOptional applies update if non-nil, else is identity.
func VaultOptional(update VaultUpdate) VaultUpdate { return vaultOptional{Update: update} }

type vaultRemoveInvite struct{ RoomID string }

func (u vaultRemoveInvite) applyVault(v vault.Vault) vault.Vault { return v.RemoveInvite(u.RoomID) }

// VaultRemoveInvite drops a pending invite.
func VaultRemoveInvite(roomID string) VaultUpdate { return vaultRemoveInvite{RoomID: roomID} }

type vaultSetAccountData struct {
	Key   string
	Value interface{}
}

func (u vaultSetAccountData) applyVault(v vault.Vault) vault.Vault {
	return v.SetAccountData(u.Key, u.Value)
}

// VaultSetAccountData records global (vault-scoped) account data.
func VaultSetAccountData(key string, value interface{}) VaultUpdate {
	return vaultSetAccountData{Key: key, Value: value}
}

type vaultSetInvite struct{ Invite room.Invite }

func (u vaultSetInvite) applyVault(v vault.Vault) vault.Vault { return v.SetInvite(u.Invite) }

// VaultSetInvite records or replaces an invite.
func VaultSetInvite(i room.Invite) VaultUpdate { return vaultSetInvite{Invite: i} }

type vaultSetNextBatch struct{ Token string }

func (u vaultSetNextBatch) applyVault(v vault.Vault) vault.Vault { return v.SetNextBatch(u.Token) }

// VaultSetNextBatch records the sync cursor on the vault.
func VaultSetNextBatch(token string) VaultUpdate { return vaultSetNextBatch{Token: token} }

// FoldVault applies updates to v left-to-right, iteratively.
func FoldVault(v vault.Vault, updates []VaultUpdate) vault.Vault {
	stack := flattenVault(updates)
	for _, u := range stack {
		v = u.applyVault(v)
	}
	return v
}

func flattenVault(updates []VaultUpdate) []VaultUpdate {
	var out []VaultUpdate
	type frame struct {
		updates []VaultUpdate
		i       int
	}
	stack := []frame{{updates: updates}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.i >= len(top.updates) {
			stack = stack[:len(stack)-1]
			continue
		}
		u := top.updates[top.i]
		top.i++
		switch v := u.(type) {
		case vaultMore:
			stack = append(stack, frame{updates: v.Updates})
		case vaultOptional:
			if v.Update != nil {
				stack = append(stack, frame{updates: []VaultUpdate{v.Update}})
			}
		default:
			out = append(out, u)
		}
	}
	return out
}

// EnvelopeUpdate is a diff applied to envelope.Envelope[vault.Vault]
// (spec.md §4.6). HttpRequest is carried for completeness but ignored by
// the pure fold (spec.md: "HttpRequest(req) (ignored by the pure fold)").
type EnvelopeUpdate interface {
	applyEnvelope(envelope.Envelope[vault.Vault]) envelope.Envelope[vault.Vault]
}

type envelopeContentUpdate struct{ Updates []VaultUpdate }

func (u envelopeContentUpdate) applyEnvelope(e envelope.Envelope[vault.Vault]) envelope.Envelope[vault.Vault] {
	return e.WithContent(FoldVault(e.Content, u.Updates))
}

// EnvelopeContentUpdate folds vault updates into the envelope's content.
func EnvelopeContentUpdate(updates ...VaultUpdate) EnvelopeUpdate {
	return envelopeContentUpdate{Updates: updates}
}

type envelopeHTTPRequest struct{ Description interface{} }

func (u envelopeHTTPRequest) applyEnvelope(e envelope.Envelope[vault.Vault]) envelope.Envelope[vault.Vault] {
	return e
}

// EnvelopeHTTPRequest carries an outbound request description for the
// external transport to execute; the pure fold ignores it (spec.md
// §4.6).
func EnvelopeHTTPRequest(description interface{}) EnvelopeUpdate {
	return envelopeHTTPRequest{Description: description}
}

type envelopeMore struct{ Updates []EnvelopeUpdate }

func (u envelopeMore) applyEnvelope(e envelope.Envelope[vault.Vault]) envelope.Envelope[vault.Vault] {
	return FoldEnvelope(e, u.Updates)
}

// EnvelopeMore folds a list of updates left-to-right.
func EnvelopeMore(updates ...EnvelopeUpdate) EnvelopeUpdate { return envelopeMore{Updates: updates} }

type envelopeOptional struct{ Update EnvelopeUpdate }

func (u envelopeOptional) applyEnvelope(e envelope.Envelope[vault.Vault]) envelope.Envelope[vault.Vault] {
	if u.Update == nil {
		return e
	}
	return u.Update.applyEnvelope(e)
}

// EnvelopeOptional applies update if non-nil, else is identity.
func EnvelopeOptional(update EnvelopeUpdate) EnvelopeUpdate { return envelopeOptional{Update: update} }

type envelopeRemoveAccessToken struct{ Value string }

func (u envelopeRemoveAccessToken) applyEnvelope(e envelope.Envelope[vault.Vault]) envelope.Envelope[vault.Vault] {
	return e.WithContext(e.Context.RemoveAccessToken(u.Value))
}

// EnvelopeRemoveAccessToken drops the named token from the context.
func EnvelopeRemoveAccessToken(value string) EnvelopeUpdate {
	return envelopeRemoveAccessToken{Value: value}
}

type envelopeRemovePasswordIfNecessary struct{}

func (u envelopeRemovePasswordIfNecessary) applyEnvelope(e envelope.Envelope[vault.Vault]) envelope.Envelope[vault.Vault] {
	return e.WithContext(e.Context.RemovePasswordIfNecessary(e.Settings))
}

// EnvelopeRemovePasswordIfNecessary clears the context's password when
// Settings.RemovePasswordOnLogin is set.
func EnvelopeRemovePasswordIfNecessary() EnvelopeUpdate { return envelopeRemovePasswordIfNecessary{} }

type envelopeSetAccessToken struct{ Token envelope.AccessToken }

func (u envelopeSetAccessToken) applyEnvelope(e envelope.Envelope[vault.Vault]) envelope.Envelope[vault.Vault] {
	return e.WithContext(e.Context.SetAccessToken(u.Token))
}

// EnvelopeSetAccessToken records a new access token.
func EnvelopeSetAccessToken(tok envelope.AccessToken) EnvelopeUpdate {
	return envelopeSetAccessToken{Token: tok}
}

type envelopeSetBaseURL struct{ URL string }

func (u envelopeSetBaseURL) applyEnvelope(e envelope.Envelope[vault.Vault]) envelope.Envelope[vault.Vault] {
	return e.WithContext(e.Context.SetBaseURL(u.URL))
}

// EnvelopeSetBaseURL records the homeserver base URL.
func EnvelopeSetBaseURL(url string) EnvelopeUpdate { return envelopeSetBaseURL{URL: url} }

type envelopeSetDeviceID struct{ ID string }

func (u envelopeSetDeviceID) applyEnvelope(e envelope.Envelope[vault.Vault]) envelope.Envelope[vault.Vault] {
	return e.WithContext(e.Context.SetDeviceID(u.ID))
}

// EnvelopeSetDeviceID records the device id.
func EnvelopeSetDeviceID(id string) EnvelopeUpdate { return envelopeSetDeviceID{ID: id} }

type envelopeSetNextBatch struct{ Token string }

func (u envelopeSetNextBatch) applyEnvelope(e envelope.Envelope[vault.Vault]) envelope.Envelope[vault.Vault] {
	e = e.WithContext(e.Context.SetNextBatch(u.Token))
	return e.WithContent(e.Content.SetNextBatch(u.Token))
}

// EnvelopeSetNextBatch records the sync cursor on both the context and
// the vault content (spec.md §4.6 lists SetNextBatch on both update
// trees; here it keeps the two copies in lockstep).
func EnvelopeSetNextBatch(token string) EnvelopeUpdate { return envelopeSetNextBatch{Token: token} }

type envelopeSetNowMs struct{ NowMs int64 }

func (u envelopeSetNowMs) applyEnvelope(e envelope.Envelope[vault.Vault]) envelope.Envelope[vault.Vault] {
	return e.WithContext(e.Context.SetNow(mstime.FromMs(u.NowMs)))
}

// EnvelopeSetNow records the current wall-clock timestamp, in
// milliseconds since the epoch (spec.md §9 "Global time": explicit,
// never ambient).
func EnvelopeSetNow(nowMs int64) EnvelopeUpdate { return envelopeSetNowMs{NowMs: nowMs} }

type envelopeSetRefreshToken struct{ Token string }

func (u envelopeSetRefreshToken) applyEnvelope(e envelope.Envelope[vault.Vault]) envelope.Envelope[vault.Vault] {
	return e.WithContext(e.Context.SetRefreshToken(u.Token))
}

// EnvelopeSetRefreshToken records a refresh token.
func EnvelopeSetRefreshToken(token string) EnvelopeUpdate {
	return envelopeSetRefreshToken{Token: token}
}

type envelopeSetVersions struct{ Versions []string }

func (u envelopeSetVersions) applyEnvelope(e envelope.Envelope[vault.Vault]) envelope.Envelope[vault.Vault] {
	return e.WithContext(e.Context.SetVersions(u.Versions))
}

// EnvelopeSetVersions records the homeserver's advertised versions.
func EnvelopeSetVersions(versions []string) EnvelopeUpdate {
	return envelopeSetVersions{Versions: versions}
}

// FoldEnvelope applies updates to e left-to-right, iteratively
// (spec.md §9 "the fold must be stack-safe under deeply nested More").
func FoldEnvelope(e envelope.Envelope[vault.Vault], updates []EnvelopeUpdate) envelope.Envelope[vault.Vault] {
	stack := flattenEnvelope(updates)
	for _, u := range stack {
		e = u.applyEnvelope(e)
	}
	return e
}

func flattenEnvelope(updates []EnvelopeUpdate) []EnvelopeUpdate {
	var out []EnvelopeUpdate
	type frame struct {
		updates []EnvelopeUpdate
		i       int
	}
	stack := []frame{{updates: updates}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.i >= len(top.updates) {
			stack = stack[:len(stack)-1]
			continue
		}
		u := top.updates[top.i]
		top.i++
		switch v := u.(type) {
		case envelopeMore:
			stack = append(stack, frame{updates: v.Updates})
		case envelopeOptional:
			if v.Update != nil {
				stack = append(stack, frame{updates: []EnvelopeUpdate{v.Update}})
			}
		default:
			out = append(out, u)
		}
	}
	return out
}
