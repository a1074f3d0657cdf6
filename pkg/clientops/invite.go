package clientops

import (
	"github.com/matrix-org/govault/pkg/codec"
	"github.com/matrix-org/govault/pkg/dispatch"
	"github.com/matrix-org/govault/pkg/update"
)

// InviteResponse is the (empty, per the Matrix spec) body of a
// successful invite request.
type InviteResponse struct{}

var inviteResponseCoder = codec.Object("InviteResponse", "empty success body", func() InviteResponse { return InviteResponse{} })

// InviteRequest is the logical request: who to invite into which room,
// with an optional reason (spec.md §6).
type InviteRequest struct {
	RoomID string
	UserID string
	Reason *string
}

func inviteAttributes(pathVersion string, req InviteRequest, includeReason bool) Attributes {
	body := map[string]interface{}{"user_id": req.UserID}
	if includeReason && req.Reason != nil {
		body["reason"] = *req.Reason
	}
	return Attributes{
		Method:            "POST",
		PathSegments:      pathSegment("_matrix", "client", pathVersion, "rooms", req.RoomID, "invite"),
		AccessTokenHeader: true,
		BodyFields:        body,
	}
}

// NewInviteTable builds the versioned dispatch table for invite (spec.md
// §6 example "r0.6.1 homeserver -> r0 path, body {user_id} (no
// reason)"; v1.1+ -> v3 path, body includes reason when present).
func NewInviteTable() (*dispatch.Table[Implementation[InviteResponse]], error) {
	decode := func(raw interface{}) (InviteResponse, []codec.Log, error) {
		return inviteResponseCoder.Decode(raw)
	}
	emit := func(InviteResponse) update.EnvelopeUpdate { return update.EnvelopeMore() }

	r0 := Implementation[InviteResponse]{DecodeResponse: decode, EmitUpdate: emit}
	table, err := dispatch.New("invite", "r0.0.0", r0)
	if err != nil {
		return nil, err
	}
	v3 := Implementation[InviteResponse]{DecodeResponse: decode, EmitUpdate: emit}
	return table.ForVersion("v1.1", v3)
}

// BuildInviteAttributes produces the wire-level Attributes for req under
// pathVersion ("r0" or "v3"), including the reason field only for the v3
// (v1.1+) family, per spec.md §6 example 6.
func BuildInviteAttributes(pathVersion string, req InviteRequest) Attributes {
	return inviteAttributes(pathVersion, req, pathVersion != "r0")
}
