package clientops

import (
	"github.com/matrix-org/govault/pkg/codec"
	"github.com/matrix-org/govault/pkg/dispatch"
	"github.com/matrix-org/govault/pkg/update"
)

// BanResponse is the (empty) body of a successful ban request.
type BanResponse struct{}

var banResponseCoder = codec.Object("BanResponse", "empty success body", func() BanResponse { return BanResponse{} })

// BanRequest mirrors InviteRequest's shape: same body, different path
// (spec.md §6 "ban — same body shape").
type BanRequest struct {
	RoomID string
	UserID string
	Reason *string
}

// BuildBanAttributes produces the wire-level Attributes for req under
// pathVersion ("r0" or "v3").
func BuildBanAttributes(pathVersion string, req BanRequest) Attributes {
	body := map[string]interface{}{"user_id": req.UserID}
	if pathVersion != "r0" && req.Reason != nil {
		body["reason"] = *req.Reason
	}
	return Attributes{
		Method:            "POST",
		PathSegments:      pathSegment("_matrix", "client", pathVersion, "rooms", req.RoomID, "ban"),
		AccessTokenHeader: true,
		BodyFields:        body,
	}
}

// NewBanTable builds the versioned dispatch table for ban.
func NewBanTable() (*dispatch.Table[Implementation[BanResponse]], error) {
	decode := func(raw interface{}) (BanResponse, []codec.Log, error) {
		return banResponseCoder.Decode(raw)
	}
	emit := func(BanResponse) update.EnvelopeUpdate { return update.EnvelopeMore() }

	impl := Implementation[BanResponse]{DecodeResponse: decode, EmitUpdate: emit}
	table, err := dispatch.New("ban", "r0.0.0", impl)
	if err != nil {
		return nil, err
	}
	return table.ForVersion("v1.1", impl)
}
