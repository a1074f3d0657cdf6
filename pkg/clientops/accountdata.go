package clientops

import (
	"github.com/matrix-org/govault/pkg/codec"
	"github.com/matrix-org/govault/pkg/dispatch"
	"github.com/matrix-org/govault/pkg/update"
)

// SetRoomAccountDataRequest targets
// PUT .../user/{userId}/rooms/{roomId}/account_data/{eventType} (spec.md
// §6).
type SetRoomAccountDataRequest struct {
	UserID    string
	RoomID    string
	EventType string
	Content   interface{}
}

// SetRoomAccountDataResponse is the (empty) body of a successful
// account-data write.
type SetRoomAccountDataResponse struct{}

var setRoomAccountDataResponseCoder = codec.Object("SetRoomAccountDataResponse", "empty success body",
	func() SetRoomAccountDataResponse { return SetRoomAccountDataResponse{} })

// BuildSetRoomAccountDataAttributes produces the wire-level Attributes
// for req under pathVersion.
func BuildSetRoomAccountDataAttributes(pathVersion string, req SetRoomAccountDataRequest) Attributes {
	return Attributes{
		Method: "PUT",
		PathSegments: pathSegment("_matrix", "client", pathVersion, "user", req.UserID,
			"rooms", req.RoomID, "account_data", req.EventType),
		AccessTokenHeader: true,
		FullBodyJSON:      req.Content,
	}
}

// NewSetRoomAccountDataTable builds the versioned dispatch table for
// setRoomAccountData. The update emitted on success records the
// account-data write against the room (spec.md §4.6
// "RoomUpdate.SetAccountData").
func NewSetRoomAccountDataTable(req SetRoomAccountDataRequest) (*dispatch.Table[Implementation[SetRoomAccountDataResponse]], error) {
	decode := func(raw interface{}) (SetRoomAccountDataResponse, []codec.Log, error) {
		return setRoomAccountDataResponseCoder.Decode(raw)
	}
	emit := func(SetRoomAccountDataResponse) update.EnvelopeUpdate {
		return update.EnvelopeContentUpdate(
			update.VaultMapRoom(req.RoomID, update.RoomSetAccountData(req.EventType, req.Content)),
		)
	}

	impl := Implementation[SetRoomAccountDataResponse]{DecodeResponse: decode, EmitUpdate: emit}
	table, err := dispatch.New("setRoomAccountData", "r0.0.0", impl)
	if err != nil {
		return nil, err
	}
	return table.ForVersion("v1.1", impl)
}
