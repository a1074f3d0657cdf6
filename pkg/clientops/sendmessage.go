package clientops

import (
	"github.com/google/uuid"
	"github.com/matrix-org/govault/pkg/codec"
	"github.com/matrix-org/govault/pkg/dispatch"
	"github.com/matrix-org/govault/pkg/update"
)

// SendMessageEventRequest targets
// PUT .../rooms/{roomId}/send/{eventType}/{txnId} (spec.md §6).
type SendMessageEventRequest struct {
	RoomID    string
	EventType string
	Content   interface{}
	// TxnID is generated by NewTxnID when empty; callers that need to
	// retry an identical request (Matrix's dedup mechanism) should reuse
	// the same id across attempts rather than regenerating it.
	TxnID string
}

// NewTxnID generates a fresh transaction id, grounded on dendrite's own
// use of google/uuid for generated identifiers (clientapi/routing).
func NewTxnID() string { return uuid.NewString() }

// SendMessageEventResponse carries the server-assigned event id.
type SendMessageEventResponse struct {
	EventID string
}

var sendMessageEventResponseCoder = codec.Object("SendMessageEventResponse", "",
	func() SendMessageEventResponse { return SendMessageEventResponse{} },
	codec.FieldRequired("event_id", "", func(r SendMessageEventResponse) string { return r.EventID },
		func(r *SendMessageEventResponse, v string) { r.EventID = v }, codec.String()),
)

// BuildSendMessageEventAttributes produces the wire-level Attributes for
// req under pathVersion, generating a txn id if req.TxnID is empty.
func BuildSendMessageEventAttributes(pathVersion string, req SendMessageEventRequest) (Attributes, string) {
	txnID := req.TxnID
	if txnID == "" {
		txnID = NewTxnID()
	}
	attrs := Attributes{
		Method:            "PUT",
		PathSegments:      pathSegment("_matrix", "client", pathVersion, "rooms", req.RoomID, "send", req.EventType, txnID),
		AccessTokenHeader: true,
		FullBodyJSON:      req.Content,
	}
	return attrs, txnID
}

// NewSendMessageEventTable builds the versioned dispatch table for
// sendMessageEvent. The emitted update is an empty EnvelopeMore; the
// transaction id is not recorded on the envelope context.
func NewSendMessageEventTable() (*dispatch.Table[Implementation[SendMessageEventResponse]], error) {
	decode := func(raw interface{}) (SendMessageEventResponse, []codec.Log, error) {
		return sendMessageEventResponseCoder.Decode(raw)
	}
	emit := func(SendMessageEventResponse) update.EnvelopeUpdate { return update.EnvelopeMore() }

	impl := Implementation[SendMessageEventResponse]{DecodeResponse: decode, EmitUpdate: emit}
	table, err := dispatch.New("sendMessageEvent", "r0.0.0", impl)
	if err != nil {
		return nil, err
	}
	return table.ForVersion("v1.1", impl)
}
