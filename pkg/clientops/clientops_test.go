package clientops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvite_VersionFallback(t *testing.T) {
	// spec.md §8 example 6: a homeserver advertising only r0.6.1 gets the
	// r0 path with no "reason" field in the body.
	req := InviteRequest{RoomID: "!r:x", UserID: "@bob:x"}
	attrs := BuildInviteAttributes("r0", req)

	assert.Equal(t, []string{"_matrix", "client", "r0", "rooms", "!r:x", "invite"}, attrs.PathSegments)
	assert.NotContains(t, attrs.BodyFields, "reason")
	assert.Equal(t, "@bob:x", attrs.BodyFields["user_id"])
}

func TestInvite_ModernVersionIncludesReason(t *testing.T) {
	reason := "spam"
	req := InviteRequest{RoomID: "!r:x", UserID: "@bob:x", Reason: &reason}
	attrs := BuildInviteAttributes("v3", req)

	assert.Equal(t, []string{"_matrix", "client", "v3", "rooms", "!r:x", "invite"}, attrs.PathSegments)
	assert.Equal(t, "spam", attrs.BodyFields["reason"])
}

func TestInviteTable_ResolvesR0ForLegacyHomeserver(t *testing.T) {
	table, err := NewInviteTable()
	require.NoError(t, err)

	_, err = table.Resolve([]string{"r0.6.1"})
	require.NoError(t, err)

	_, err = table.Resolve([]string{"v1.4"})
	require.NoError(t, err)
}

func TestSendMessageEvent_GeneratesTxnIDWhenAbsent(t *testing.T) {
	attrs, txnID := BuildSendMessageEventAttributes("v3", SendMessageEventRequest{
		RoomID: "!r:x", EventType: "m.room.message", Content: map[string]interface{}{"body": "hi"},
	})
	require.NotEmpty(t, txnID)
	assert.Equal(t, txnID, attrs.PathSegments[len(attrs.PathSegments)-1])
}

func TestSendMessageEvent_ReusesSuppliedTxnID(t *testing.T) {
	attrs, txnID := BuildSendMessageEventAttributes("v3", SendMessageEventRequest{
		RoomID: "!r:x", EventType: "m.room.message", Content: map[string]interface{}{}, TxnID: "txn-1",
	})
	assert.Equal(t, "txn-1", txnID)
	assert.Equal(t, "txn-1", attrs.PathSegments[len(attrs.PathSegments)-1])
}

func TestMarshalBody_SplicesFieldsInOrder(t *testing.T) {
	body, err := MarshalBody(Attributes{BodyFields: map[string]interface{}{
		"user_id": "@bob:x",
		"reason":  "spam",
	}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"reason":"spam","user_id":"@bob:x"}`, string(body))
}

func TestMarshalBody_FullBodyJSONOverridesFields(t *testing.T) {
	body, err := MarshalBody(Attributes{
		BodyFields:   map[string]interface{}{"ignored": true},
		FullBodyJSON: map[string]interface{}{"content": map[string]interface{}{"body": "hi"}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":{"body":"hi"}}`, string(body))
}
