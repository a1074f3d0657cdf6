package filter

import (
	"testing"

	"github.com/matrix-org/govault/pkg/event"
	"github.com/stretchr/testify/assert"
)

func TestByEventTypes_SubsetOf(t *testing.T) {
	narrow := NewByEventTypes("m.room.message")
	wide := NewByEventTypes("m.room.message", "m.room.member")

	assert.True(t, narrow.SubsetOf(wide))
	assert.False(t, wide.SubsetOf(narrow))
	assert.True(t, narrow.SubsetOf(All()))
}

func TestAnd_NarrowsPass(t *testing.T) {
	narrow := NewByEventTypes("m.room.message")
	wide := NewByEventTypes("m.room.message", "m.room.member")
	combined := narrow.And(wide)

	msg := event.Event{EventType: "m.room.message"}
	member := event.Event{EventType: "m.room.member"}

	assert.True(t, combined.Pass(msg))
	assert.False(t, combined.Pass(member))
}

func TestAll_IsIdentityAndSuperset(t *testing.T) {
	narrow := NewByEventTypes("m.room.message")
	assert.Equal(t, Filter(narrow), All().And(narrow))
	assert.True(t, narrow.SubsetOf(All()))
}
