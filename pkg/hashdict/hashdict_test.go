package hashdict

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashInt(v int) string { return strconv.Itoa(v % 10) }

func TestHashdict_InsertGet(t *testing.T) {
	tests := []struct {
		name   string
		values []int
	}{
		{name: "empty", values: nil},
		{name: "single value", values: []int{7}},
		{name: "colliding values replace", values: []int{3, 13, 23}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(hashInt)
			for _, v := range tt.values {
				h = h.Insert(v)
			}
			if len(tt.values) == 0 {
				assert.Equal(t, 0, h.Len())
				return
			}
			last := tt.values[len(tt.values)-1]
			got, ok := h.Get(hashInt(last))
			require.True(t, ok)
			assert.Equal(t, last, got)
		})
	}
}

func TestHashdict_Validate(t *testing.T) {
	h := New(hashInt).Insert(4).Insert(14)
	require.NoError(t, h.Validate())

	// Rehashing under a different function must still validate. 4 and 14
	// collide under hashInt, so h holds only 14 and the rehash has 1 entry.
	rehashed := h.Rehash(func(v int) string { return strconv.Itoa(v) })
	require.NoError(t, rehashed.Validate())
	assert.Equal(t, 1, rehashed.Len())
}

func TestHashdict_Remove(t *testing.T) {
	h := New(hashInt).Insert(1)
	h2 := h.Remove(hashInt(1))
	assert.Equal(t, 1, h.Len(), "original must be unchanged (value semantics)")
	assert.Equal(t, 0, h2.Len())
}

func TestIddict_InsertMonotonic(t *testing.T) {
	d := NewIddict[string]()
	k1, d := d.Insert("a")
	k2, d := d.Insert("b")
	require.Less(t, k1, k2)

	v, ok := d.Get(k1)
	require.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, 2, d.Len())
}

func TestIddict_RemoveDoesNotReuseKey(t *testing.T) {
	d := NewIddict[string]()
	k1, d := d.Insert("a")
	d = d.Remove(k1)
	k2, d := d.Insert("b")
	assert.NotEqual(t, k1, k2)
	assert.Equal(t, 1, d.Len())
}

func TestIddict_WithCursorRejectsBackwards(t *testing.T) {
	d := NewIddict[string]()
	_, d = d.Insert("a")
	assert.Panics(t, func() {
		d.WithCursor(0)
	})
}
