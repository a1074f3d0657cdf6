package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	Name    string
	Count   int
	Tags    []string
	Comment string // has a default
}

func widgetCoder() Coder[widget] {
	return Object("widget", "a test fixture", func() widget { return widget{} },
		FieldRequired("name", "", func(w widget) string { return w.Name }, func(w *widget, v string) { w.Name = v }, String()),
		FieldRequired("count", "", func(w widget) int { return w.Count }, func(w *widget, v int) { w.Count = v }, Int()),
		FieldOptional("tags", "", func(w widget) []string { return w.Tags }, func(w *widget, v []string) { w.Tags = v }, List(String())),
		FieldDefault("comment", "", "", func(a, b string) bool { return a == b }, func(w widget) string { return w.Comment }, func(w *widget, v string) { w.Comment = v }, String()),
	)
}

func TestObject_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   widget
	}{
		{name: "all fields set", in: widget{Name: "a", Count: 1, Tags: []string{"x"}, Comment: "hi"}},
		{name: "default comment omitted on encode", in: widget{Name: "b", Count: 2, Tags: nil, Comment: ""}},
	}
	c := widgetCoder()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := c.Encode(tt.in)
			got, logs, err := c.Decode(raw)
			require.NoError(t, err)
			assert.Empty(t, logs)
			assert.Equal(t, tt.in, got)
		})
	}
}

func TestObject_MissingRequiredFails(t *testing.T) {
	c := widgetCoder()
	_, _, err := c.Decode(map[string]interface{}{"count": float64(1)})
	assert.Error(t, err)
}

func TestObject_MissingOptionalDefaultsWithWarning(t *testing.T) {
	c := widgetCoder()
	got, logs, err := c.Decode(map[string]interface{}{"name": "a", "count": float64(1)})
	require.NoError(t, err)
	assert.Equal(t, "", got.Comment)
	assert.NotEmpty(t, logs)
}

func TestList_And_MapOfStringKeys(t *testing.T) {
	listCoder := List(Int())
	raw := listCoder.Encode([]int{1, 2, 3})
	got, _, err := listCoder.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)

	mapCoder := MapOfStringKeys(String())
	rawM := mapCoder.Encode(map[string]string{"a": "1"})
	gotM, _, err := mapCoder.Decode(rawM)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, gotM)
}

func TestIntKeyedMap_RoundTrip(t *testing.T) {
	c := IntKeyedMap(String())
	in := map[int]string{0: "zero", 5: "five"}
	raw := c.Encode(in)
	got, _, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestMaybe_NullRoundTrips(t *testing.T) {
	c := Maybe(Int())
	raw := c.Encode(nil)
	assert.Nil(t, raw)
	got, _, err := c.Decode(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	n := 5
	raw2 := c.Encode(&n)
	got2, _, err := c.Decode(raw2)
	require.NoError(t, err)
	require.NotNil(t, got2)
	assert.Equal(t, 5, *got2)
}

func TestLazy_SupportsRecursion(t *testing.T) {
	type node struct {
		Value    int
		Children []node
	}
	var nodeCoder Coder[node]
	nodeCoder = Object("node", "recursive", func() node { return node{} },
		FieldRequired("value", "", func(n node) int { return n.Value }, func(n *node, v int) { n.Value = v }, Int()),
		FieldOptional("children", "", func(n node) []node { return n.Children }, func(n *node, v []node) { n.Children = v },
			List(Lazy(func() Coder[node] { return nodeCoder }))),
	)

	in := node{Value: 1, Children: []node{{Value: 2}, {Value: 3, Children: []node{{Value: 4}}}}}
	raw := nodeCoder.Encode(in)
	got, _, err := nodeCoder.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestAndThen_FailsOnInvalidTransform(t *testing.T) {
	positiveInt := AndThen(Int(), func(i int) (int, error) {
		if i < 0 {
			return 0, fail("must be non-negative, got %d", i)
		}
		return i, nil
	}, func(i int) int { return i })

	_, _, err := positiveInt.Decode(float64(-1))
	assert.Error(t, err)

	got, _, err := positiveInt.Decode(float64(3))
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}
