package taskchain

import (
	"errors"
	"testing"

	"github.com/matrix-org/govault/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAndThen_ShortCircuitsOnFailure(t *testing.T) {
	ran := false
	first := Fail[int](errors.New("boom"))
	next := func(ctx int) Result[int] {
		ran = true
		return Result[int]{Ok: true, Context: ctx}
	}
	r := AndThen(first, next)(0)

	require.False(t, r.Ok)
	assert.False(t, ran)
	assert.EqualError(t, r.Err, "boom")
}

func TestAndThen_ConcatenatesLogsAndUpdatesInOrder(t *testing.T) {
	first := func(ctx int) Result[int] {
		return Result[int]{Ok: true, Context: ctx, Logs: []codec.Log{"a"}}
	}
	next := func(ctx int) Result[int] {
		return Result[int]{Ok: true, Context: ctx, Logs: []codec.Log{"b"}}
	}
	r := AndThen(Step[int](first), next)(0)

	assert.Equal(t, []codec.Log{"a", "b"}, r.Logs)
}

func TestOnError_Reroutes(t *testing.T) {
	first := Fail[int](errors.New("boom"))
	r := OnError(first, func(err error, ctx int) Step[int] {
		return Succeed[int]()
	})(0)

	assert.True(t, r.Ok)
}

func TestCatchWith_SubstitutesValue(t *testing.T) {
	first := Fail[int](errors.New("boom"))
	r := CatchWith(first, 42)(0)

	require.True(t, r.Ok)
	assert.Equal(t, 42, r.Context)
}

func TestMaybe_IgnoresFailure(t *testing.T) {
	first := Fail[int](errors.New("boom"))
	r := Maybe(first)(7)

	require.True(t, r.Ok)
	assert.Equal(t, 7, r.Context)
}

func TestConfigurationIncomplete_Error(t *testing.T) {
	err := ConfigurationIncomplete{MissingFields: []string{"accessToken", "baseUrl"}}
	assert.Contains(t, err.Error(), "accessToken")
	assert.Contains(t, err.Error(), "baseUrl")
}
