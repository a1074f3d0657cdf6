package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_PicksHighestCompatibleVersion(t *testing.T) {
	table, err := New("invite", "r0.0.0", "r0-impl")
	require.NoError(t, err)
	table, err = table.ForVersion("v1.1", "v3-impl")
	require.NoError(t, err)

	impl, err := table.Resolve([]string{"r0.6.1"})
	require.NoError(t, err)
	assert.Equal(t, "r0-impl", impl)

	impl, err = table.Resolve([]string{"v1.4"})
	require.NoError(t, err)
	assert.Equal(t, "v3-impl", impl)
}

func TestResolve_SameForVersionReusesLastImpl(t *testing.T) {
	table, err := New("sync", "v1.1", "v2-impl")
	require.NoError(t, err)
	table, err = table.SameForVersion("v1.3")
	require.NoError(t, err)

	impl, err := table.Resolve([]string{"v1.2"})
	require.NoError(t, err)
	assert.Equal(t, "v2-impl", impl)
}

func TestResolve_FailsBelowFloorVersion(t *testing.T) {
	table, err := New("invite", "v1.1", "v3-impl")
	require.NoError(t, err)

	_, err = table.Resolve([]string{"r0.5.0"})
	require.Error(t, err)
	var unsupported UnsupportedVersionForEndpoint
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "invite", unsupported.Operation)
}

func TestParseVersion_AcceptsLegacyAndModern(t *testing.T) {
	r, err := ParseVersion("r0.6.1")
	require.NoError(t, err)
	v, err := ParseVersion("v1.11")
	require.NoError(t, err)
	assert.True(t, r.Before(v))
}
