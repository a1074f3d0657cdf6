package envelope

import (
	"testing"

	"github.com/matrix-org/govault/pkg/mstime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMostPopularToken_PrefersSuggested(t *testing.T) {
	now := mstime.FromMs(1000)
	c := New("example.org").SetNow(now)
	c = c.SetAccessToken(AccessToken{Value: "a", CreatedAt: mstime.FromMs(0)})
	c = c.SetAccessToken(AccessToken{Value: "b", CreatedAt: mstime.FromMs(0)})
	c.SuggestedAccessToken = strPtr("a")

	tok, ok := c.MostPopularToken()
	require.True(t, ok)
	assert.Equal(t, "a", tok.Value)
}

func TestMostPopularToken_UnboundedBeatsBounded(t *testing.T) {
	now := mstime.FromMs(1000)
	c := New("example.org").SetNow(now)
	farExpiry := int64(1_000_000)
	c = c.SetAccessToken(AccessToken{Value: "bounded", CreatedAt: mstime.FromMs(0), ExpiresInMs: &farExpiry})
	c = c.SetAccessToken(AccessToken{Value: "unbounded", CreatedAt: mstime.FromMs(0)})

	tok, ok := c.MostPopularToken()
	require.True(t, ok)
	assert.Equal(t, "unbounded", tok.Value)
}

func TestMostPopularToken_FurthestHorizonWinsAmongBounded(t *testing.T) {
	now := mstime.FromMs(1000)
	c := New("example.org").SetNow(now)
	near := int64(5000)
	far := int64(50000)
	c = c.SetAccessToken(AccessToken{Value: "near", CreatedAt: mstime.FromMs(0), ExpiresInMs: &near})
	c = c.SetAccessToken(AccessToken{Value: "far", CreatedAt: mstime.FromMs(0), ExpiresInMs: &far})

	tok, ok := c.MostPopularToken()
	require.True(t, ok)
	assert.Equal(t, "far", tok.Value)
}

func TestMostPopularToken_ExpiredTokensExcluded(t *testing.T) {
	now := mstime.FromMs(10000)
	c := New("example.org").SetNow(now)
	expired := int64(100)
	c = c.SetAccessToken(AccessToken{Value: "expired", CreatedAt: mstime.FromMs(0), ExpiresInMs: &expired})

	_, ok := c.MostPopularToken()
	assert.False(t, ok)
}

func TestMostPopularToken_NoTokens(t *testing.T) {
	c := New("example.org")
	_, ok := c.MostPopularToken()
	assert.False(t, ok)
}

func strPtr(s string) *string { return &s }
