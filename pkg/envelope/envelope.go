// Package envelope implements Envelope<T>, Context, and Settings: the
// uniform wrapper carrying tokens, endpoints, and process-wide defaults
// around every value the core transforms (spec.md §3).
package envelope

import (
	"github.com/matrix-org/gomatrixserverlib/spec"
	"github.com/matrix-org/govault/pkg/mstime"
)

// Settings are process-wide defaults, analogous to dendrite's
// setup/config sections: a plain struct with a Defaults() constructor
// (SPEC_FULL.md §A.3). Serialization omits fields equal to Defaults().
type Settings struct {
	CurrentVersion        string
	DeviceName            string
	RemovePasswordOnLogin bool
	SyncTimeMs            int64
}

// Defaults returns the process-wide default Settings (spec.md §3).
func Defaults() Settings {
	return Settings{
		CurrentVersion:        "v1.11",
		DeviceName:            "govault",
		RemovePasswordOnLogin: true,
		SyncTimeMs:            30000,
	}
}

// AccessToken is one credential in Context's keyed token collection
// (spec.md §3).
type AccessToken struct {
	Value       string
	CreatedAt   mstime.Timestamp
	ExpiresInMs *int64
	LastUsedAt  *mstime.Timestamp
	RefreshID   *string
}

// horizon is the instant beyond which this token is assumed expired;
// tokens with no ExpiresInMs never expire.
func (a AccessToken) horizon() (mstime.Timestamp, bool) {
	if a.ExpiresInMs == nil {
		return 0, false
	}
	return mstime.Add(a.CreatedAt, *a.ExpiresInMs), true
}

func (a AccessToken) expired(now mstime.Timestamp) bool {
	h, has := a.horizon()
	if !has {
		return false
	}
	return mstime.Before(h, now)
}

// Context is the mutable field bag accumulated by the request pipeline
// (spec.md §3). Every field is optional except ServerName.
type Context struct {
	ServerName           spec.ServerName
	BaseURL              *string
	DeviceID             *string
	NextBatch            *string
	Now                  *mstime.Timestamp
	Password             *string
	RefreshToken         *string
	UserName             *string
	SuggestedAccessToken *string
	LastTransactionID    *string
	AdvertisedVersions   []string
	AccessTokens         map[string]AccessToken // keyed by AccessToken.Value
}

// New returns a Context for serverName with no other fields populated.
func New(serverName spec.ServerName) Context {
	return Context{ServerName: serverName, AccessTokens: map[string]AccessToken{}}
}

// MostPopularToken returns the non-expired token with the latest
// (creation + expiry) horizon, preferring SuggestedAccessToken if set
// (spec.md §3 invariant). An unexpiring token's horizon is treated as
// infinitely far in the future.
func (c Context) MostPopularToken() (AccessToken, bool) {
	if c.SuggestedAccessToken != nil {
		if tok, ok := c.AccessTokens[*c.SuggestedAccessToken]; ok {
			return tok, true
		}
	}
	now := mstime.Now()
	if c.Now != nil {
		now = *c.Now
	}

	var best AccessToken
	found := false
	var bestHorizon mstime.Timestamp
	bestUnbounded := false

	for _, tok := range c.AccessTokens {
		if tok.expired(now) {
			continue
		}
		h, bounded := tok.horizon()
		switch {
		case !found:
			best, bestHorizon, bestUnbounded, found = tok, h, !bounded, true
		case !bounded && !bestUnbounded:
			best, bestUnbounded, found = tok, true, true
		case bounded && !bestUnbounded && mstime.Before(bestHorizon, h):
			best, bestHorizon, found = tok, h, true
		}
	}
	return best, found
}

func (c Context) clone() Context {
	out := c
	out.AccessTokens = make(map[string]AccessToken, len(c.AccessTokens))
	for k, v := range c.AccessTokens {
		out.AccessTokens[k] = v
	}
	out.AdvertisedVersions = append([]string(nil), c.AdvertisedVersions...)
	return out
}

// SetAccessToken records tok, keyed by its value.
func (c Context) SetAccessToken(tok AccessToken) Context {
	out := c.clone()
	out.AccessTokens[tok.Value] = tok
	return out
}

// RemoveAccessToken drops the token with the given value.
func (c Context) RemoveAccessToken(value string) Context {
	out := c.clone()
	delete(out.AccessTokens, value)
	if c.SuggestedAccessToken != nil && *c.SuggestedAccessToken == value {
		out.SuggestedAccessToken = nil
	}
	return out
}

// SetVersions records the homeserver's advertised versions.
func (c Context) SetVersions(versions []string) Context {
	out := c.clone()
	out.AdvertisedVersions = append([]string(nil), versions...)
	return out
}

// SetNow records the current wall-clock timestamp (spec.md §9 "Global
// time": no ambient clock, "now" is always explicitly injected).
func (c Context) SetNow(now mstime.Timestamp) Context {
	out := c.clone()
	out.Now = &now
	return out
}

// SetBaseURL records the homeserver's base URL.
func (c Context) SetBaseURL(url string) Context {
	out := c.clone()
	out.BaseURL = &url
	return out
}

// SetDeviceID records the client device id.
func (c Context) SetDeviceID(id string) Context {
	out := c.clone()
	out.DeviceID = &id
	return out
}

// SetNextBatch records the sync cursor on the context (distinct from
// Vault.NextBatch; the task chain reads this copy when building the next
// /sync request, spec.md §4.6 "SetNextBatch" appears on both
// EnvelopeUpdate and VaultUpdate).
func (c Context) SetNextBatch(token string) Context {
	out := c.clone()
	out.NextBatch = &token
	return out
}

// SetRefreshToken records a refresh token.
func (c Context) SetRefreshToken(token string) Context {
	out := c.clone()
	out.RefreshToken = &token
	return out
}

// RemovePasswordIfNecessary clears Password when Settings says to
// (spec.md §4.6 "RemovePasswordIfNecessary").
func (c Context) RemovePasswordIfNecessary(s Settings) Context {
	if !s.RemovePasswordOnLogin || c.Password == nil {
		return c
	}
	out := c.clone()
	out.Password = nil
	return out
}

// Envelope wraps a content value with the Context and Settings that
// travel with it through every update (spec.md §3).
type Envelope[T any] struct {
	Content  T
	Context  Context
	Settings Settings
}

// NewEnvelope wraps content with ctx and s.
func NewEnvelope[T any](content T, ctx Context, s Settings) Envelope[T] {
	return Envelope[T]{Content: content, Context: ctx, Settings: s}
}

// WithContent replaces the envelope's content, preserving Context and
// Settings (spec.md §3: "all operations on T preserve context and
// settings unless explicitly changed by an update").
func (e Envelope[T]) WithContent(content T) Envelope[T] {
	e.Content = content
	return e
}

// WithContext replaces the envelope's context.
func (e Envelope[T]) WithContext(ctx Context) Envelope[T] {
	e.Context = ctx
	return e
}
