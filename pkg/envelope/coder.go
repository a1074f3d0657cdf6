package envelope

import (
	"github.com/matrix-org/gomatrixserverlib/spec"
	"github.com/matrix-org/govault/pkg/codec"
	"github.com/matrix-org/govault/pkg/mstime"
)

func tsCoder() codec.Coder[mstime.Timestamp] {
	return codec.MapCoder(codec.Float(),
		func(f float64) mstime.Timestamp { return mstime.FromMs(int64(f)) },
		func(t mstime.Timestamp) float64 { return float64(mstime.ToMs(t)) },
	)
}

func serverNameCoder() codec.Coder[spec.ServerName] {
	return codec.MapCoder(codec.String(),
		func(s string) spec.ServerName { return spec.ServerName(s) },
		func(s spec.ServerName) string { return string(s) },
	)
}

// SettingsCoder is the codec artifact for Settings (spec.md §3,
// SPEC_FULL.md §A.3 "serialization omits fields equal to Defaults()").
// Every field is a FieldDefault against Defaults() so encoding a Settings
// that hasn't diverged from the process-wide defaults elides it entirely.
func SettingsCoder() codec.Coder[Settings] {
	d := Defaults()
	return codec.Object("Settings", "process-wide defaults carried alongside an Envelope", func() Settings { return Defaults() },
		codec.FieldDefault("current_version", "", d.CurrentVersion, func(a, b string) bool { return a == b }, func(s Settings) string { return s.CurrentVersion }, func(s *Settings, v string) { s.CurrentVersion = v }, codec.String()),
		codec.FieldDefault("device_name", "", d.DeviceName, func(a, b string) bool { return a == b }, func(s Settings) string { return s.DeviceName }, func(s *Settings, v string) { s.DeviceName = v }, codec.String()),
		codec.FieldDefault("remove_password_on_login", "", d.RemovePasswordOnLogin, func(a, b bool) bool { return a == b }, func(s Settings) bool { return s.RemovePasswordOnLogin }, func(s *Settings, v bool) { s.RemovePasswordOnLogin = v }, codec.Bool()),
		codec.FieldDefault("sync_time_ms", "", d.SyncTimeMs, func(a, b int64) bool { return a == b }, func(s Settings) int64 { return s.SyncTimeMs }, func(s *Settings, v int64) { s.SyncTimeMs = v }, codec.MapCoder(codec.Float(), func(f float64) int64 { return int64(f) }, func(i int64) float64 { return float64(i) })),
	)
}

// AccessTokenCoder is the codec artifact for AccessToken (spec.md §3).
func AccessTokenCoder() codec.Coder[AccessToken] {
	int64Ptr := codec.Maybe(codec.MapCoder(codec.Float(), func(f float64) int64 { return int64(f) }, func(i int64) float64 { return float64(i) }))
	return codec.Object("AccessToken", "one credential in Context's keyed token collection", func() AccessToken { return AccessToken{} },
		codec.FieldRequired("value", "", func(a AccessToken) string { return a.Value }, func(a *AccessToken, v string) { a.Value = v }, codec.String()),
		codec.FieldRequired("created_at", "", func(a AccessToken) mstime.Timestamp { return a.CreatedAt }, func(a *AccessToken, v mstime.Timestamp) { a.CreatedAt = v }, tsCoder()),
		codec.FieldOptional("expires_in_ms", "", func(a AccessToken) *int64 { return a.ExpiresInMs }, func(a *AccessToken, v *int64) { a.ExpiresInMs = v }, int64Ptr),
		codec.FieldOptional("last_used_at", "", func(a AccessToken) *mstime.Timestamp { return a.LastUsedAt }, func(a *AccessToken, v *mstime.Timestamp) { a.LastUsedAt = v }, codec.Maybe(tsCoder())),
		codec.FieldOptional("refresh_id", "", func(a AccessToken) *string { return a.RefreshID }, func(a *AccessToken, v *string) { a.RefreshID = v }, codec.Maybe(codec.String())),
	)
}

// ContextCoder is the codec artifact for Context (spec.md §3).
func ContextCoder() codec.Coder[Context] {
	tokens := codec.MapOfStringKeys(AccessTokenCoder())
	return codec.Object("Context", "the mutable field bag accumulated by the request pipeline", func() Context { return New("") },
		codec.FieldRequired("server_name", "", func(c Context) spec.ServerName { return c.ServerName }, func(c *Context, v spec.ServerName) { c.ServerName = v }, serverNameCoder()),
		codec.FieldOptional("base_url", "", func(c Context) *string { return c.BaseURL }, func(c *Context, v *string) { c.BaseURL = v }, codec.Maybe(codec.String())),
		codec.FieldOptional("device_id", "", func(c Context) *string { return c.DeviceID }, func(c *Context, v *string) { c.DeviceID = v }, codec.Maybe(codec.String())),
		codec.FieldOptional("next_batch", "", func(c Context) *string { return c.NextBatch }, func(c *Context, v *string) { c.NextBatch = v }, codec.Maybe(codec.String())),
		codec.FieldOptional("now", "", func(c Context) *mstime.Timestamp { return c.Now }, func(c *Context, v *mstime.Timestamp) { c.Now = v }, codec.Maybe(tsCoder())),
		codec.FieldOptional("password", "", func(c Context) *string { return c.Password }, func(c *Context, v *string) { c.Password = v }, codec.Maybe(codec.String())),
		codec.FieldOptional("refresh_token", "", func(c Context) *string { return c.RefreshToken }, func(c *Context, v *string) { c.RefreshToken = v }, codec.Maybe(codec.String())),
		codec.FieldOptional("user_name", "", func(c Context) *string { return c.UserName }, func(c *Context, v *string) { c.UserName = v }, codec.Maybe(codec.String())),
		codec.FieldOptional("suggested_access_token", "", func(c Context) *string { return c.SuggestedAccessToken }, func(c *Context, v *string) { c.SuggestedAccessToken = v }, codec.Maybe(codec.String())),
		codec.FieldOptional("last_transaction_id", "", func(c Context) *string { return c.LastTransactionID }, func(c *Context, v *string) { c.LastTransactionID = v }, codec.Maybe(codec.String())),
		codec.FieldOptional("advertised_versions", "", func(c Context) []string { return c.AdvertisedVersions }, func(c *Context, v []string) { c.AdvertisedVersions = v }, codec.List(codec.String())),
		codec.FieldOptional("access_tokens", "keyed by AccessToken.Value", func(c Context) map[string]AccessToken { return c.AccessTokens }, func(c *Context, v map[string]AccessToken) { c.AccessTokens = v }, tokens),
	)
}

// Coder builds a Coder[Envelope[T]] from a content coder, serializing as
// {"content": ..., "context": ..., "settings": ...} per spec.md §6
// ("the Envelope serializes as {content, context, settings}").
func Coder[T any](content codec.Coder[T]) codec.Coder[Envelope[T]] {
	return codec.Object("Envelope", "content wrapped with its Context and Settings", func() Envelope[T] { return Envelope[T]{} },
		codec.FieldRequired("content", "", func(e Envelope[T]) T { return e.Content }, func(e *Envelope[T], v T) { e.Content = v }, content),
		codec.FieldRequired("context", "", func(e Envelope[T]) Context { return e.Context }, func(e *Envelope[T], v Context) { e.Context = v }, ContextCoder()),
		codec.FieldRequired("settings", "", func(e Envelope[T]) Settings { return e.Settings }, func(e *Envelope[T], v Settings) { e.Settings = v }, SettingsCoder()),
	)
}
