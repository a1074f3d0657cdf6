// Package mstime wraps the Matrix wire-level millisecond timestamp.
//
// Rather than re-inventing a timestamp type, this reuses
// gomatrixserverlib/spec.Timestamp — the same type dendrite itself stores
// in its user and receipt tables — and adds the add/toMs operations the
// reconciler needs.
package mstime

import (
	"time"

	"github.com/matrix-org/gomatrixserverlib/spec"
)

// Timestamp is an opaque millisecond-epoch instant.
type Timestamp = spec.Timestamp

// Now returns the current wall-clock time as a Timestamp. Components that
// need "now" as an injected capability (see spec.md §9, "Global time")
// should take a `func() Timestamp` rather than calling Now directly.
func Now() Timestamp {
	return spec.AsTimestamp(time.Now())
}

// Add returns t shifted by delta milliseconds (delta may be negative).
func Add(t Timestamp, deltaMs int64) Timestamp {
	return Timestamp(int64(t) + deltaMs)
}

// ToMs returns the raw millisecond value.
func ToMs(t Timestamp) int64 {
	return int64(t)
}

// FromMs builds a Timestamp from a raw millisecond value.
func FromMs(ms int64) Timestamp {
	return Timestamp(ms)
}

// Before reports whether t is strictly earlier than other.
func Before(t, other Timestamp) bool {
	return int64(t) < int64(other)
}
