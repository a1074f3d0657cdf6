// Package dispatch implements versioned dispatch: mapping (operation,
// homeserver-advertised versions) to a concrete request builder/response
// decoder/update emitter (spec.md §4.4).
package dispatch

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"
)

// Version wraps a homeserver-advertised version string (legacy "r0.x.y"
// or modern "v1.x") with a comparable semver.Version, grounded on
// dendrite's own use of Masterminds/semver/v3 to order release versions
// (cmd/dendrite-upgrade-tests) rather than string-comparing version
// strings.
type Version struct {
	Raw    string
	semver *semver.Version
}

// ParseVersion accepts both the legacy "rX.Y.Z" family (r0.0.0-r0.6.1)
// and the modern "vX.Y" family (v1.1+), per spec.md §6's path-segment
// rule, normalizing both into a comparable semver.Version.
func ParseVersion(raw string) (Version, error) {
	trimmed := raw
	if len(trimmed) > 0 && (trimmed[0] == 'r' || trimmed[0] == 'v') {
		trimmed = trimmed[1:]
	}
	// Masterminds/semver tolerates "1.1" (two-component) by treating the
	// missing patch as 0.
	sv, err := semver.NewVersion(trimmed)
	if err != nil {
		return Version{}, fmt.Errorf("dispatch: invalid version %q: %w", raw, err)
	}
	return Version{Raw: raw, semver: sv}, nil
}

// Before reports whether v sorts strictly before other.
func (v Version) Before(other Version) bool { return v.semver.LessThan(other.semver) }

// Equal reports version equality after normalization (so "v1.1" and
// "v1.1.0" compare equal).
func (v Version) Equal(other Version) bool { return v.semver.Equal(other.semver) }

// Max returns the greatest of a non-empty, already-parsed version list.
func Max(versions []Version) Version {
	best := versions[0]
	for _, v := range versions[1:] {
		if best.Before(v) {
			best = v
		}
	}
	return best
}

// ParseAdvertised parses every string in raw, skipping ones that don't
// parse (a homeserver may advertise unstable_features-style strings that
// aren't versions at all; spec.md only asks us to order the well-formed
// ones).
func ParseAdvertised(raw []string) []Version {
	out := make([]Version, 0, len(raw))
	for _, r := range raw {
		if v, err := ParseVersion(r); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// UnsupportedVersionForEndpoint is returned when no declared
// implementation is compatible with the homeserver's advertised versions
// (spec.md §4.4; fields supplemented per SPEC_FULL.md §C.6 so a caller
// can log exactly what failed).
type UnsupportedVersionForEndpoint struct {
	Operation          string
	AdvertisedVersions []string
}

func (e UnsupportedVersionForEndpoint) Error() string {
	return fmt.Sprintf("dispatch: no implementation of %q compatible with advertised versions [%s]",
		e.Operation, strings.Join(e.AdvertisedVersions, ", "))
}

// entry is one declared (version, implementation) pair.
type entry[Impl any] struct {
	version Version
	impl    Impl
}

// Table is the ordered declaration for one logical operation: a starting
// version/implementation, then an ascending sequence of sameForVersion
// (ImplSameAsLatest use) or forVersion (distinct implementation)
// clauses (spec.md §4.4).
type Table[Impl any] struct {
	operation string
	entries   []entry[Impl]
}

// New starts a Table for operation, declaring the floor version v0 with
// implementation impl0.
func New[Impl any](operation, v0 string, impl0 Impl) (*Table[Impl], error) {
	pv, err := ParseVersion(v0)
	if err != nil {
		return nil, err
	}
	return &Table[Impl]{operation: operation, entries: []entry[Impl]{{version: pv, impl: impl0}}}, nil
}

// ForVersion declares that, from v onward, a distinct implementation
// applies (spec.md §4.4 "forVersion V' I'").
func (t *Table[Impl]) ForVersion(v string, impl Impl) (*Table[Impl], error) {
	pv, err := ParseVersion(v)
	if err != nil {
		return nil, err
	}
	t.entries = append(t.entries, entry[Impl]{version: pv, impl: impl})
	return t, nil
}

// SameForVersion declares that, from v onward, the most recently
// declared implementation still applies (spec.md §4.4
// "sameForVersion").
func (t *Table[Impl]) SameForVersion(v string) (*Table[Impl], error) {
	pv, err := ParseVersion(v)
	if err != nil {
		return nil, err
	}
	last := t.entries[len(t.entries)-1].impl
	t.entries = append(t.entries, entry[Impl]{version: pv, impl: last})
	return t, nil
}

// Resolve picks the most recent declared version at or below the
// homeserver's maximum advertised version and returns its implementation
// (spec.md §4.4 "pick the most recent declared version ≤ the
// homeserver's maximum supported"). Fails with
// UnsupportedVersionForEndpoint if none qualifies.
func (t *Table[Impl]) Resolve(advertisedRaw []string) (Impl, error) {
	var zero Impl
	advertised := ParseAdvertised(advertisedRaw)
	if len(advertised) == 0 {
		logrus.WithField("operation", t.operation).WithField("advertised", advertisedRaw).
			Warn("dispatch: no parseable advertised version")
		return zero, UnsupportedVersionForEndpoint{Operation: t.operation, AdvertisedVersions: advertisedRaw}
	}
	max := Max(advertised)

	found := false
	var best entry[Impl]
	for _, e := range t.entries {
		if e.version.Before(max) || e.version.Equal(max) {
			if !found || best.version.Before(e.version) {
				best, found = e, true
			}
		}
	}
	if !found {
		logrus.WithField("operation", t.operation).WithField("advertised", advertisedRaw).
			Warn("dispatch: no implementation compatible with advertised versions")
		return zero, UnsupportedVersionForEndpoint{Operation: t.operation, AdvertisedVersions: advertisedRaw}
	}
	return best.impl, nil
}
