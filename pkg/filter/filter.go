// Package filter declares the Filter abstraction the Timeline treats as
// opaque (spec.md §1, §4.3, §9 "Filter opacity"): the reconciler only ever
// calls Pass, And and SubsetOf. The concrete Matrix filter grammar
// (/sync's `filter` query parameter) is out of scope; this package
// exposes the same three-operation interface so any real filter
// implementation can be plugged in, plus a couple of minimal concrete
// filters used by the rest of this module's tests.
package filter

import "github.com/matrix-org/govault/pkg/event"

// Filter is the three-operation interface the Timeline consumes.
type Filter interface {
	// Pass reports whether e is admitted by this filter.
	Pass(e event.Event) bool
	// And returns a filter admitting only events both filters admit.
	And(other Filter) Filter
	// SubsetOf reports whether every event this filter admits is also
	// admitted by other — i.e. "this ⊆ other" (spec.md §4.3 writes this
	// as subsetOf F G meaning F's admitted set is contained in G's).
	SubsetOf(other Filter) bool
}

// andFilter is the generic And() result: conjunction of two filters. It
// is itself a Filter so And nests without special-casing.
type andFilter struct {
	left, right Filter
}

func (f andFilter) Pass(e event.Event) bool {
	return f.left.Pass(e) && f.right.Pass(e)
}

func (f andFilter) And(other Filter) Filter {
	return andFilter{left: f, right: other}
}

func (f andFilter) SubsetOf(other Filter) bool {
	// Conservative: a conjunction is provably a subset of `other` only
	// when `other` is the identity filter (admits everything). ByEventTypes
	// values are maps and so are not comparable with ==, which rules out a
	// general structural-equality shortcut here; see ByEventTypes.SubsetOf
	// for the one pair of concrete types this package can compare precisely.
	_, ok := other.(allFilter)
	return ok
}

// All admits every event; it is the identity for And and a superset of
// every filter, used as the default when an operation does not narrow
// its request.
type allFilter struct{}

// All returns the always-admit filter.
func All() Filter { return allFilter{} }

func (allFilter) Pass(event.Event) bool { return true }
func (allFilter) And(other Filter) Filter {
	return other
}
func (allFilter) SubsetOf(other Filter) bool {
	_, ok := other.(allFilter)
	return ok
}
func (allFilter) isAll() bool { return true }

// ByEventTypes admits events whose EventType is in the given set. Two
// ByEventTypes filters compare by set containment for SubsetOf, which is
// the concrete case spec.md's worked examples (§8, §4.3) exercise.
type ByEventTypes map[string]struct{}

// NewByEventTypes builds a ByEventTypes filter from a list of type names.
func NewByEventTypes(types ...string) ByEventTypes {
	set := make(ByEventTypes, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

func (f ByEventTypes) Pass(e event.Event) bool {
	_, ok := f[e.EventType]
	return ok
}

func (f ByEventTypes) And(other Filter) Filter {
	if o, ok := other.(ByEventTypes); ok {
		out := make(ByEventTypes)
		for t := range f {
			if _, in := o[t]; in {
				out[t] = struct{}{}
			}
		}
		return out
	}
	return andFilter{left: f, right: other}
}

func (f ByEventTypes) SubsetOf(other Filter) bool {
	if o, ok := other.(ByEventTypes); ok {
		for t := range f {
			if _, in := o[t]; !in {
				return false
			}
		}
		return true
	}
	if _, ok := other.(allFilter); ok {
		return true
	}
	// Filter is opaque by design (spec.md §9): a ByEventTypes filter has
	// no general way to compare itself against an arbitrary concrete
	// filter type it doesn't recognise, so it conservatively reports
	// "not a subset" rather than guessing.
	return false
}
