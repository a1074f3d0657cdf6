package timeline

import (
	"github.com/matrix-org/govault/pkg/event"
	"github.com/matrix-org/govault/pkg/filter"
)

// Candidate is one possible reconstruction of the timeline tail, in
// chronological (oldest-first) order (spec.md §4.3).
type Candidate struct {
	Events []event.Event
}

// frame is the explicit work-list entry the iterative walk pushes/pops,
// replacing native recursion so deeply nested/looping token graphs don't
// blow the Go call stack (spec.md §9 "Cyclic token graphs").
type frame struct {
	token         TokenPtr
	reverseEvents []event.Event
	visited       map[string]struct{}
}

// MostRecentEventsFrom walks backward from start, returning every
// candidate reconstruction of the timeline tail reachable under f
// (spec.md §4.3). Loops in the token graph are detected per-candidate: a
// token may not be revisited within one walk.
func (tl Timeline) MostRecentEventsFrom(f filter.Filter, start TokenPtr) []Candidate {
	var results []Candidate
	stack := []frame{{token: start, visited: map[string]struct{}{}}}

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if fr.token.IsStart() {
			results = append(results, finish(fr.reverseEvents))
			continue
		}

		name := fr.token.Name()
		if _, seen := fr.visited[name]; seen {
			results = append(results, finish(fr.reverseEvents))
			continue
		}
		visited := cloneStrSet(fr.visited)
		visited[name] = struct{}{}

		tok, ok := tl.tokens.Get(name)
		if !ok {
			results = append(results, finish(fr.reverseEvents))
			continue
		}

		qualifying := qualifyingBatches(tl, tok, f)
		if len(qualifying) > 0 {
			for _, b := range qualifying {
				stack = append(stack, frame{
					token:         b.Start,
					reverseEvents: appendReversed(fr.reverseEvents, b.Events),
					visited:       visited,
				})
			}
			continue
		}

		if len(tok.InFrontOf) > 0 {
			for earlier := range tok.InFrontOf {
				stack = append(stack, frame{
					token:         TokenNamed(earlier),
					reverseEvents: fr.reverseEvents,
					visited:       visited,
				})
			}
			continue
		}

		// Gap: no batch covers this token and there is no sync-chain
		// edge to an earlier token either (spec.md §4.3 "Gap semantics").
		results = append(results, finish(fr.reverseEvents))
	}

	return results
}

// MostRecentEvents walks backward from the timeline's mostRecentSync
// token (spec.md §4.3).
func (tl Timeline) MostRecentEvents(f filter.Filter) []Candidate {
	return tl.MostRecentEventsFrom(f, tl.mostRecentSync)
}

// Longest filters candidates down to those tied for the greatest event
// count (spec.md §4.3: "the caller receives the longest-fork set...
// ties preserved"). The raw candidate list returned by
// MostRecentEvent(s)(From) already contains every fork; Longest is an
// opt-in convenience for callers that want a single best-effort answer.
func Longest(candidates []Candidate) []Candidate {
	best := -1
	for _, c := range candidates {
		if len(c.Events) > best {
			best = len(c.Events)
		}
	}
	var out []Candidate
	for _, c := range candidates {
		if len(c.Events) == best {
			out = append(out, c)
		}
	}
	return out
}

func qualifyingBatches(tl Timeline, tok IToken, f filter.Filter) []IBatch {
	var out []IBatch
	for ptr := range tok.Ends {
		b, ok := tl.batches.Get(ptr)
		if !ok {
			continue
		}
		if f.SubsetOf(b.Filter) {
			out = append(out, b)
		}
	}
	return out
}

func appendReversed(base []event.Event, events []event.Event) []event.Event {
	out := make([]event.Event, 0, len(base)+len(events))
	out = append(out, base...)
	for i := len(events) - 1; i >= 0; i-- {
		out = append(out, events[i])
	}
	return out
}

func finish(reverseEvents []event.Event) Candidate {
	out := make([]event.Event, len(reverseEvents))
	for i, e := range reverseEvents {
		out[len(reverseEvents)-1-i] = e
	}
	return Candidate{Events: out}
}
