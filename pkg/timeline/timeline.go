// Package timeline implements the token-linked batch graph described in
// spec.md §3 and §4.3 — the hardest piece of the reconciler: a structure
// that can answer "most recent events under filter F" even though
// batches arrive out of order, under different filters, and with gaps.
package timeline

import (
	"github.com/matrix-org/govault/pkg/event"
	"github.com/matrix-org/govault/pkg/filter"
	"github.com/matrix-org/govault/pkg/hashdict"
)

// TokenPtr is either StartOfTimeline or a named, server-issued token.
type TokenPtr struct {
	name    string
	isStart bool
}

// StartOfTimeline is the sentinel TokenPtr marking the beginning of a
// room's history.
func StartOfTimeline() TokenPtr { return TokenPtr{isStart: true} }

// TokenNamed builds a TokenPtr for a concrete server token.
func TokenNamed(name string) TokenPtr { return TokenPtr{name: name} }

// IsStart reports whether p is the StartOfTimeline sentinel.
func (p TokenPtr) IsStart() bool { return p.isStart }

// Name returns the token's name; only meaningful when !IsStart().
func (p TokenPtr) Name() string { return p.name }

// BatchPtr is an arena handle into the Timeline's batch store.
type BatchPtr = int

// IToken is a node in the token graph: which batches start/end here, and
// which other tokens are known to be strictly before it in wall time
// (spec.md §3).
type IToken struct {
	Name      string
	Starts    map[BatchPtr]struct{}
	Ends      map[BatchPtr]struct{}
	InFrontOf map[string]struct{} // earlier tokens reachable by walking backward from this one
	Behind    map[string]struct{} // later tokens this one is known to precede
}

func newToken(name string) IToken {
	return IToken{
		Name:      name,
		Starts:    map[BatchPtr]struct{}{},
		Ends:      map[BatchPtr]struct{}{},
		InFrontOf: map[string]struct{}{},
		Behind:    map[string]struct{}{},
	}
}

func (t IToken) withStart(b BatchPtr) IToken {
	t.Starts = cloneSet(t.Starts)
	t.Starts[b] = struct{}{}
	return t
}

func (t IToken) withEnd(b BatchPtr) IToken {
	t.Ends = cloneSet(t.Ends)
	t.Ends[b] = struct{}{}
	return t
}

func (t IToken) withInFrontOf(name string) IToken {
	t.InFrontOf = cloneStrSet(t.InFrontOf)
	t.InFrontOf[name] = struct{}{}
	return t
}

func (t IToken) withBehind(name string) IToken {
	t.Behind = cloneStrSet(t.Behind)
	t.Behind[name] = struct{}{}
	return t
}

func cloneSet(s map[BatchPtr]struct{}) map[BatchPtr]struct{} {
	out := make(map[BatchPtr]struct{}, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func cloneStrSet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// IBatch is a contiguous slice of timeline events bounded by two tokens
// and tagged with the filter under which it was fetched (spec.md §3).
type IBatch struct {
	Events []event.Event
	Filter filter.Filter
	Start  TokenPtr
	End    TokenPtr
}

// Batch is the caller-facing insertion request (spec.md §4.3).
type Batch struct {
	Events []event.Event
	Filter filter.Filter
	Start  *string // nil means absent -> StartOfTimeline
	End    string
}

// Timeline is the token-linked batch graph (spec.md §3).
type Timeline struct {
	batches          hashdict.Iddict[IBatch]
	eventIndex       map[string][]BatchPtr
	filledBatchCount int
	mostRecentSync   TokenPtr
	tokens           hashdict.Hashdict[IToken]
}

// New returns an empty Timeline positioned at StartOfTimeline.
func New() Timeline {
	return Timeline{
		batches:        hashdict.NewIddict[IBatch](),
		eventIndex:     map[string][]BatchPtr{},
		mostRecentSync: StartOfTimeline(),
		tokens:         hashdict.New[IToken](func(t IToken) string { return t.Name }),
	}
}

// FilledBatchCount is the number of inserted batches with non-empty event
// lists (spec.md §3 invariant).
func (tl Timeline) FilledBatchCount() int { return tl.filledBatchCount }

// MostRecentSync returns the token most recently installed by AddSync.
func (tl Timeline) MostRecentSync() TokenPtr { return tl.mostRecentSync }

// BatchesForEvent returns the batch handles an event id appears in (an
// event may appear in multiple batches fetched under different filters,
// spec.md §3).
func (tl Timeline) BatchesForEvent(eventID string) []BatchPtr {
	return append([]BatchPtr(nil), tl.eventIndex[eventID]...)
}

// Batch looks a batch up by handle.
func (tl Timeline) Batch(ptr BatchPtr) (IBatch, bool) {
	return tl.batches.Get(ptr)
}

func (tl Timeline) clone() Timeline {
	out := tl
	out.eventIndex = make(map[string][]BatchPtr, len(tl.eventIndex))
	for k, v := range tl.eventIndex {
		out.eventIndex[k] = append([]BatchPtr(nil), v...)
	}
	return out
}

func (tl Timeline) ensureToken(tokens hashdict.Hashdict[IToken], name string) hashdict.Hashdict[IToken] {
	if _, ok := tokens.Get(name); ok {
		return tokens
	}
	return tokens.Insert(newToken(name))
}

// Insert appends a Batch to the timeline (spec.md §4.3 "Insertion").
func (tl Timeline) Insert(b Batch) Timeline {
	out := tl.clone()
	tokens := tl.ensureToken(out.tokens, b.End)

	var startPtr TokenPtr
	if b.Start != nil {
		tokens = tl.ensureToken(tokens, *b.Start)
		startPtr = TokenNamed(*b.Start)
	} else {
		startPtr = StartOfTimeline()
	}
	endPtr := TokenNamed(b.End)

	batchID, batches := out.batches.Insert(IBatch{Events: b.Events, Filter: b.Filter, Start: startPtr, End: endPtr})
	out.batches = batches

	if !startPtr.IsStart() {
		startTok, _ := tokens.Get(startPtr.Name())
		tokens = tokens.Insert(startTok.withStart(batchID))
	}
	endTok, _ := tokens.Get(endPtr.Name())
	tokens = tokens.Insert(endTok.withEnd(batchID))
	out.tokens = tokens

	for _, e := range b.Events {
		out.eventIndex[e.EventID] = append(out.eventIndex[e.EventID], batchID)
	}
	if len(b.Events) > 0 {
		out.filledBatchCount++
	}
	return out
}

// AddSync inserts b and then, unless the prior mostRecentSync coincides
// with the new end token, records an inFrontOf/behind edge expressing
// that sync-returned batches sit strictly at the front of wall time
// (spec.md §4.3 "Sync insertion").
func (tl Timeline) AddSync(b Batch) Timeline {
	out := tl.Insert(b)
	newEndName := b.End
	if !tl.mostRecentSync.IsStart() && tl.mostRecentSync.Name() != newEndName {
		oldName := tl.mostRecentSync.Name()
		tokens := tl.ensureToken(out.tokens, oldName)
		oldTok, _ := tokens.Get(oldName)
		tokens = tokens.Insert(oldTok.withBehind(newEndName))
		newTok, _ := tokens.Get(newEndName)
		tokens = tokens.Insert(newTok.withInFrontOf(oldName))
		out.tokens = tokens
	}
	out.mostRecentSync = TokenNamed(newEndName)
	return out
}
