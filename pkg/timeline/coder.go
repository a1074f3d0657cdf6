package timeline

import (
	"github.com/matrix-org/govault/pkg/codec"
	"github.com/matrix-org/govault/pkg/event"
	"github.com/matrix-org/govault/pkg/filter"
	"github.com/matrix-org/govault/pkg/hashdict"
)

// TokenPtrCoder serializes a TokenPtr as either JSON null (StartOfTimeline)
// or the token's bare name string (spec.md §3, §6).
func TokenPtrCoder() codec.Coder[TokenPtr] {
	return codec.MapCoder(codec.Maybe(codec.String()),
		func(name *string) TokenPtr {
			if name == nil {
				return StartOfTimeline()
			}
			return TokenNamed(*name)
		},
		func(p TokenPtr) *string {
			if p.IsStart() {
				return nil
			}
			name := p.Name()
			return &name
		},
	)
}

func intSetCoder() codec.Coder[map[BatchPtr]struct{}] {
	list := codec.List(codec.Int())
	return codec.MapCoder(list,
		func(keys []int) map[BatchPtr]struct{} {
			out := make(map[BatchPtr]struct{}, len(keys))
			for _, k := range keys {
				out[k] = struct{}{}
			}
			return out
		},
		func(m map[BatchPtr]struct{}) []int {
			out := make([]int, 0, len(m))
			for k := range m {
				out = append(out, k)
			}
			return out
		},
	)
}

func strSetCoder() codec.Coder[map[string]struct{}] {
	list := codec.List(codec.String())
	return codec.MapCoder(list,
		func(keys []string) map[string]struct{} {
			out := make(map[string]struct{}, len(keys))
			for _, k := range keys {
				out[k] = struct{}{}
			}
			return out
		},
		func(m map[string]struct{}) []string {
			out := make([]string, 0, len(m))
			for k := range m {
				out = append(out, k)
			}
			return out
		},
	)
}

// ITokenCoder is the codec artifact for IToken (spec.md §3, §6).
func ITokenCoder() codec.Coder[IToken] {
	return codec.Object("IToken", "a node in the timeline's token graph", func() IToken { return newToken("") },
		codec.FieldRequired("name", "", func(t IToken) string { return t.Name }, func(t *IToken, v string) { t.Name = v }, codec.String()),
		codec.FieldRequired("starts", "batches that start at this token", func(t IToken) map[BatchPtr]struct{} { return t.Starts }, func(t *IToken, v map[BatchPtr]struct{}) { t.Starts = v }, intSetCoder()),
		codec.FieldRequired("ends", "batches that end at this token", func(t IToken) map[BatchPtr]struct{} { return t.Ends }, func(t *IToken, v map[BatchPtr]struct{}) { t.Ends = v }, intSetCoder()),
		codec.FieldRequired("in_front_of", "earlier tokens reachable backward from this one", func(t IToken) map[string]struct{} { return t.InFrontOf }, func(t *IToken, v map[string]struct{}) { t.InFrontOf = v }, strSetCoder()),
		codec.FieldRequired("behind", "later tokens this one is known to precede", func(t IToken) map[string]struct{} { return t.Behind }, func(t *IToken, v map[string]struct{}) { t.Behind = v }, strSetCoder()),
	)
}

// IBatchCoder is the codec artifact for IBatch (spec.md §3, §6), wiring in
// event.Coder and filter.Coder for its Events and Filter fields.
func IBatchCoder() codec.Coder[IBatch] {
	tp := TokenPtrCoder()
	return codec.Object("IBatch", "a contiguous slice of timeline events bounded by two tokens", func() IBatch { return IBatch{} },
		codec.FieldRequired("events", "", func(b IBatch) []event.Event { return b.Events }, func(b *IBatch, v []event.Event) { b.Events = v }, codec.List(event.Coder)),
		codec.FieldRequired("filter", "the filter this batch was fetched under", func(b IBatch) filter.Filter { return b.Filter }, func(b *IBatch, v filter.Filter) { b.Filter = v }, filter.Coder()),
		codec.FieldRequired("start", "", func(b IBatch) TokenPtr { return b.Start }, func(b *IBatch, v TokenPtr) { b.Start = v }, tp),
		codec.FieldRequired("end", "", func(b IBatch) TokenPtr { return b.End }, func(b *IBatch, v TokenPtr) { b.End = v }, tp),
	)
}

// timelineWire is the serialized shape of a Timeline, mirroring its
// private fields one-for-one (spec.md §6 "Persisted state layout").
type timelineWire struct {
	Batches          hashdict.Iddict[IBatch]
	EventIndex       map[string][]BatchPtr
	FilledBatchCount int
	MostRecentSync   TokenPtr
	Tokens           hashdict.Hashdict[IToken]
}

// Coder is the codec artifact for Timeline. It lives in this package
// because batches/eventIndex/tokens are unexported.
func Coder() codec.Coder[Timeline] {
	batchesCoder := hashdict.IddictCoder(IBatchCoder())
	eventIndexCoder := codec.MapOfStringKeys(codec.List(codec.Int()))
	tp := TokenPtrCoder()
	tokensCoder := hashdict.Coder(ITokenCoder(), func(t IToken) string { return t.Name })

	wireCoder := codec.Object("Timeline", "the token-linked batch graph", func() timelineWire { return timelineWire{} },
		codec.FieldRequired("batches", "", func(w timelineWire) hashdict.Iddict[IBatch] { return w.Batches }, func(w *timelineWire, v hashdict.Iddict[IBatch]) { w.Batches = v }, batchesCoder),
		codec.FieldRequired("event_index", "", func(w timelineWire) map[string][]BatchPtr { return w.EventIndex }, func(w *timelineWire, v map[string][]BatchPtr) { w.EventIndex = v }, eventIndexCoder),
		codec.FieldRequired("filled_batch_count", "", func(w timelineWire) int { return w.FilledBatchCount }, func(w *timelineWire, v int) { w.FilledBatchCount = v }, codec.Int()),
		codec.FieldRequired("most_recent_sync", "", func(w timelineWire) TokenPtr { return w.MostRecentSync }, func(w *timelineWire, v TokenPtr) { w.MostRecentSync = v }, tp),
		codec.FieldRequired("tokens", "", func(w timelineWire) hashdict.Hashdict[IToken] { return w.Tokens }, func(w *timelineWire, v hashdict.Hashdict[IToken]) { w.Tokens = v }, tokensCoder),
	)

	return codec.MapCoder(wireCoder,
		func(w timelineWire) Timeline {
			eventIndex := w.EventIndex
			if eventIndex == nil {
				eventIndex = map[string][]BatchPtr{}
			}
			return Timeline{
				batches:          w.Batches,
				eventIndex:       eventIndex,
				filledBatchCount: w.FilledBatchCount,
				mostRecentSync:   w.MostRecentSync,
				tokens:           w.Tokens,
			}
		},
		func(tl Timeline) timelineWire {
			return timelineWire{
				Batches:          tl.batches,
				EventIndex:       tl.eventIndex,
				FilledBatchCount: tl.filledBatchCount,
				MostRecentSync:   tl.mostRecentSync,
				Tokens:           tl.tokens,
			}
		},
	)
}
