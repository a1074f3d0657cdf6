package timeline

import (
	"testing"

	"github.com/matrix-org/govault/pkg/event"
	"github.com/matrix-org/govault/pkg/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evt(id string) event.Event { return event.Event{EventID: id} }

func ids(events []event.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.EventID
	}
	return out
}

func candidateIDs(cands []Candidate) [][]string {
	out := make([][]string, len(cands))
	for i, c := range cands {
		out[i] = ids(c.Events)
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestTimeline_SingleSyncJoin(t *testing.T) {
	tl := New()
	tl = tl.AddSync(Batch{Events: []event.Event{evt("e1")}, Filter: filter.All(), End: "t1"})

	cands := tl.MostRecentEvents(filter.All())
	require.Len(t, cands, 1)
	assert.Equal(t, []string{"e1"}, ids(cands[0].Events))
}

func TestTimeline_BridgingAcrossTwoSyncs(t *testing.T) {
	tl := New()
	tl = tl.AddSync(Batch{Events: []event.Event{evt("e1")}, Filter: filter.All(), End: "t1"})
	tl = tl.AddSync(Batch{Events: []event.Event{evt("e2")}, Filter: filter.All(), Start: strPtr("t1"), End: "t2"})

	cands := tl.MostRecentEvents(filter.All())
	require.Len(t, cands, 1)
	assert.Equal(t, []string{"e1", "e2"}, ids(cands[0].Events))
}

func TestTimeline_GapWhenNoBatchAndNoPriorToken(t *testing.T) {
	tl := New()
	// AddSync records tokens t1 and t2 only; querying from a token the
	// timeline has never seen hits a gap and yields one empty candidate.
	tl = tl.AddSync(Batch{Events: []event.Event{evt("e2")}, Filter: filter.All(), Start: strPtr("t1"), End: "t2"})

	cands := tl.MostRecentEventsFrom(filter.All(), TokenNamed("unknown-token"))
	require.Len(t, cands, 1)
	assert.Empty(t, cands[0].Events)
}

func TestTimeline_NarrowerFilterCausesGap(t *testing.T) {
	tl := New()
	narrow := filter.NewByEventTypes("m.room.message")
	e1 := event.Event{EventID: "e1", EventType: "m.room.member"}
	tl = tl.AddSync(Batch{Events: []event.Event{e1}, Filter: narrow, End: "t1"})

	// Querying under All() is not a subset of the narrow filter the batch
	// was stored under, so the walk cannot use this batch and reports a gap.
	cands := tl.MostRecentEvents(filter.All())
	require.Len(t, cands, 1)
	assert.Empty(t, cands[0].Events)
}

func TestTimeline_LoopTerminationForksBothCandidates(t *testing.T) {
	tl := New()
	tl = tl.Insert(Batch{Events: []event.Event{evt("e1")}, Filter: filter.All(), Start: strPtr("t1"), End: "t2"})
	tl = tl.Insert(Batch{Events: []event.Event{evt("e2")}, Filter: filter.All(), Start: strPtr("t2"), End: "t3"})
	tl = tl.Insert(Batch{Events: []event.Event{evt("e3")}, Filter: filter.All(), Start: strPtr("t3"), End: "t2"})

	cands := tl.MostRecentEventsFrom(filter.All(), TokenNamed("t2"))
	got := candidateIDs(cands)

	assert.Contains(t, got, []string{"e1"})
	assert.Contains(t, got, []string{"e2", "e3"})
	assert.Len(t, got, 2)
}

func TestLongest_KeepsTiesOnly(t *testing.T) {
	cands := []Candidate{
		{Events: []event.Event{evt("e1")}},
		{Events: []event.Event{evt("e2"), evt("e3")}},
	}
	longest := Longest(cands)
	require.Len(t, longest, 1)
	assert.Equal(t, []string{"e2", "e3"}, ids(longest[0].Events))
}

func TestLongest_PreservesAllTiedCandidates(t *testing.T) {
	cands := []Candidate{
		{Events: []event.Event{evt("e1")}},
		{Events: []event.Event{evt("e2")}},
	}
	longest := Longest(cands)
	assert.Len(t, longest, 2)
}
