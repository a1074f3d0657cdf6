// Package state implements the StateManager: the two-level
// eventType -> stateKey -> Event index of a room's current state
// (spec.md §3, §4 "StateManager").
package state

import (
	"github.com/matrix-org/govault/pkg/event"
)

// StateManager is a nested mapping eventType -> stateKey -> Event.
// Insertion of an event without a state key is a no-op; empty inner
// mappings are pruned (spec.md §3).
type StateManager struct {
	byType map[string]map[string]event.Event
}

// New returns an empty StateManager.
func New() StateManager {
	return StateManager{byType: map[string]map[string]event.Event{}}
}

// Insert records e as the current state event for (eventType, stateKey).
// If e carries no state key, Insert is a no-op and returns the receiver
// unchanged (spec.md §3).
func (s StateManager) Insert(e event.Event) StateManager {
	if e.StateKey == nil {
		return s
	}
	out := s.clone()
	inner, ok := out.byType[e.EventType]
	if !ok {
		inner = map[string]event.Event{}
	} else {
		inner = cloneInner(inner)
	}
	inner[*e.StateKey] = e
	out.byType[e.EventType] = inner
	return out
}

// Get returns the current state event for (eventType, stateKey), which
// is the memberKey lookup spec.md §3 calls O(1).
func (s StateManager) Get(key event.MemberKey) (event.Event, bool) {
	inner, ok := s.byType[key.EventType]
	if !ok {
		return event.Event{}, false
	}
	e, ok := inner[key.StateKey]
	return e, ok
}

// Remove deletes the state event for (eventType, stateKey), pruning the
// inner map if it becomes empty.
func (s StateManager) Remove(key event.MemberKey) StateManager {
	inner, ok := s.byType[key.EventType]
	if !ok {
		return s
	}
	out := s.clone()
	newInner := cloneInner(inner)
	delete(newInner, key.StateKey)
	if len(newInner) == 0 {
		delete(out.byType, key.EventType)
	} else {
		out.byType[key.EventType] = newInner
	}
	return out
}

// EventTypes returns the set of event types with at least one state
// event, in unspecified order.
func (s StateManager) EventTypes() []string {
	types := make([]string, 0, len(s.byType))
	for t := range s.byType {
		types = append(types, t)
	}
	return types
}

// StateKeysFor returns the state keys recorded for eventType, in
// unspecified order.
func (s StateManager) StateKeysFor(eventType string) []string {
	inner := s.byType[eventType]
	keys := make([]string, 0, len(inner))
	for k := range inner {
		keys = append(keys, k)
	}
	return keys
}

// All returns every current state event, in unspecified order.
func (s StateManager) All() []event.Event {
	var out []event.Event
	for _, inner := range s.byType {
		for _, e := range inner {
			out = append(out, e)
		}
	}
	return out
}

func (s StateManager) clone() StateManager {
	out := StateManager{byType: make(map[string]map[string]event.Event, len(s.byType))}
	for t, inner := range s.byType {
		out.byType[t] = inner
	}
	return out
}

func cloneInner(inner map[string]event.Event) map[string]event.Event {
	out := make(map[string]event.Event, len(inner)+1)
	for k, v := range inner {
		out[k] = v
	}
	return out
}
