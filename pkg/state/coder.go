package state

import (
	"github.com/matrix-org/govault/pkg/codec"
	"github.com/matrix-org/govault/pkg/event"
)

// Coder serializes a StateManager as the nested JSON object its byType
// field already is: eventType -> stateKey -> Event (spec.md §6 "Persisted
// state layout"). It lives inside this package rather than alongside the
// other Coder[...] constructors because byType is unexported — only
// StateManager itself can see the shape it needs to round-trip.
func Coder() codec.Coder[StateManager] {
	inner := codec.MapOfStringKeys(codec.MapOfStringKeys(event.Coder))
	return codec.MapCoder(inner,
		func(byType map[string]map[string]event.Event) StateManager {
			if byType == nil {
				byType = map[string]map[string]event.Event{}
			}
			return StateManager{byType: byType}
		},
		func(s StateManager) map[string]map[string]event.Event { return s.byType },
	)
}
