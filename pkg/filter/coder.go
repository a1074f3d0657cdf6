package filter

import (
	"fmt"

	"github.com/matrix-org/govault/pkg/codec"
)

// Coder serializes the two concrete Filter implementations this package
// ships as a type-tagged object: {"type":"all"} for the identity filter,
// {"type":"by_event_types","event_types":[...]} for ByEventTypes. Filter is
// deliberately opaque to the rest of the module (package doc comment,
// spec.md §9 "Filter opacity"), but a persisted IBatch still needs *some*
// concrete wire shape for the filter it was inserted with, so Coder covers
// the two filters this corpus actually constructs. Any other Filter value
// (including one built by And) encodes as {"type":"all"}, with no log; on
// decode, an unrecognized "type" tag yields the identity filter plus a
// codec.Log rather than an error.
func Coder() codec.Coder[Filter] {
	eventTypesCoder := codec.List(codec.String())
	return codec.Coder[Filter]{
		Encode: func(f Filter) interface{} {
			switch v := f.(type) {
			case ByEventTypes:
				types := make([]string, 0, len(v))
				for t := range v {
					types = append(types, t)
				}
				return map[string]interface{}{
					"type":        "by_event_types",
					"event_types": eventTypesCoder.Encode(types),
				}
			default:
				// allFilter and any other/unknown Filter implementation:
				// the identity filter is the only safe default encoding.
				return map[string]interface{}{"type": "all"}
			}
		},
		Decode: func(raw interface{}) (Filter, []codec.Log, error) {
			obj, ok := raw.(map[string]interface{})
			if !ok {
				return nil, nil, fmt.Errorf("filter: expected an object, got %T", raw)
			}
			kind, _ := obj["type"].(string)
			switch kind {
			case "by_event_types":
				types, logs, err := eventTypesCoder.Decode(obj["event_types"])
				if err != nil {
					return nil, logs, err
				}
				return NewByEventTypes(types...), logs, nil
			case "all", "":
				return All(), nil, nil
			default:
				return All(), []codec.Log{codec.Log("filter: unrecognized filter type " + kind + ", decoding as the identity filter")}, nil
			}
		},
		Doc: codec.Doc{TypeName: "Filter"},
	}
}
