package codec

import "sync"

// String is the coder for bare JSON strings.
func String() Coder[string] {
	return Coder[string]{
		Encode: func(v string) interface{} { return v },
		Decode: func(raw interface{}) (string, []Log, error) {
			s, ok := raw.(string)
			if !ok {
				return "", nil, fail("expected a string, got %T", raw)
			}
			return s, nil, nil
		},
		Doc: Doc{TypeName: "string"},
	}
}

// Bool is the coder for bare JSON booleans.
func Bool() Coder[bool] {
	return Coder[bool]{
		Encode: func(v bool) interface{} { return v },
		Decode: func(raw interface{}) (bool, []Log, error) {
			b, ok := raw.(bool)
			if !ok {
				return false, nil, fail("expected a bool, got %T", raw)
			}
			return b, nil, nil
		},
		Doc: Doc{TypeName: "bool"},
	}
}

// Int is the coder for whole-number JSON values. encoding/json decodes all
// numbers as float64; Int rejects non-integral values rather than
// truncating, so a malformed "1.5" surfaces as a decode error instead of
// silently becoming 1.
func Int() Coder[int] {
	return Coder[int]{
		Encode: func(v int) interface{} { return float64(v) },
		Decode: func(raw interface{}) (int, []Log, error) {
			f, ok := raw.(float64)
			if !ok {
				return 0, nil, fail("expected a number, got %T", raw)
			}
			i := int(f)
			if float64(i) != f {
				return 0, nil, fail("expected an integer, got %v", f)
			}
			return i, nil, nil
		},
		Doc: Doc{TypeName: "int"},
	}
}

// Float is the coder for JSON numbers.
func Float() Coder[float64] {
	return Coder[float64]{
		Encode: func(v float64) interface{} { return v },
		Decode: func(raw interface{}) (float64, []Log, error) {
			f, ok := raw.(float64)
			if !ok {
				return 0, nil, fail("expected a number, got %T", raw)
			}
			return f, nil, nil
		},
		Doc: Doc{TypeName: "float"},
	}
}

// List decodes/encodes a JSON array element-wise.
func List[A any](elem Coder[A]) Coder[[]A] {
	return Coder[[]A]{
		Encode: func(v []A) interface{} {
			out := make([]interface{}, len(v))
			for i, a := range v {
				out[i] = elem.Encode(a)
			}
			return out
		},
		Decode: func(raw interface{}) ([]A, []Log, error) {
			arr, ok := raw.([]interface{})
			if !ok {
				return nil, nil, fail("expected an array, got %T", raw)
			}
			out := make([]A, 0, len(arr))
			var logs []Log
			for i, item := range arr {
				v, ls, err := elem.Decode(item)
				if err != nil {
					return nil, logs, fail("index %d: %w", i, err)
				}
				out = append(out, v)
				logs = append(logs, ls...)
			}
			return out, logs, nil
		},
		Doc: Doc{TypeName: "list<" + elem.Doc.TypeName + ">"},
	}
}

// Maybe decodes a JSON null as (nil, no warning) and anything else via the
// inner coder, wrapped in a pointer. This is value-position optionality,
// distinct from a Field's Optional requiredness (which is about absence
// inside an enclosing object).
func Maybe[A any](elem Coder[A]) Coder[*A] {
	return Coder[*A]{
		Encode: func(v *A) interface{} {
			if v == nil {
				return nil
			}
			return elem.Encode(*v)
		},
		Decode: func(raw interface{}) (*A, []Log, error) {
			if raw == nil {
				return nil, nil, nil
			}
			v, logs, err := elem.Decode(raw)
			if err != nil {
				return nil, logs, err
			}
			return &v, logs, nil
		},
		Doc: Doc{TypeName: "maybe<" + elem.Doc.TypeName + ">"},
	}
}

// MapOfStringKeys decodes a JSON object whose values all share a type.
func MapOfStringKeys[A any](elem Coder[A]) Coder[map[string]A] {
	return Coder[map[string]A]{
		Encode: func(v map[string]A) interface{} {
			out := make(map[string]interface{}, len(v))
			for k, a := range v {
				out[k] = elem.Encode(a)
			}
			return out
		},
		Decode: func(raw interface{}) (map[string]A, []Log, error) {
			obj, ok := raw.(map[string]interface{})
			if !ok {
				return nil, nil, fail("expected an object, got %T", raw)
			}
			out := make(map[string]A, len(obj))
			var logs []Log
			for k, item := range obj {
				v, ls, err := elem.Decode(item)
				if err != nil {
					return nil, logs, fail("key %q: %w", k, err)
				}
				out[k] = v
				logs = append(logs, ls...)
			}
			return out, logs, nil
		},
		Doc: Doc{TypeName: "map<string," + elem.Doc.TypeName + ">"},
	}
}

// IntKeyedMap decodes a JSON object whose keys are decimal integers — used
// by Iddict serialization (spec.md §4.2, §6 "hashdicts serialize as JSON
// objects keyed by the stored hash"; int-keyed maps are the Iddict analog).
func IntKeyedMap[A any](elem Coder[A]) Coder[map[int]A] {
	inner := MapOfStringKeys(elem)
	return Coder[map[int]A]{
		Encode: func(v map[int]A) interface{} {
			asStr := make(map[string]A, len(v))
			for k, a := range v {
				asStr[intToString(k)] = a
			}
			return inner.Encode(asStr)
		},
		Decode: func(raw interface{}) (map[int]A, []Log, error) {
			asStr, logs, err := inner.Decode(raw)
			if err != nil {
				return nil, logs, err
			}
			out := make(map[int]A, len(asStr))
			for k, v := range asStr {
				i, err := stringToInt(k)
				if err != nil {
					return nil, logs, fail("int-keyed map: key %q: %w", k, err)
				}
				out[i] = v
			}
			return out, logs, nil
		},
		Doc: Doc{TypeName: "intmap<" + elem.Doc.TypeName + ">"},
	}
}

// Set decodes/encodes a JSON array as an unordered set, keyed by a caller
// supplied identity function (the element type need not be comparable,
// e.g. batch filters).
func Set[A any](elem Coder[A], key func(A) string) Coder[map[string]A] {
	asList := List(elem)
	return Coder[map[string]A]{
		Encode: func(v map[string]A) interface{} {
			out := make([]A, 0, len(v))
			for _, a := range v {
				out = append(out, a)
			}
			return asList.Encode(out)
		},
		Decode: func(raw interface{}) (map[string]A, []Log, error) {
			list, logs, err := asList.Decode(raw)
			if err != nil {
				return nil, logs, err
			}
			out := make(map[string]A, len(list))
			for _, a := range list {
				out[key(a)] = a
			}
			return out, logs, nil
		},
		Doc: Doc{TypeName: "set<" + elem.Doc.TypeName + ">"},
	}
}

// Lazy defers materialization of an inner coder until first use, letting
// self-referential types (Event contains UnsignedData contains Event, see
// spec.md §9) be coded without an initialization cycle. The cache fill is
// guarded by a sync.Once rather than a bare nil check, since a package-level
// Coder built with Lazy (event.Coder, event.UnsignedCoder) is shared across
// goroutines decoding concurrently — the same simple guarded-state idiom
// dendrite uses for its own lazily-built singletons (setup/config.SMTP's
// sync.Once-guarded password field) rather than reaching for a concurrency
// library.
func Lazy[A any](build func() Coder[A]) Coder[A] {
	var once sync.Once
	var cached Coder[A]
	get := func() Coder[A] {
		once.Do(func() { cached = build() })
		return cached
	}
	return Coder[A]{
		Encode: func(v A) interface{} { return get().Encode(v) },
		Decode: func(raw interface{}) (A, []Log, error) { return get().Decode(raw) },
		Doc:    Doc{TypeName: "lazy"},
	}
}

// Parser builds a Coder for a grammar-validated string: parse converts the
// wire string to A, render converts it back. Decode failures carry
// parse's error verbatim.
func Parser[A any](typeName string, parse func(string) (A, error), render func(A) string) Coder[A] {
	return Coder[A]{
		Encode: func(v A) interface{} { return render(v) },
		Decode: func(raw interface{}) (A, []Log, error) {
			var zero A
			s, ok := raw.(string)
			if !ok {
				return zero, nil, fail("expected a string, got %T", raw)
			}
			v, err := parse(s)
			if err != nil {
				return zero, nil, fail("%s: %w", typeName, err)
			}
			return v, nil, nil
		},
		Doc: Doc{TypeName: typeName},
	}
}

// MapCoder applies an isomorphic transform {forth, back} to an existing
// coder.
func MapCoder[A, B any](c Coder[A], forth func(A) B, back func(B) A) Coder[B] {
	return Coder[B]{
		Encode: func(b B) interface{} { return c.Encode(back(b)) },
		Decode: func(raw interface{}) (B, []Log, error) {
			var zero B
			a, logs, err := c.Decode(raw)
			if err != nil {
				return zero, logs, err
			}
			return forth(a), logs, nil
		},
		Doc: c.Doc,
	}
}

// AndThen applies a partial-functional transform {forth, back}: forth may
// fail, in which case its error is returned unchanged as the decode error
// (no extra failure message is added).
func AndThen[A, B any](c Coder[A], forth func(A) (B, error), back func(B) A) Coder[B] {
	return Coder[B]{
		Encode: func(b B) interface{} { return c.Encode(back(b)) },
		Decode: func(raw interface{}) (B, []Log, error) {
			var zero B
			a, logs, err := c.Decode(raw)
			if err != nil {
				return zero, logs, err
			}
			b, err := forth(a)
			if err != nil {
				return zero, logs, err
			}
			return b, logs, nil
		},
		Doc: c.Doc,
	}
}

func intToString(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

func stringToInt(s string) (int, error) {
	if s == "" {
		return 0, fail("empty key")
	}
	neg := false
	i := 0
	if s[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(s) {
		return 0, fail("invalid integer key %q", s)
	}
	n := 0
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, fail("invalid integer key %q", s)
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}
