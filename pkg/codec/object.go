package codec

import "fmt"

// Requiredness classifies how a Field behaves when its key is absent from
// the JSON object being decoded (spec.md §4.1).
type Requiredness int

const (
	// Required: decode fails if the key is absent.
	Required Requiredness = iota
	// OptionalValue: decode yields the zero value (via a nil pointer
	// projection) if the key is absent.
	OptionalValue
	// OptionalDefault: decode yields a fixed default if the key is
	// absent; encode elides the key if the current value equals the
	// default.
	OptionalDefault
)

// Field is the generic interface every field-kind implements, letting
// Object[Object any](fields ...Field[Object]) store heterogeneous field
// types in one slice (Go has no existential types, so the type parameter
// A of the underlying fieldSpec is erased behind this interface — see the
// package doc comment for why this replaces object_1..object_11).
type Field[Object any] interface {
	name() string
	encodeInto(obj Object, out map[string]interface{})
	decodeInto(raw map[string]interface{}, obj *Object) ([]Log, error)
	doc() FieldDoc
}

type fieldSpec[A any, Object any] struct {
	fieldName   string
	description string
	req         Requiredness
	def         A
	equal       func(A, A) bool
	project     func(Object) A
	assign      func(*Object, A)
	coder       Coder[A]
}

func (f fieldSpec[A, Object]) name() string { return f.fieldName }

func (f fieldSpec[A, Object]) encodeInto(obj Object, out map[string]interface{}) {
	v := f.project(obj)
	if f.req == OptionalDefault && f.equal(v, f.def) {
		return
	}
	out[f.fieldName] = f.coder.Encode(v)
}

func (f fieldSpec[A, Object]) decodeInto(raw map[string]interface{}, obj *Object) ([]Log, error) {
	value, present := raw[f.fieldName]
	if !present || (value == nil && f.req != Required) {
		switch f.req {
		case Required:
			return nil, fail("missing required field %q", f.fieldName)
		case OptionalDefault:
			f.assign(obj, f.def)
			if present {
				return nil, nil
			}
			return []Log{Log("defaulted missing optional field " + f.fieldName)}, nil
		case OptionalValue:
			f.assign(obj, f.def) // zero value
			return nil, nil
		}
	}
	v, logs, err := f.coder.Decode(value)
	if err != nil {
		return logs, fail("field %q: %w", f.fieldName, err)
	}
	f.assign(obj, v)
	return logs, nil
}

func (f fieldSpec[A, Object]) doc() FieldDoc {
	rendered := "required"
	switch f.req {
	case OptionalValue:
		rendered = "optional"
	case OptionalDefault:
		rendered = "default:" + fmt.Sprint(f.def)
	}
	return FieldDoc{Name: f.fieldName, Description: f.description, Required: rendered}
}

// FieldRequired declares a Field whose key must be present.
func FieldRequired[A any, Object any](name, description string, project func(Object) A, assign func(*Object, A), coder Coder[A]) Field[Object] {
	return fieldSpec[A, Object]{fieldName: name, description: description, req: Required, project: project, assign: assign, coder: coder}
}

// FieldOptional declares a Field that decodes to the zero value of A when
// absent and is always re-encoded (spec.md's "Optional-Value": the
// decoder yields None if absent). Callers needing a true tri-state should
// project/assign through *A with coder = Maybe(inner).
func FieldOptional[A any, Object any](name, description string, project func(Object) A, assign func(*Object, A), coder Coder[A]) Field[Object] {
	return fieldSpec[A, Object]{fieldName: name, description: description, req: OptionalValue, project: project, assign: assign, coder: coder}
}

// FieldDefault declares a Field with a default value; absence decodes to
// def, and encoding elides the key when the current value equals def
// under equal.
func FieldDefault[A any, Object any](name, description string, def A, equal func(A, A) bool, project func(Object) A, assign func(*Object, A), coder Coder[A]) Field[Object] {
	return fieldSpec[A, Object]{fieldName: name, description: description, req: OptionalDefault, def: def, equal: equal, project: project, assign: assign, coder: coder}
}

// Object composes up to eleven (spec.md §4.1) or more Fields into a
// Coder[Object]. See the package doc comment for why a single variadic
// constructor stands in for the source's object_1..object_11 family.
func Object[Object any](typeName, description string, newObject func() Object, fields ...Field[Object]) Coder[Object] {
	docFields := make([]FieldDoc, len(fields))
	for i, f := range fields {
		docFields[i] = f.doc()
	}
	return Coder[Object]{
		Encode: func(obj Object) interface{} {
			out := make(map[string]interface{}, len(fields))
			for _, f := range fields {
				f.encodeInto(obj, out)
			}
			return out
		},
		Decode: func(raw interface{}) (Object, []Log, error) {
			obj := newObject()
			rawObj, ok := raw.(map[string]interface{})
			if !ok {
				return obj, nil, fail("%s: expected an object, got %T", typeName, raw)
			}
			var logs []Log
			for _, f := range fields {
				ls, err := f.decodeInto(rawObj, &obj)
				logs = append(logs, ls...)
				if err != nil {
					return obj, logs, fail("%s: %w", typeName, err)
				}
			}
			return obj, logs, nil
		},
		Doc: Doc{TypeName: typeName, Description: description, Fields: docFields},
	}
}
