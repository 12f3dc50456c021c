package schema

import (
	"fmt"
	"math"
)

// Type is the expected shape of a single wire field.
type Type struct {
	name     string
	optional bool
	check    func(v any) error
}

// Name is the label used in validation messages, e.g. "[object]" or "string?".
func (t Type) Name() string {
	if t.optional {
		return t.name + "?"
	}
	return t.name
}

// Validate reports whether v has this shape. Optional types accept nil.
func (t Type) Validate(v any) error {
	if v == nil && t.optional {
		return nil
	}
	return t.check(v)
}

// String accepts JSON strings.
func String() Type {
	return Type{name: "string", check: func(v any) error {
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		return nil
	}}
}

// Int accepts Go integers and whole JSON numbers.
func Int() Type {
	return Type{name: "int", check: func(v any) error {
		switch n := v.(type) {
		case int, int8, int16, int32, int64:
			return nil
		case float64:
			if n != math.Trunc(n) {
				return fmt.Errorf("expected int, got fractional number %v", n)
			}
			return nil
		}
		return fmt.Errorf("expected int, got %T", v)
	}}
}

// Object accepts decoded JSON objects.
func Object() Type {
	return Type{name: "object", check: func(v any) error {
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("expected object, got %T", v)
		}
		return nil
	}}
}

// Slice accepts decoded JSON arrays whose elements all match elem.
func Slice(elem Type) Type {
	return Type{name: "[" + elem.Name() + "]", check: func(v any) error {
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("expected list, got %T", v)
		}
		for i, item := range items {
			if err := elem.Validate(item); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	}}
}

// Optional marks a field that may be missing or null.
func Optional(inner Type) Type {
	inner.optional = true
	return inner
}
