package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Type defines the contract for value validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

type checked struct {
	name  string
	check func(any) error
}

func (t *checked) Name() string             { return t.name }
func (t *checked) Validate(value any) error { return t.check(value) }

// Custom creates a type with a user-defined validation function.
func Custom(name string, validate func(any) error) Type {
	return &checked{name: name, check: validate}
}

// Any accepts every value, including nil.
func Any() Type {
	return Custom("any", func(any) error { return nil })
}

// String accepts strings.
func String() Type {
	return Custom("string", func(v any) error {
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		return nil
	})
}

// Int accepts integers, and floats holding whole numbers as decoded from JSON.
func Int() Type {
	return Custom("int", func(v any) error {
		switch n := v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return nil
		case float64:
			if n == float64(int64(n)) {
				return nil
			}
			return fmt.Errorf("expected int, got float (not a whole number)")
		default:
			return fmt.Errorf("expected int, got %T", v)
		}
	})
}

// Float accepts any number.
func Float() Type {
	return Custom("float", func(v any) error {
		switch v.(type) {
		case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return nil
		default:
			return fmt.Errorf("expected float, got %T", v)
		}
	})
}

// Bool accepts booleans.
func Bool() Type {
	return Custom("bool", func(v any) error {
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		return nil
	})
}

// Object accepts maps with string keys and structs.
func Object() Type {
	return Custom("object", func(v any) error {
		rv := reflect.ValueOf(v)
		switch {
		case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
			return nil
		case rv.Kind() == reflect.Struct:
			return nil
		case rv.Kind() == reflect.Pointer && rv.Elem().Kind() == reflect.Struct:
			return nil
		default:
			return fmt.Errorf("expected object, got %T", v)
		}
	})
}

// Slice accepts slices and arrays whose elements all match elem.
func Slice(elem Type) Type {
	return Custom("["+elem.Name()+"]", func(v any) error {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return fmt.Errorf("expected slice, got %T", v)
		}
		for i := 0; i < rv.Len(); i++ {
			if err := elem.Validate(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	})
}

// ParseType converts a type name to a Type.
// Supports "string", "int", "float", "bool", "object", "any" and "[elem]".
func ParseType(name string) (Type, error) {
	name = strings.TrimSpace(name)
	if len(name) > 2 && strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		elem, err := ParseType(name[1 : len(name)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}

	switch name {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "object":
		return Object(), nil
	case "any":
		return Any(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", name)
	}
}
