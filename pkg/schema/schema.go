package schema

import (
	"errors"
	"fmt"
)

// ErrInvalid is matched by every validation failure.
var ErrInvalid = errors.New("invalid attribute value")

// ValidationError reports a value rejected for an attribute type.
type ValidationError struct {
	Type   string
	Reason string
	Value  any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("attribute %q: %s", e.Type, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Schema maps attribute types to the type of their values.
type Schema map[string]Type

// Parse converts a map of attribute types to type names into a Schema.
// Example: {"Size": "int", "Tags": "[string]"}
func Parse(types map[string]string) (Schema, error) {
	s := make(Schema, len(types))
	for attr, name := range types {
		t, err := ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", attr, err)
		}
		s[attr] = t
	}
	return s, nil
}

// Validate checks value against the entry for typ. Types without an entry
// accept anything.
func (s Schema) Validate(typ string, value any) error {
	t, ok := s[typ]
	if !ok {
		return nil
	}
	if err := t.Validate(value); err != nil {
		return &ValidationError{Type: typ, Reason: err.Error(), Value: value}
	}
	return nil
}

// Describe returns the type name of every entry.
func (s Schema) Describe() map[string]string {
	out := make(map[string]string, len(s))
	for attr, t := range s {
		out[attr] = t.Name()
	}
	return out
}
