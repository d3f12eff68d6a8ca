package implicate

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Attr is a typed accessor for one attribute type. Rule functions use it in
// place of untyped Scope.Get/Put calls; the declared-input check still applies.
type Attr[T any] struct {
	name string
}

// NewAttr returns an accessor for the attribute type name.
func NewAttr[T any](name string) Attr[T] {
	return Attr[T]{name: name}
}

// Type returns the attribute type name.
func (a Attr[T]) Type() string {
	return a.name
}

// From reads the attribute from a rule scope.
func (a Attr[T]) From(s Scope) (T, error) {
	v, err := s.Get(a.name)
	if err != nil {
		var zero T
		return zero, err
	}
	return a.decode(v)
}

// Set writes the attribute from a rule scope.
func (a Attr[T]) Set(s Scope, value T) {
	s.Put(a.name, value)
}

// Lookup resolves the attribute for id through the registry.
func (a Attr[T]) Lookup(ctx context.Context, r *Registry, id string) (T, bool, error) {
	var zero T
	v, ok, err := r.Get(ctx, a.name, id)
	if err != nil || !ok {
		return zero, ok, err
	}
	out, err := a.decode(v)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

// Store records an explicit value for id.
func (a Attr[T]) Store(ctx context.Context, r *Registry, id string, value T) error {
	return r.Put(ctx, a.name, id, value)
}

// decode converts values that lost their Go type (for example after a JSON
// round trip through a store) into T.
func (a Attr[T]) decode(v any) (T, error) {
	var out T
	if v == nil {
		return out, nil
	}
	if typed, ok := v.(T); ok {
		return typed, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return out, fmt.Errorf("attribute %s: %w", a.name, err)
	}
	if err := dec.Decode(v); err != nil {
		return out, fmt.Errorf("attribute %s: cannot decode %T as %T: %w", a.name, v, out, err)
	}
	return out, nil
}
