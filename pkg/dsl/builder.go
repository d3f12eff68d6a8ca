package dsl

import (
	"fmt"

	"github.com/aretw0/implicate"
)

// Registrar is the registration half of a registry.
type Registrar interface {
	Imply(inputTypes, outputTypes []string, fns ...implicate.RuleFunc) (*implicate.Implicator, error)
}

// Builder collects rule definitions in declaration order.
type Builder struct {
	rules []*RuleBuilder
	index map[string]*RuleBuilder
}

// New creates a new rule builder.
func New() *Builder {
	return &Builder{
		index: make(map[string]*RuleBuilder),
	}
}

// Rule starts a named rule definition.
// If the rule already exists, it returns the existing builder.
func (b *Builder) Rule(name string) *RuleBuilder {
	if rb, ok := b.index[name]; ok {
		return rb
	}
	rb := &RuleBuilder{name: name}
	b.rules = append(b.rules, rb)
	b.index[name] = rb
	return rb
}

// Names returns the rule names in declaration order.
func (b *Builder) Names() []string {
	names := make([]string, len(b.rules))
	for i, rb := range b.rules {
		names[i] = rb.name
	}
	return names
}

// Register registers every rule in declaration order. It stops at the
// first malformed rule; rules before it stay registered.
func (b *Builder) Register(reg Registrar) ([]*implicate.Implicator, error) {
	imps := make([]*implicate.Implicator, 0, len(b.rules))
	for _, rb := range b.rules {
		imp, err := reg.Imply(rb.inputs, rb.outputs, rb.functions()...)
		if err != nil {
			return imps, fmt.Errorf("rule %q: %w", rb.name, err)
		}
		imps = append(imps, imp)
	}
	return imps, nil
}
