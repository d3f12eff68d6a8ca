package dsl

import (
	"context"
	"slices"

	"github.com/aretw0/implicate"
)

// RuleBuilder provides a fluent API for configuring a rule.
type RuleBuilder struct {
	name       string
	inputs     []string
	outputs    []string
	conditions []implicate.RuleFunc
	producer   implicate.RuleFunc
}

// From appends input types. They are resolved in the order given.
func (r *RuleBuilder) From(types ...string) *RuleBuilder {
	r.inputs = append(r.inputs, types...)
	return r
}

// To appends output types.
func (r *RuleBuilder) To(types ...string) *RuleBuilder {
	r.outputs = append(r.outputs, types...)
	return r
}

// When appends a condition. Conditions run in order before the producer.
func (r *RuleBuilder) When(fn implicate.RuleFunc) *RuleBuilder {
	r.conditions = append(r.conditions, fn)
	return r
}

// Require appends a condition that cancels the rule unless pred holds.
func (r *RuleBuilder) Require(pred func(s implicate.Scope) bool) *RuleBuilder {
	return r.When(func(ctx context.Context, s implicate.Scope) error {
		if !pred(s) {
			s.Cancel()
		}
		return nil
	})
}

// Do sets the producer, replacing any previous one.
func (r *RuleBuilder) Do(fn implicate.RuleFunc) *RuleBuilder {
	r.producer = fn
	return r
}

// Map sets a producer computing one output from one input, declaring
// both types if needed.
func (r *RuleBuilder) Map(from, to string, fn func(v any) (any, error)) *RuleBuilder {
	if !slices.Contains(r.inputs, from) {
		r.From(from)
	}
	if !slices.Contains(r.outputs, to) {
		r.To(to)
	}
	return r.Do(func(ctx context.Context, s implicate.Scope) error {
		v, err := s.Get(from)
		if err != nil {
			return err
		}
		out, err := fn(v)
		if err != nil {
			return err
		}
		s.Put(to, out)
		return nil
	})
}

// functions returns the conditions followed by the producer. A missing
// producer is passed as nil so registration reports it.
func (r *RuleBuilder) functions() []implicate.RuleFunc {
	fns := make([]implicate.RuleFunc, 0, len(r.conditions)+1)
	fns = append(fns, r.conditions...)
	return append(fns, r.producer)
}
