package runtime

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/implicate/pkg/domain"
)

// Implicator is a derivation rule: once every input type is known for an
// entity, its conditions run in order and its producer writes outputs.
// Implicators are immutable after construction.
type Implicator struct {
	inputTypes  []string
	outputTypes []string
	conditions  []domain.RuleFunc
	producer    domain.RuleFunc
}

// NewImplicator validates a rule definition. The last function is the
// producer; any before it are conditions.
func NewImplicator(inputTypes, outputTypes []string, fns ...domain.RuleFunc) (*Implicator, error) {
	if len(outputTypes) == 0 {
		return nil, fmt.Errorf("%w: at least one output type is required", domain.ErrUsage)
	}
	if len(fns) == 0 {
		return nil, fmt.Errorf("%w: at least one rule function is required", domain.ErrUsage)
	}
	for i, fn := range fns {
		if fn == nil {
			return nil, fmt.Errorf("%w: rule function %d is nil", domain.ErrUsage, i)
		}
	}

	return &Implicator{
		inputTypes:  slices.Clone(inputTypes),
		outputTypes: slices.Clone(outputTypes),
		conditions:  slices.Clone(fns[:len(fns)-1]),
		producer:    fns[len(fns)-1],
	}, nil
}

// InputTypes returns the declared inputs in resolution order.
func (i *Implicator) InputTypes() []string {
	return slices.Clone(i.inputTypes)
}

// OutputTypes returns the declared outputs.
func (i *Implicator) OutputTypes() []string {
	return slices.Clone(i.outputTypes)
}

// Conditions returns how many condition functions precede the producer.
func (i *Implicator) Conditions() int {
	return len(i.conditions)
}

// String renders the implicator as "[in, ...] -> [out, ...]".
func (i *Implicator) String() string {
	return fmt.Sprintf("[%s] -> [%s]", strings.Join(i.inputTypes, ", "), strings.Join(i.outputTypes, ", "))
}

func (i *Implicator) declares(typ string) bool {
	return slices.Contains(i.inputTypes, typ)
}

// attempt tries to apply the implicator within res on behalf of a lookup of
// target. It returns false when the implicator is not applicable; errors are
// reserved for store failures and unexpected rule-function errors.
func (i *Implicator) attempt(ctx context.Context, e *Engine, res *resolution, target string) (bool, error) {
	desc := i.String()
	res.trace(ctx, domain.EventImplicatorAttempted, domain.TraceAttrs{Type: target, Implicator: desc})

	// Inputs are AND-ed, resolved one at a time in declared order
	for _, typ := range i.inputTypes {
		if _, ok := res.values[typ]; ok {
			continue
		}

		res.depth++
		value, ok, err := e.resolve(ctx, res, typ)
		res.depth--
		if err != nil {
			return false, err
		}
		if !ok {
			i.skip(ctx, res, "input unresolved: "+typ)
			return false, nil
		}
		res.values[typ] = value
	}

	s := newScope(ctx, i, res)

	for _, cond := range i.conditions {
		applicable, err := i.run(ctx, cond, s)
		if err != nil {
			return false, err
		}
		if !applicable {
			i.skip(ctx, res, s.reason())
			return false, nil
		}
	}

	applicable, err := i.run(ctx, i.producer, s)
	if err != nil {
		return false, err
	}
	if !applicable {
		i.skip(ctx, res, s.reason())
		return false, nil
	}

	for typ, value := range s.outputs {
		res.values[typ] = value
	}
	res.trace(ctx, domain.EventImplicatorApplied, domain.TraceAttrs{Implicator: desc})

	return true, nil
}

// run invokes one rule function and reports whether the attempt is still applicable.
func (i *Implicator) run(ctx context.Context, fn domain.RuleFunc, s *scope) (bool, error) {
	if err := fn(ctx, s); err != nil {
		if errors.Is(err, domain.ErrNotApplicable) {
			s.Cancel()
			return false, nil
		}
		// A swallowed undeclared read still disqualifies the attempt
		if s.undeclared != "" {
			return false, nil
		}
		return false, &domain.RuleError{Implicator: i.String(), Err: err}
	}
	return s.applicable(), nil
}

func (i *Implicator) skip(ctx context.Context, res *resolution, reason string) {
	res.trace(ctx, domain.EventImplicatorNotApplicable, domain.TraceAttrs{
		Implicator: i.String(),
		Reason:     reason,
	})
}
