package runtime

import (
	"context"
	"fmt"
	"maps"

	"github.com/aretw0/implicate/pkg/domain"
)

// scope implements domain.Scope for a single implicator attempt.
type scope struct {
	ctx        context.Context
	implicator *Implicator
	res        *resolution

	values  map[string]any
	outputs map[string]any

	stillValid bool
	undeclared string
}

func newScope(ctx context.Context, imp *Implicator, res *resolution) *scope {
	return &scope{
		ctx:        ctx,
		implicator: imp,
		res:        res,
		values:     maps.Clone(res.values),
		outputs:    make(map[string]any),
		stillValid: true,
	}
}

func (s *scope) ID() string {
	return s.res.id
}

func (s *scope) Get(typ string) (any, error) {
	if !s.implicator.declares(typ) {
		s.undeclared = typ
		return nil, fmt.Errorf("%w: %q is not an input of %s", domain.ErrNotApplicable, typ, s.implicator)
	}
	return s.values[typ], nil
}

func (s *scope) Put(typ string, value any) {
	s.res.trace(s.ctx, domain.EventImplicatorPut, domain.TraceAttrs{
		Type:       typ,
		Value:      value,
		Implicator: s.implicator.String(),
	})

	// Later functions of this implicator read the new value
	s.values[typ] = value
	// Merged into the resolution only if the attempt succeeds
	s.outputs[typ] = value
}

func (s *scope) Cancel() {
	s.stillValid = false
}

// applicable reports whether nothing has vetoed the attempt so far.
func (s *scope) applicable() bool {
	return s.stillValid && s.undeclared == ""
}

// reason describes why the attempt stopped being applicable.
func (s *scope) reason() string {
	if s.undeclared != "" {
		return "undeclared input: " + s.undeclared
	}
	return "cancelled"
}
