package runtime

import (
	"context"

	"github.com/aretw0/implicate/pkg/domain"
	"github.com/aretw0/implicate/pkg/ports"
	"github.com/google/uuid"
)

// resolution is the shared state of one top-level Get.
// It is never shared across independent Get calls, so it needs no lock.
type resolution struct {
	traceID string
	id      string

	// values holds everything known so far in this call tree: explicit
	// values read for inputs and outputs merged from applied implicators.
	values map[string]any

	// resolving is the set of types currently being derived.
	resolving map[string]bool

	// failed holds implicators that were not applicable; they are not retried.
	// Attempts that lost an input to the cycle guard are left out, since the
	// input may resolve once the outer derivation completes.
	failed map[*Implicator]bool

	// cycles counts cycle guard hits in this call tree.
	cycles int

	depth  int
	tracer ports.Tracer
}

func newResolution(id string, tracer ports.Tracer) *resolution {
	return &resolution{
		traceID:   uuid.NewString(),
		id:        id,
		values:    make(map[string]any),
		resolving: make(map[string]bool),
		failed:    make(map[*Implicator]bool),
		tracer:    tracer,
	}
}

func (r *resolution) trace(ctx context.Context, event string, attrs domain.TraceAttrs) {
	attrs.ResolutionID = r.traceID
	attrs.ID = r.id
	attrs.Depth = r.depth
	r.tracer.Log(ctx, event, attrs)
}
