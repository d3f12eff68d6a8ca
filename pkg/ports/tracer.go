package ports

import (
	"context"

	"github.com/aretw0/implicate/pkg/domain"
)

// Tracer receives structured events emitted while resolving attributes.
// Log has no failure path: tracing must never fail a resolution.
type Tracer interface {
	Log(ctx context.Context, event string, attrs domain.TraceAttrs)
}
