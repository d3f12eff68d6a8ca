package observability

import (
	"context"

	"github.com/aretw0/implicate/pkg/domain"
	"github.com/aretw0/implicate/pkg/ports"
)

// Nop discards every event.
type Nop struct{}

func (Nop) Log(context.Context, string, domain.TraceAttrs) {}

// TracerFunc adapts a plain function to ports.Tracer.
type TracerFunc func(ctx context.Context, event string, attrs domain.TraceAttrs)

func (f TracerFunc) Log(ctx context.Context, event string, attrs domain.TraceAttrs) {
	f(ctx, event, attrs)
}

type multi []ports.Tracer

// Multi fans events out to every non-nil tracer, in order.
func Multi(tracers ...ports.Tracer) ports.Tracer {
	out := make(multi, 0, len(tracers))
	for _, t := range tracers {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

func (m multi) Log(ctx context.Context, event string, attrs domain.TraceAttrs) {
	for _, t := range m {
		t.Log(ctx, event, attrs)
	}
}

type safe struct {
	next  ports.Tracer
	onErr func(event string, recovered any)
}

// Safe wraps a tracer so a panicking sink cannot fail a resolution.
// onErr, if set, is told about every recovered panic.
func Safe(next ports.Tracer, onErr func(event string, recovered any)) ports.Tracer {
	if next == nil {
		return Nop{}
	}
	return &safe{next: next, onErr: onErr}
}

func (s *safe) Log(ctx context.Context, event string, attrs domain.TraceAttrs) {
	defer func() {
		if r := recover(); r != nil && s.onErr != nil {
			s.onErr(event, r)
		}
	}()
	s.next.Log(ctx, event, attrs)
}
