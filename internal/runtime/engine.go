package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/implicate/internal/logging"
	"github.com/aretw0/implicate/pkg/adapters/memory"
	"github.com/aretw0/implicate/pkg/domain"
	"github.com/aretw0/implicate/pkg/observability"
	"github.com/aretw0/implicate/pkg/ports"
)

// Engine resolves attributes from explicit values and registered implicators.
type Engine struct {
	store  ports.AttributeStore
	tracer ports.Tracer
	logger *slog.Logger

	mu          sync.RWMutex
	implicators map[string][]*Implicator
	registered  []*Implicator
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTracer sets the sink receiving resolution events.
func WithTracer(t ports.Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine on top of store.
// A nil store is replaced by an empty in-memory store.
func NewEngine(store ports.AttributeStore, opts ...EngineOption) *Engine {
	e := &Engine{
		store:       store,
		implicators: make(map[string][]*Implicator),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	e.tracer = observability.Safe(e.tracer, func(event string, recovered any) {
		e.logger.Warn("tracer panicked", "event", event, "panic", recovered)
	})

	return e
}

// Store returns the backing attribute store.
func (e *Engine) Store() ports.AttributeStore {
	return e.store
}

// Put records an explicit value. It shadows every implicator for the same key.
func (e *Engine) Put(ctx context.Context, typ, id string, value any) error {
	if err := e.store.Put(ctx, typ, id, value); err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", typ, id, err)
	}
	return nil
}

// Get returns the value of (typ, id): the explicit value if one was stored,
// otherwise the output of the first applicable implicator for typ.
// ok is false when nothing can supply a value; that is not an error.
// Derived values are not written back to the store.
func (e *Engine) Get(ctx context.Context, typ, id string) (any, bool, error) {
	return e.resolve(ctx, newResolution(id, e.tracer), typ)
}

// Explain is Get with every event of the resolution captured and returned.
func (e *Engine) Explain(ctx context.Context, typ, id string) (any, bool, []domain.TraceRecord, error) {
	rec := observability.NewRecorder()
	res := newResolution(id, observability.Multi(e.tracer, rec))

	value, ok, err := e.resolve(ctx, res, typ)
	return value, ok, rec.Records(), err
}

// Imply registers an implicator deriving outputTypes from inputTypes.
// The last function is the producer; any before it are conditions.
// The implicator is tried after every implicator registered earlier for the
// same output type.
func (e *Engine) Imply(inputTypes, outputTypes []string, fns ...domain.RuleFunc) (*Implicator, error) {
	imp, err := NewImplicator(inputTypes, outputTypes, fns...)
	if err != nil {
		e.logger.Warn("rejected implicator", "inputs", inputTypes, "outputs", outputTypes, "error", err)
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[string]bool, len(imp.outputTypes))
	for _, typ := range imp.outputTypes {
		if seen[typ] {
			continue
		}
		seen[typ] = true
		e.implicators[typ] = append(e.implicators[typ], imp)
	}
	e.registered = append(e.registered, imp)

	e.logger.Debug("implicator registered", "implicator", imp.String(), "conditions", imp.Conditions())
	return imp, nil
}

// Implicators returns the implicators registered for typ, in trial order.
func (e *Engine) Implicators(typ string) []*Implicator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.implicators[typ])
}

// Registered returns every implicator in registration order.
func (e *Engine) Registered() []*Implicator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.registered)
}

func (e *Engine) resolve(ctx context.Context, res *resolution, typ string) (any, bool, error) {
	res.trace(ctx, domain.EventGetInvoked, domain.TraceAttrs{Type: typ})

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	value, ok, err := e.store.Get(ctx, typ, res.id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s/%s: %w", typ, res.id, err)
	}
	if ok {
		res.trace(ctx, domain.EventGetReturned, domain.TraceAttrs{
			Type:   typ,
			Value:  value,
			Found:  true,
			Source: domain.SourceExplicit,
		})
		return value, true, nil
	}

	// A type already being derived higher up this call tree cannot help itself
	if res.resolving[typ] {
		e.logger.Debug("cycle detected", "type", typ, "id", res.id)
		res.cycles++
		res.trace(ctx, domain.EventCycle, domain.TraceAttrs{Type: typ})
		return e.absent(ctx, res, typ)
	}
	res.resolving[typ] = true
	defer delete(res.resolving, typ)

	for _, imp := range e.Implicators(typ) {
		if res.failed[imp] {
			continue
		}
		cycles := res.cycles
		applied, err := imp.attempt(ctx, e, res, typ)
		if err != nil {
			return nil, false, err
		}
		if !applied {
			if res.cycles == cycles {
				res.failed[imp] = true
			}
			continue
		}

		// First match wins, even if its producer skipped typ
		value, ok := res.values[typ]
		res.trace(ctx, domain.EventGetReturned, domain.TraceAttrs{
			Type:       typ,
			Value:      value,
			Found:      ok,
			Source:     domain.SourceDerived,
			Implicator: imp.String(),
		})
		return value, ok, nil
	}

	return e.absent(ctx, res, typ)
}

func (e *Engine) absent(ctx context.Context, res *resolution, typ string) (any, bool, error) {
	res.trace(ctx, domain.EventGetReturned, domain.TraceAttrs{
		Type:   typ,
		Source: domain.SourceAbsent,
	})
	return nil, false, nil
}
