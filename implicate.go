package implicate

import (
	"context"
	"log/slog"

	"github.com/aretw0/implicate/internal/runtime"
	"github.com/aretw0/implicate/pkg/adapters/memory"
	"github.com/aretw0/implicate/pkg/domain"
	"github.com/aretw0/implicate/pkg/ports"
)

// Scope is the capability handed to rule functions.
type Scope = domain.Scope

// RuleFunc is a condition or producer registered through Imply.
type RuleFunc = domain.RuleFunc

// Implicator is a registered derivation rule.
type Implicator = runtime.Implicator

var (
	// ErrNotApplicable may be returned by a rule function to veto its implicator.
	ErrNotApplicable = domain.ErrNotApplicable
	// ErrUsage is returned by Imply for malformed rule definitions.
	ErrUsage = domain.ErrUsage
)

// Registry is the high-level entry point for the implicate library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Registry struct {
	runtime *runtime.Engine
	store   ports.AttributeStore
	tracer  ports.Tracer
	logger  *slog.Logger
}

// Option defines a functional option for configuring the Registry.
type Option func(*Registry)

// WithStore sets the storage backend holding explicit values.
// Compose delegation chains with pkg/persistence/middleware before passing them here.
func WithStore(store ports.AttributeStore) Option {
	return func(r *Registry) {
		r.store = store
	}
}

// WithTracer registers a sink for resolution events.
func WithTracer(tracer ports.Tracer) Option {
	return func(r *Registry) {
		r.tracer = tracer
	}
}

// WithLogger sets a custom structured logger for the registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New initializes a Registry. Without WithStore it keeps explicit values in memory.
func New(opts ...Option) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}

	if r.store == nil {
		r.store = memory.NewStore()
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithTracer(r.tracer),
	}
	if r.logger != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithLogger(r.logger))
	}
	r.runtime = runtime.NewEngine(r.store, runtimeOpts...)

	return r
}

// Get returns the value for (typ, id). ok is false when neither an explicit
// value nor an applicable implicator supplies one.
func (r *Registry) Get(ctx context.Context, typ, id string) (value any, ok bool, err error) {
	return r.runtime.Get(ctx, typ, id)
}

// Put records an explicit value, overwriting any previous one.
func (r *Registry) Put(ctx context.Context, typ, id string, value any) error {
	return r.runtime.Put(ctx, typ, id, value)
}

// Imply registers an implicator. The last function is the producer; any
// before it are conditions run in order.
func (r *Registry) Imply(inputTypes, outputTypes []string, fns ...RuleFunc) (*Implicator, error) {
	return r.runtime.Imply(inputTypes, outputTypes, fns...)
}

// MustImply is like Imply but panics on a malformed definition.
func (r *Registry) MustImply(inputTypes, outputTypes []string, fns ...RuleFunc) *Implicator {
	imp, err := r.Imply(inputTypes, outputTypes, fns...)
	if err != nil {
		panic(err)
	}
	return imp
}

// Explain resolves (typ, id) and returns every trace event of the resolution.
func (r *Registry) Explain(ctx context.Context, typ, id string) (any, bool, []domain.TraceRecord, error) {
	return r.runtime.Explain(ctx, typ, id)
}

// Implicators returns the implicators that can produce typ, in trial order.
func (r *Registry) Implicators(typ string) []*Implicator {
	return r.runtime.Implicators(typ)
}

// Rules returns every registered implicator in registration order.
func (r *Registry) Rules() []*Implicator {
	return r.runtime.Registered()
}

// Store returns the storage backend.
func (r *Registry) Store() ports.AttributeStore {
	return r.store
}

// RuleInfo is a serializable summary of an implicator.
type RuleInfo struct {
	Descriptor string   `json:"descriptor"`
	Inputs     []string `json:"inputs"`
	Outputs    []string `json:"outputs"`
	Conditions int      `json:"conditions"`
}

// DescribeRules summarizes imps in order.
func DescribeRules(imps []*Implicator) []RuleInfo {
	infos := make([]RuleInfo, len(imps))
	for i, imp := range imps {
		infos[i] = RuleInfo{
			Descriptor: imp.String(),
			Inputs:     imp.InputTypes(),
			Outputs:    imp.OutputTypes(),
			Conditions: imp.Conditions(),
		}
		if infos[i].Inputs == nil {
			infos[i].Inputs = []string{}
		}
	}
	return infos
}
