package middleware

import (
	"context"

	"github.com/aretw0/implicate/pkg/ports"
)

type fallbackStore struct {
	primary ports.AttributeStore
	next    ports.AttributeStore
}

// Fallback creates a middleware that forwards lookups missing from the wrapped
// store to next. Writes only ever reach the wrapped store.
func Fallback(next ports.AttributeStore) Middleware {
	return func(primary ports.AttributeStore) ports.AttributeStore {
		return &fallbackStore{primary: primary, next: next}
	}
}

// Chain composes stores into a delegation chain tried in order.
// Writes go to the first store.
func Chain(stores ...ports.AttributeStore) ports.AttributeStore {
	if len(stores) == 0 {
		panic("middleware: Chain requires at least one store")
	}
	chain := stores[len(stores)-1]
	for i := len(stores) - 2; i >= 0; i-- {
		chain = Fallback(chain)(stores[i])
	}
	return chain
}

func (f *fallbackStore) Get(ctx context.Context, typ, id string) (any, bool, error) {
	value, ok, err := f.primary.Get(ctx, typ, id)
	if err != nil || ok {
		return value, ok, err
	}
	return f.next.Get(ctx, typ, id)
}

func (f *fallbackStore) Put(ctx context.Context, typ, id string, value any) error {
	return f.primary.Put(ctx, typ, id, value)
}
