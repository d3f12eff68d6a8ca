package middleware

import "github.com/aretw0/implicate/pkg/ports"

// Middleware allows wrapping an AttributeStore to add behavior.
type Middleware func(ports.AttributeStore) ports.AttributeStore

// Wrap applies middlewares to store. The first middleware is the outermost.
func Wrap(store ports.AttributeStore, mws ...Middleware) ports.AttributeStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
