package ports

import "context"

// AttributeStore holds explicit attribute values keyed by (type, id).
// Implementations must be safe for concurrent use.
type AttributeStore interface {
	// Get returns the value stored for (typ, id).
	// A missing key is not an error: it returns ok == false and a nil error.
	// Stores wrapping a fallback forward misses to it.
	Get(ctx context.Context, typ, id string) (value any, ok bool, err error)

	// Put stores value for (typ, id), overwriting any prior value.
	// Writes are never forwarded to a fallback store.
	Put(ctx context.Context, typ, id string, value any) error
}
