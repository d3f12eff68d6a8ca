package middleware

import (
	"context"

	"github.com/aretw0/implicate/pkg/ports"
	"github.com/aretw0/implicate/pkg/schema"
)

type schemaMiddleware struct {
	next   ports.AttributeStore
	schema schema.Schema
}

// NewSchemaMiddleware rejects writes whose value does not match the schema
// entry for its attribute type. Rejected errors match schema.ErrInvalid.
func NewSchemaMiddleware(s schema.Schema) Middleware {
	return func(next ports.AttributeStore) ports.AttributeStore {
		return &schemaMiddleware{next: next, schema: s}
	}
}

func (m *schemaMiddleware) Get(ctx context.Context, typ, id string) (any, bool, error) {
	return m.next.Get(ctx, typ, id)
}

func (m *schemaMiddleware) Put(ctx context.Context, typ, id string, value any) error {
	if err := m.schema.Validate(typ, value); err != nil {
		return err
	}
	return m.next.Put(ctx, typ, id, value)
}
