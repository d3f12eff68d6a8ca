package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/implicate/pkg/ports"
)

// Mask replaces redacted values before they are written.
const Mask = "***"

type redactionMiddleware struct {
	next     ports.AttributeStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks sensitive values on write.
// A value whose attribute type matches a pattern is replaced entirely; inside
// map values, entries whose keys match a pattern are masked recursively.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.AttributeStore) ports.AttributeStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactionMiddleware) Get(ctx context.Context, typ, id string) (any, bool, error) {
	return m.next.Get(ctx, typ, id)
}

func (m *redactionMiddleware) Put(ctx context.Context, typ, id string, value any) error {
	if matchesAny(typ, m.patterns) {
		return m.next.Put(ctx, typ, id, Mask)
	}

	if nested, ok := value.(map[string]any); ok {
		// Clone so the caller's map is left untouched
		cloned := deepCopyMap(nested)
		maskMap(cloned, m.patterns)
		value = cloned
	}

	return m.next.Put(ctx, typ, id, value)
}

// Helpers

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchesAny(k, patterns) {
			m[k] = Mask
			continue
		}
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
