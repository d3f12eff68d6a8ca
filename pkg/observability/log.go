package observability

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/aretw0/implicate/pkg/domain"
)

// LogTracer writes every event as a debug record.
type LogTracer struct {
	logger *slog.Logger
}

// NewLogTracer creates a tracer logging through logger.
func NewLogTracer(logger *slog.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

func (t *LogTracer) Log(ctx context.Context, event string, attrs domain.TraceAttrs) {
	args := []any{
		"resolution", attrs.ResolutionID,
		"type", attrs.Type,
		"id", attrs.ID,
		"depth", attrs.Depth,
	}
	if attrs.Implicator != "" {
		args = append(args, "implicator", attrs.Implicator)
	}
	if attrs.Source != "" {
		args = append(args, "source", string(attrs.Source), "found", attrs.Found)
	}
	if attrs.Value != nil {
		args = append(args, "value", DescribeValue(attrs.Value))
	}
	t.logger.DebugContext(ctx, event, args...)
}

// DescribeValue renders scalars as-is and anything composite as its Go type,
// keeping large or sensitive payloads out of logs.
func DescribeValue(v any) any {
	if v == nil {
		return nil
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return v
	default:
		return fmt.Sprintf("Class::%T", v)
	}
}
