package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/implicate/pkg/domain"
)

// Recorder keeps every event it receives, in order.
type Recorder struct {
	mu      sync.Mutex
	records []domain.TraceRecord
	now     func() time.Time
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) Log(ctx context.Context, event string, attrs domain.TraceAttrs) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, domain.TraceRecord{
		Timestamp: r.now(),
		Event:     event,
		Attrs:     attrs,
	})
}

// Records returns a copy of the captured events.
func (r *Recorder) Records() []domain.TraceRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.TraceRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Events returns just the event names, in order.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Event
	}
	return out
}
