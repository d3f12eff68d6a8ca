package domain

import "time"

// Trace event names emitted by the engine.
const (
	EventGetInvoked              = "registry.get.invoked"
	EventGetReturned             = "registry.get.returned"
	EventCycle                   = "registry.cycle"
	EventImplicatorAttempted     = "implicator.attempted"
	EventImplicatorPut           = "implicator.put"
	EventImplicatorApplied       = "implicator.applied"
	EventImplicatorNotApplicable = "implicator.not_applicable"
)

// Source describes where a returned value came from.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceDerived  Source = "derived"
	SourceAbsent   Source = "absent"
)

// TraceAttrs is the structured payload of a trace event.
// Fields that do not apply to an event are left at their zero value.
type TraceAttrs struct {
	ResolutionID string `json:"resolution_id"`
	Type         string `json:"type"`
	ID           string `json:"id"`
	Value        any    `json:"value,omitempty"`
	Found        bool   `json:"found"`
	Source       Source `json:"source,omitempty"`
	Implicator   string `json:"implicator,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Depth        int    `json:"depth"`
}

// TraceRecord is a trace event captured for later inspection.
type TraceRecord struct {
	Timestamp time.Time  `json:"timestamp"`
	Event     string     `json:"event"`
	Attrs     TraceAttrs `json:"attrs"`
}
