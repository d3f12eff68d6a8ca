package domain

import (
	"errors"
	"fmt"
)

// ErrNotApplicable signals that an implicator cannot produce a value for the
// current resolution. It is never surfaced to Get callers; the engine moves on
// to the next candidate implicator.
var ErrNotApplicable = errors.New("implicator not applicable")

// ErrUsage is returned when Imply is called with a malformed rule definition.
var ErrUsage = errors.New("usage: Imply(inputTypes, outputTypes, fn...)")

// ErrUnknownBackend is returned when a storage backend name cannot be resolved.
var ErrUnknownBackend = errors.New("unknown storage backend")

// RuleError wraps an unexpected error returned by a rule function.
// It aborts the Get call that triggered the rule.
type RuleError struct {
	Implicator string
	Err        error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s failed: %v", e.Implicator, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}
