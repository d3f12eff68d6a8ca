package domain

import "context"

// Scope is what a rule function sees during a single implicator attempt.
type Scope interface {
	// ID returns the entity under resolution.
	ID() string

	// Get returns the current value of a declared input type.
	// Reading a type the implicator did not declare as input returns
	// ErrNotApplicable and fails the attempt.
	Get(typ string) (any, error)

	// Put records a value for typ. It is visible to later functions of the
	// same implicator and merged into the resolution if the attempt succeeds.
	Put(typ string, value any)

	// Cancel marks the attempt as not applicable. Conditions use it to veto
	// the producer.
	Cancel()
}

// RuleFunc is a condition or producer registered with Imply.
// Returning ErrNotApplicable (or an error wrapping it) is equivalent to
// calling Cancel. Any other error aborts the enclosing Get.
type RuleFunc func(ctx context.Context, s Scope) error
