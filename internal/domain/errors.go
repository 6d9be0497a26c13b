package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrContractNotFound      = errors.New("contract not found")
	ErrTemplateNotFound      = errors.New("template not found")
	ErrConfigurationNotFound = errors.New("configuration not found")
	ErrFormConfigNotFound    = errors.New("form configuration not found")
)

// TransitionError is returned when a lifecycle event is not allowed from
// the entity's current phase.
type TransitionError struct {
	Event   Event
	Current Phase
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from phase %q", e.Event, e.Current)
}

// TransitionFailedError is returned when the persistence write backing a
// transition fails. The transition is rolled back as a unit: neither the
// status change nor the audit entry is applied.
type TransitionFailedError struct {
	Event Event
	Cause error
}

func (e *TransitionFailedError) Error() string {
	return fmt.Sprintf("transition %q failed: %v", e.Event, e.Cause)
}

func (e *TransitionFailedError) Unwrap() error {
	return e.Cause
}
