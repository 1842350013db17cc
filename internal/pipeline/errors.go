package pipeline

import "fmt"

// InputError is returned when a document is rejected before any extraction
// request is made
type InputError struct {
	Reason string
	Cause  error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid input: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// PersistenceError is returned when the consolidated CV could not be stored.
// The Result is still returned alongside it.
type PersistenceError struct {
	SessionID string
	Cause     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist cv for session %s: %v", e.SessionID, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}
