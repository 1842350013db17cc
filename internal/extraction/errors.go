package extraction

import "fmt"

// ServiceUnavailableError is returned when every extraction call failed
// because the service could not be reached or rejected the credentials
type ServiceUnavailableError struct {
	Calls int
	Cause error
}

func (e *ServiceUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction service unavailable: all %d calls failed: %v", e.Calls, e.Cause)
	}
	return fmt.Sprintf("extraction service unavailable: all %d calls failed", e.Calls)
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.Cause
}

// ParseError represents a response that could not be decoded into its group
type ParseError struct {
	Group   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error in %s: %s: %v", e.Group, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Group, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
