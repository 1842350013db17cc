package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
)

// ErrorKind classifies a failed call to the model service
type ErrorKind string

const (
	// KindUnavailable covers network failures, throttling and 5xx responses
	KindUnavailable ErrorKind = "unavailable"
	// KindAuth covers rejected credentials
	KindAuth ErrorKind = "auth"
	// KindEmpty means the service answered without usable text
	KindEmpty ErrorKind = "empty_response"
	// KindTimeout means the request deadline elapsed
	KindTimeout ErrorKind = "timeout"
	// KindOther is any other service error
	KindOther ErrorKind = "other"
)

// ServiceError represents a failed call to the model service
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %v", e.Message, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Kind)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether repeating the call may succeed
func (e *ServiceError) Retryable() bool {
	return e.Kind == KindUnavailable || e.Kind == KindEmpty
}

// IsTimeout reports whether err is a request timeout
func IsTimeout(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Kind == KindTimeout {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsRetryable reports whether err is worth retrying
func IsRetryable(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Retryable()
	}
	return false
}

// classifyError wraps an error returned by the provider SDK
func classifyError(message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ServiceError{Kind: KindTimeout, Message: message, Cause: err}
	}
	return &ServiceError{Kind: kindOf(err), Message: message, Cause: err}
}

func kindOf(err error) ErrorKind {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if code := apiErr.HTTPCode(); code > 0 {
			return kindForHTTP(code)
		}
		if st := apiErr.GRPCStatus(); st != nil {
			return kindForGRPC(st.Code())
		}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return kindForHTTP(gErr.Code)
	}

	// Transport failures (DNS, refused connections, resets) carry no status.
	return KindUnavailable
}

func kindForHTTP(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusTooManyRequests || code >= 500:
		return KindUnavailable
	case code == http.StatusRequestTimeout:
		return KindTimeout
	default:
		return KindOther
	}
}

func kindForGRPC(code codes.Code) ErrorKind {
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied:
		return KindAuth
	case codes.Unavailable, codes.ResourceExhausted, codes.Internal, codes.Aborted:
		return KindUnavailable
	case codes.DeadlineExceeded:
		return KindTimeout
	default:
		return KindOther
	}
}
