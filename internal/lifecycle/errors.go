package lifecycle

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an initialization precondition could not be met.
type ErrorKind string

const (
	// KindConfiguration indicates a missing or malformed configuration
	KindConfiguration ErrorKind = "configuration"
	// KindConnectivity indicates the backend could not be reached
	KindConnectivity ErrorKind = "connectivity"
	// KindAuthentication indicates admin authentication was required but unavailable
	KindAuthentication ErrorKind = "authentication"
	// KindCapability indicates a dependent service is not activated
	KindCapability ErrorKind = "capability"
)

// InitError is returned by EnsureInitialized when an operational caller's
// precondition could not be met. Discovery-tolerant callers never see one.
type InitError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *InitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// newInitError builds an InitError with an optional wrapped cause.
func newInitError(kind ErrorKind, message string, cause error) *InitError {
	return &InitError{Kind: kind, Message: message, Err: cause}
}

// ErrorKindOf returns the taxonomy kind of err, or "" when err is not an
// initialization error.
func ErrorKindOf(err error) ErrorKind {
	var ie *InitError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

// IsConfigurationError reports whether err is a configuration error.
func IsConfigurationError(err error) bool {
	return ErrorKindOf(err) == KindConfiguration
}

// IsConnectivityError reports whether err is a connectivity error.
func IsConnectivityError(err error) bool {
	return ErrorKindOf(err) == KindConnectivity
}

// IsAuthenticationError reports whether err is an authentication error.
func IsAuthenticationError(err error) bool {
	return ErrorKindOf(err) == KindAuthentication
}

// IsCapabilityError reports whether err is a capability error.
func IsCapabilityError(err error) bool {
	return ErrorKindOf(err) == KindCapability
}
