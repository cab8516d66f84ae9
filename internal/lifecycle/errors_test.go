package lifecycle

import (
	"errors"
	"fmt"
	"testing"
)

func TestInitError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := newInitError(KindConnectivity, "backend connection failed", cause)

	if got := err.Error(); got != "connectivity error: backend connection failed: dial tcp: connection refused" {
		t.Errorf("Unexpected error text: %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the wrapped cause")
	}

	bare := newInitError(KindConfiguration, "BASEKIT_URL is not set", nil)
	if got := bare.Error(); got != "configuration error: BASEKIT_URL is not set" {
		t.Errorf("Unexpected error text: %q", got)
	}
}

func TestErrorKindOf(t *testing.T) {
	if kind := ErrorKindOf(newInitError(KindAuthentication, "x", nil)); kind != KindAuthentication {
		t.Errorf("Expected %q, got %q", KindAuthentication, kind)
	}
	if kind := ErrorKindOf(errors.New("plain")); kind != "" {
		t.Errorf("Expected empty kind for plain error, got %q", kind)
	}
	if kind := ErrorKindOf(nil); kind != "" {
		t.Errorf("Expected empty kind for nil, got %q", kind)
	}

	// Kind survives wrapping.
	wrapped := fmt.Errorf("tool failed: %w", newInitError(KindCapability, "email not activated", nil))
	if !IsCapabilityError(wrapped) {
		t.Error("Expected capability kind to survive wrapping")
	}
}

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		pred func(error) bool
	}{
		{KindConfiguration, IsConfigurationError},
		{KindConnectivity, IsConnectivityError},
		{KindAuthentication, IsAuthenticationError},
		{KindCapability, IsCapabilityError},
	}

	for _, tt := range tests {
		err := newInitError(tt.kind, "x", nil)
		if !tt.pred(err) {
			t.Errorf("Expected predicate for %q to match", tt.kind)
		}
		for _, other := range tests {
			if other.kind == tt.kind {
				continue
			}
			if other.pred(err) {
				t.Errorf("Expected predicate for %q not to match %q", other.kind, tt.kind)
			}
		}
	}
}
