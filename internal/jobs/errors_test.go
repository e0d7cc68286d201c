package jobs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestDescribeMapsEveryErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		code     string
		recovery Recovery
		status   int
	}{
		{
			name:     "extraction failure",
			err:      fmt.Errorf("extract: %w", &ExtractionFailure{Reason: "malformed json"}),
			code:     "EXTRACTION_FAILED",
			recovery: RecoverySwitchInput,
			status:   http.StatusUnprocessableEntity,
		},
		{
			name:     "empty profile",
			err:      &EmptyProfileError{},
			code:     "EMPTY_PROFILE",
			recovery: RecoveryEditProfile,
			status:   http.StatusBadRequest,
		},
		{
			name:     "provider response",
			err:      fmt.Errorf("search: %w", &ProviderResponseError{Provider: "google", Message: "bad envelope"}),
			code:     "PROVIDER_RESPONSE",
			recovery: RecoveryTryLater,
			status:   http.StatusBadGateway,
		},
		{
			name:     "timeout",
			err:      &ExternalCallTimeout{Call: "job search", Timeout: time.Second},
			code:     "EXTERNAL_TIMEOUT",
			recovery: RecoveryRetry,
			status:   http.StatusGatewayTimeout,
		},
		{
			name:     "unknown",
			err:      errors.New("boom"),
			code:     "INTERNAL",
			recovery: RecoveryReport,
			status:   http.StatusInternalServerError,
		},
	}

	messages := make(map[string]string)
	for _, tt := range tests {
		desc := Describe(tt.err)
		if desc.Code != tt.code {
			t.Fatalf("%s: expected code %s, got %s", tt.name, tt.code, desc.Code)
		}
		if desc.Recovery != tt.recovery {
			t.Fatalf("%s: expected recovery %s, got %s", tt.name, tt.recovery, desc.Recovery)
		}
		if desc.HTTPStatus != tt.status {
			t.Fatalf("%s: expected status %d, got %d", tt.name, tt.status, desc.HTTPStatus)
		}
		if desc.Message == "" {
			t.Fatalf("%s: expected message", tt.name)
		}
		if other, ok := messages[desc.Message]; ok {
			t.Fatalf("%s shares its message with %s", tt.name, other)
		}
		messages[desc.Message] = tt.name
	}
}

func TestWrapTimeout(t *testing.T) {
	wrapped := WrapTimeout("language model", 5*time.Second, fmt.Errorf("generate: %w", context.DeadlineExceeded))

	var timeout *ExternalCallTimeout
	if !errors.As(wrapped, &timeout) {
		t.Fatalf("expected ExternalCallTimeout, got %v", wrapped)
	}
	if timeout.Call != "language model" || timeout.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout details: %+v", timeout)
	}
	if !errors.Is(wrapped, context.DeadlineExceeded) {
		t.Fatalf("expected cause to be preserved")
	}

	plain := errors.New("plain")
	if got := WrapTimeout("x", time.Second, plain); got != plain {
		t.Fatalf("expected non-timeout error unchanged")
	}

	if WrapTimeout("x", time.Second, nil) != nil {
		t.Fatalf("expected nil for nil error")
	}

	if got := WrapTimeout("y", time.Minute, wrapped); got != wrapped {
		t.Fatalf("expected already wrapped timeout unchanged")
	}
}

func TestExtractionFailureUnwraps(t *testing.T) {
	cause := errors.New("unexpected token")
	err := &ExtractionFailure{Reason: "malformed json", Cause: cause}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}
	if err.Error() != "profile extraction failed: malformed json: unexpected token" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
