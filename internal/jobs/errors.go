package jobs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// ExtractionFailure is returned when model output cannot be turned into a profile.
type ExtractionFailure struct {
	Reason string
	Cause  error
}

func (e *ExtractionFailure) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("profile extraction failed: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("profile extraction failed: %s", e.Reason)
}

func (e *ExtractionFailure) Unwrap() error {
	return e.Cause
}

// EmptyProfileError is returned when a profile has neither skills nor interests to query on.
type EmptyProfileError struct{}

func (e *EmptyProfileError) Error() string {
	return "profile has no skills or job interests to build a search query from"
}

// ProviderResponseError is returned when the job-search provider answers with
// something that is not a usable result envelope.
type ProviderResponseError struct {
	Provider   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *ProviderResponseError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ProviderResponseError) Unwrap() error {
	return e.Cause
}

// ExternalCallTimeout is returned when a model or provider call exceeds its time budget.
type ExternalCallTimeout struct {
	Call    string
	Timeout time.Duration
	Cause   error
}

func (e *ExternalCallTimeout) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Call, e.Timeout)
}

func (e *ExternalCallTimeout) Unwrap() error {
	return e.Cause
}

// WrapTimeout converts deadline and network timeout errors into ExternalCallTimeout.
// Other errors are returned unchanged.
func WrapTimeout(call string, timeout time.Duration, err error) error {
	if err == nil {
		return nil
	}

	var already *ExternalCallTimeout
	if errors.As(err, &already) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &ExternalCallTimeout{Call: call, Timeout: timeout, Cause: err}
	}

	return err
}

// Recovery is the action suggested to the user after a failed run.
type Recovery string

const (
	RecoveryRetry       Recovery = "retry"
	RecoverySwitchInput Recovery = "switch_input_mode"
	RecoveryEditProfile Recovery = "edit_profile"
	RecoveryTryLater    Recovery = "try_again_later"
	RecoveryReport      Recovery = "report"
)

// Description is the user-facing view of a pipeline error.
type Description struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Recovery   Recovery `json:"recovery"`
	Retryable  bool     `json:"retryable"`
	HTTPStatus int      `json:"-"`
}

// Describe maps an error onto its user-visible message and recovery action.
func Describe(err error) Description {
	var (
		extraction *ExtractionFailure
		empty      *EmptyProfileError
		provider   *ProviderResponseError
		timeout    *ExternalCallTimeout
	)

	switch {
	case errors.As(err, &timeout):
		return Description{
			Code:       "EXTERNAL_TIMEOUT",
			Message:    fmt.Sprintf("The %s took too long to answer. Please retry.", timeout.Call),
			Recovery:   RecoveryRetry,
			Retryable:  true,
			HTTPStatus: http.StatusGatewayTimeout,
		}
	case errors.As(err, &extraction):
		return Description{
			Code:       "EXTRACTION_FAILED",
			Message:    "We could not read skills from this resume. Retry, or enter your skills manually.",
			Recovery:   RecoverySwitchInput,
			Retryable:  true,
			HTTPStatus: http.StatusUnprocessableEntity,
		}
	case errors.As(err, &empty):
		return Description{
			Code:       "EMPTY_PROFILE",
			Message:    "Enter at least one skill or job interest to search for jobs.",
			Recovery:   RecoveryEditProfile,
			Retryable:  false,
			HTTPStatus: http.StatusBadRequest,
		}
	case errors.As(err, &provider):
		return Description{
			Code:       "PROVIDER_RESPONSE",
			Message:    "The job search service returned an unexpected response. Please try again later.",
			Recovery:   RecoveryTryLater,
			Retryable:  true,
			HTTPStatus: http.StatusBadGateway,
		}
	default:
		return Description{
			Code:       "INTERNAL",
			Message:    "Something went wrong while searching for jobs.",
			Recovery:   RecoveryReport,
			Retryable:  false,
			HTTPStatus: http.StatusInternalServerError,
		}
	}
}
