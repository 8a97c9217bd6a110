package ai

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidInput indicates a caller mistake (empty batch, empty text,
	// over-length text). Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderRequired is returned when a provider is not supplied.
	ErrProviderRequired = errors.New("AI provider required")
)

// QuotaExhaustedError is returned when a call kept hitting the hosted API's
// quota and all backoff attempts were spent. RetryAfter is a hint for how
// long the caller should wait before trying again.
type QuotaExhaustedError struct {
	Attempts   int
	RetryAfter time.Duration
}

func (e *QuotaExhaustedError) Error() string {
	return fmt.Sprintf("API quota exhausted after %d attempts (retry after %s)", e.Attempts, e.RetryAfter)
}

// TransientAPIError is returned when a call kept failing with transport or
// server errors and the fixed retry budget was spent.
type TransientAPIError struct {
	Attempts int
	Err      error
}

func (e *TransientAPIError) Error() string {
	return fmt.Sprintf("transient API failure after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientAPIError) Unwrap() error {
	return e.Err
}

// isQuotaSignal reports whether an API error indicates quota exhaustion.
// Hosted services surface this inconsistently, so the check is textual:
// HTTP 429, RESOURCE_EXHAUSTED, or explicit rate-limit wording.
func isQuotaSignal(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(msg), "rate limit") ||
		strings.Contains(strings.ToLower(msg), "quota")
}

var retryDelayPattern = regexp.MustCompile(`retryDelay[^0-9]*(\d+)s`)

// retryAfterHint extracts a server-suggested wait from a quota error, if the
// error message carries one (e.g. "'retryDelay': '14s'"). Returns 0 when no
// hint is present.
func retryAfterHint(err error) time.Duration {
	if err == nil {
		return 0
	}
	m := retryDelayPattern.FindStringSubmatch(err.Error())
	if len(m) != 2 {
		return 0
	}
	secs, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0
	}
	return time.Duration(secs) * time.Second
}
