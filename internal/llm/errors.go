package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies provider failures for the retry policy.
type ErrorKind int

const (
	// ErrUnavailable covers network failures and 5xx answers.
	ErrUnavailable ErrorKind = iota
	// ErrRateLimited is a 429 from the provider or the local limiter.
	ErrRateLimited
	// ErrInvalidOutput means the model answered with content that does not
	// match the requested schema.
	ErrInvalidOutput
	// ErrTruncated means a structured answer stopped at MaxTokens.
	ErrTruncated
)

func (k ErrorKind) String() string {
	switch k {
	case ErrRateLimited:
		return "rate limited"
	case ErrInvalidOutput:
		return "invalid output"
	case ErrTruncated:
		return "truncated"
	}
	return "unavailable"
}

// Error is the single error type returned by providers and decorators.
type Error struct {
	Kind ErrorKind

	// RetryAfter is the server-suggested wait for ErrRateLimited.
	RetryAfter time.Duration

	// Content is the offending model output for ErrInvalidOutput and
	// ErrTruncated.
	Content json.RawMessage

	Err error
}

func (e *Error) Error() string {
	msg := "llm: " + e.Kind.String()
	if e.Kind == ErrRateLimited && e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of err. Errors that are not *Error, such as
// transport failures below the SDKs, count as ErrUnavailable.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrUnavailable
}

// statusError maps an HTTP status from a provider SDK to an *Error.
func statusError(code int, err error) *Error {
	if code == http.StatusTooManyRequests {
		return &Error{Kind: ErrRateLimited, Err: err}
	}
	return &Error{Kind: ErrUnavailable, Err: err}
}
