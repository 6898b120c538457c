package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failure of the provider adapter or response parser.
type Kind string

const (
	KindMissingCredentials  Kind = "MissingCredentials"
	KindUnsupportedProvider Kind = "UnsupportedProvider"
	KindAuthFailure         Kind = "AuthFailure"
	KindRateLimited         Kind = "RateLimited"
	KindInvalidResponse     Kind = "InvalidResponse"
	KindNetworkFailure      Kind = "NetworkFailure"
	KindUnparsableResponse  Kind = "UnparsableResponse"
	KindIncompleteContent   Kind = "IncompleteContent"
)

// Error is the structured failure returned by providers, provider resolution
// and ParseContent. Payload carries the upstream error body when one was
// received.
type Error struct {
	Kind       Kind
	Provider   ProviderName
	StatusCode int
	Message    string
	Payload    string
	Err        error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Provider != "" {
		msg = string(e.Provider) + ": " + msg
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil && e.Message == "" {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the first *Error in err's chain, or "" if there
// is none.
func KindOf(err error) Kind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return ""
}

// kindForStatus maps an upstream HTTP status to an error kind.
func kindForStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuthFailure
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code >= 500:
		return KindNetworkFailure
	default:
		return KindInvalidResponse
	}
}

// statusError builds the error for a non-success upstream response.
// upstreamBody returns the raw error body an SDK kept, or fallback when the
// body was empty.
func upstreamBody(raw, fallback string) string {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	return raw
}

func statusError(provider ProviderName, code int, message, payload string) *Error {
	return &Error{
		Kind:       kindForStatus(code),
		Provider:   provider,
		StatusCode: code,
		Message:    message,
		Payload:    payload,
	}
}

// transportError wraps a failure to obtain any response at all. Deadline
// expiry and cancellation are network failures too.
func transportError(provider ProviderName, err error) *Error {
	msg := "request failed"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "request timed out"
	} else if errors.Is(err, context.Canceled) {
		msg = "request canceled"
	}
	return &Error{
		Kind:     KindNetworkFailure,
		Provider: provider,
		Message:  msg,
		Err:      err,
	}
}

// invalidResponse reports a response that arrived but cannot be used.
func invalidResponse(provider ProviderName, format string, args ...any) *Error {
	return &Error{
		Kind:     KindInvalidResponse,
		Provider: provider,
		Message:  fmt.Sprintf(format, args...),
	}
}
