package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a proxy failure; each kind maps to one HTTP status.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuth
	KindValidation
	KindNotFound
	KindUpstream
	KindMethodNotAllowed
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	default:
		return "unknown"
	}
}

// Status returns the HTTP status reported for the kind.
func (k Kind) Status() int {
	switch k {
	case KindAuth:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is what the caller sees.
type Error struct {
	Kind    Kind
	Message string
	// UpstreamStatus and UpstreamBody are set for KindUpstream.
	UpstreamStatus int
	UpstreamBody   string
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Auth reports missing or invalid credentials.
func Auth(msg string, err error) *Error {
	return &Error{Kind: KindAuth, Message: msg, Err: err}
}

// Validation reports a malformed or incomplete payload.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound reports a missing resource the caller depends on.
func NotFound(msg string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Err: err}
}

// MethodNotAllowed reports a verb other than POST.
func MethodNotAllowed() *Error {
	return &Error{Kind: KindMethodNotAllowed, Message: "Method not allowed"}
}

// NotConfigured reports a missing server-side dependency, such as an API key.
func NotConfigured(what string) *Error {
	return &Error{Kind: KindUnknown, Message: what + " not configured"}
}

// Upstream reports a non-success answer from the external API. The raw body
// is passed through to the caller.
func Upstream(service string, status int, body string) *Error {
	body = strings.TrimSpace(body)
	return &Error{
		Kind:           KindUpstream,
		Message:        fmt.Sprintf("%s API error: %d %s", service, status, body),
		UpstreamStatus: status,
		UpstreamBody:   body,
	}
}

// Classify returns the HTTP status and caller-facing message for err.
// Unclassified errors are 500 with their own message.
func Classify(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind.Status(), perr.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindUnknown
}
