// Package apperr carries the error kinds the relay distinguishes and the
// HTTP status each kind maps to at the delivery boundary.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	Internal Kind = iota
	InvalidInput
	UpstreamAuth
	UpstreamRateLimit
	UpstreamTransport
	UpstreamResponse
	Synthesis
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case UpstreamAuth:
		return "upstream_auth"
	case UpstreamRateLimit:
		return "upstream_rate_limit"
	case UpstreamTransport:
		return "upstream_transport"
	case UpstreamResponse:
		return "upstream_response"
	case Synthesis:
		return "synthesis"
	default:
		return "internal"
	}
}

// Error is a classified failure. Msg, when set, prefixes the cause in Error().
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Msg
	case e.Msg == "":
		return e.Err.Error()
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap classifies err. A nil err stays nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromStatus classifies a vendor's HTTP response status.
func FromStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return UpstreamAuth
	case code == http.StatusTooManyRequests:
		return UpstreamRateLimit
	case code >= 500:
		return UpstreamTransport
	default:
		return UpstreamResponse
	}
}

// HTTPStatus keeps every upstream failure on 500; only caller mistakes get 400.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case InvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
