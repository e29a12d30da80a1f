package oauthmodel

import "errors"

var (
	ErrInvalidCodeChallengeMethod = errors.New("invalid code challenge method")
	ErrEmptyCodeVerifier          = errors.New("empty code verifier")
)

// ErrorResponse is the JSON body returned for API errors.
type ErrorResponse struct {
	// Error is a short machine readable code such as "unauthenticated" or "forbidden".
	Error string `json:"error"`

	// ErrorDescription is a human readable explanation.
	ErrorDescription string `json:"error_description,omitempty"`
}

// Error codes used in ErrorResponse
const (
	ErrorCodeUnauthenticated     = "unauthenticated"
	ErrorCodeForbidden           = "forbidden"
	ErrorCodeBadGateway          = "upstream_unavailable"
	ErrorCodeNotImplemented      = "not_implemented"
	ErrorCodeInternalServerError = "server_error"
)
