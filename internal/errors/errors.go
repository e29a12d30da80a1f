package errors

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the gateway
var (
	// Identity provider errors
	ErrDiscovery = errors.New("discovery failed")
	ErrOIDC      = errors.New("oidc error")

	// Guard errors
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("invalid csrf token")

	// Upstream errors
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrNoAccessToken       = fmt.Errorf("no access token: %w", ErrUpstreamUnavailable)
	ErrNotConfigured       = errors.New("api base url not configured")

	// Cookie errors
	ErrInvalidSignature = errors.New("invalid signature")
	ErrExpired          = errors.New("expired")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Kindf returns an error of the given kind carrying a formatted message.
// The message is what gets shown to the user; the kind is matched with Is.
func Kindf(kind error, format string, args ...interface{}) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }
