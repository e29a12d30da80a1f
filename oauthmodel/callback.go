package oauthmodel

import "net/url"

// CallbackParameters holds the authorization response delivered to the redirect URI.
type CallbackParameters struct {
	// Code is the authorization code to exchange at the token endpoint.
	// Required on success.
	Code string

	// State is echoed back unchanged from the authorization request.
	// It must byte-match the state stored for the pending authorization.
	State string

	// Error is set by the provider when the user denied access or the request was rejected.
	// Example: "access_denied"
	Error string

	// ErrorDescription is the provider's optional human readable text for Error.
	ErrorDescription string
}

// ParseCallbackParameters reads the authorization response from the callback query string.
func ParseCallbackParameters(q url.Values) CallbackParameters {
	return CallbackParameters{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}
}
