package oauthmodel

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// CodeChallenge derives the PKCE code_challenge sent on the authorization request.
func CodeChallenge(verifier string, method CodeMethodType) (string, error) {
	if verifier == "" {
		return "", ErrEmptyCodeVerifier
	}
	switch method {
	case CodeMethodTypeNone:
		return verifier, nil
	case CodeMethodTypeS256:
		hash := sha256.Sum256([]byte(verifier))
		return base64.RawURLEncoding.EncodeToString(hash[:]), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCodeChallengeMethod, method)
	}
}
