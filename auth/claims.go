package auth

import (
	"context"
	"crypto"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oidc-bff/internal/errors"
)

// claims extracts the identity claims from an ID token. Signatures are only
// checked when VerifyIDToken is set.
func (c *Controller) claims(ctx context.Context, idToken string) (map[string]any, error) {
	if c.settings.VerifyIDToken {
		return c.verifiedClaims(ctx, idToken)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, errors.Kindf(errors.ErrOIDC, "Invalid ID token")
	}
	return claims, nil
}

func (c *Controller) verifiedClaims(ctx context.Context, idToken string) (map[string]any, error) {
	doc, err := c.provider.Discovery().Config(ctx)
	if err != nil {
		return nil, err
	}
	jwks, err := c.provider.Discovery().JWKS(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]crypto.PublicKey, 0, len(jwks.Keys))
	for _, k := range jwks.Keys {
		if k.Use == "" || k.Use == "sig" {
			keys = append(keys, k.Key)
		}
	}
	verifier := oidc.NewVerifier(doc.Issuer, &oidc.StaticKeySet{PublicKeys: keys}, &oidc.Config{
		ClientID: c.provider.ClientID(),
		Now:      c.nowFunc,
	})

	verified, err := verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, errors.Kindf(errors.ErrOIDC, "Invalid ID token: %v", err)
	}
	var claims map[string]any
	if err := verified.Claims(&claims); err != nil {
		return nil, errors.Kindf(errors.ErrOIDC, "Invalid ID token")
	}
	return claims, nil
}
