// Package cookie seals small values into tamper-evident, time-limited cookie strings.
package cookie

import (
	"crypto/sha512"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/jrsteele09/go-oidc-bff/internal/errors"
	"golang.org/x/crypto/hkdf"
)

// Cookie names double as the securecookie name, so a value sealed for one use cannot be opened as another.
const (
	NameState   = "state"
	NameSession = "sid"
	NameCSRF    = "csrf"
)

// Codec signs values with a key derived from the server secret.
// Values are not encrypted: only integrity and age are guaranteed.
type Codec struct {
	sc  *securecookie.SecureCookie
	now func() time.Time
}

type envelope struct {
	Value    json.RawMessage `json:"v"`
	IssuedAt int64           `json:"iat"`
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock replaces the clock used to stamp and age sealed values.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec derives a 64 byte HMAC key from secret with HKDF-SHA512.
func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("cookie secret cannot be empty")
	}
	hashKey, err := deriveHashKey([]byte(secret))
	if err != nil {
		return nil, err
	}

	sc := securecookie.New(hashKey, nil)
	sc.SetSerializer(securecookie.JSONEncoder{})
	// Age is enforced from our own envelope so callers can pick the limit per value.
	sc.MaxAge(0)

	c := &Codec{sc: sc, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Seal encodes value under name with the current time embedded.
func (c *Codec) Seal(name string, value any) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", errors.Wrapf(err, "cookie: marshal %s", name)
	}
	encoded, err := c.sc.Encode(name, envelope{Value: raw, IssuedAt: c.now().Unix()})
	if err != nil {
		return "", errors.Wrapf(err, "cookie: seal %s", name)
	}
	return encoded, nil
}

// Open verifies sealed and decodes it into dst.
// It returns ErrInvalidSignature when the value was not produced by this codec under name,
// and ErrExpired when it was sealed more than maxAge ago.
func (c *Codec) Open(name, sealed string, maxAge time.Duration, dst any) error {
	if sealed == "" {
		return errors.Wrapf(errors.ErrInvalidSignature, "cookie: empty %s", name)
	}
	var env envelope
	if err := c.sc.Decode(name, sealed, &env); err != nil {
		return errors.Wrapf(errors.ErrInvalidSignature, "cookie: open %s", name)
	}
	issued := time.Unix(env.IssuedAt, 0)
	if maxAge > 0 && c.now().Sub(issued) > maxAge {
		return errors.Wrapf(errors.ErrExpired, "cookie: %s sealed at %s", name, issued.UTC().Format(time.RFC3339))
	}
	if err := json.Unmarshal(env.Value, dst); err != nil {
		return errors.Wrapf(errors.ErrInvalidSignature, "cookie: decode %s", name)
	}
	return nil
}

func deriveHashKey(secret []byte) ([]byte, error) {
	kdf := hkdf.New(sha512.New, secret, nil, []byte("INTEGRITY"))
	hashKey := make([]byte, 64)
	if _, err := io.ReadFull(kdf, hashKey); err != nil {
		return nil, fmt.Errorf("failed deriving cookie hash key: %w", err)
	}
	return hashKey, nil
}
