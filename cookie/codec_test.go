package cookie_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-oidc-bff/cookie"
	"github.com/jrsteele09/go-oidc-bff/internal/errors"
	"github.com/stretchr/testify/require"
)

type statePayload struct {
	PendingID string `json:"pending_id"`
	Nonce     string `json:"nonce"`
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newCodec(t *testing.T, secret string, c *clock) *cookie.Codec {
	t.Helper()
	codec, err := cookie.NewCodec(secret, cookie.WithClock(c.Now))
	require.NoError(t, err)
	return codec
}

func TestSealOpen(t *testing.T) {
	c := &clock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	codec := newCodec(t, "secret", c)

	sealed, err := codec.Seal(cookie.NameState, statePayload{PendingID: "p1", Nonce: "n1"})
	require.NoError(t, err)
	require.NotContains(t, sealed, "p1")

	var got statePayload
	require.NoError(t, codec.Open(cookie.NameState, sealed, 10*time.Minute, &got))
	require.Equal(t, statePayload{PendingID: "p1", Nonce: "n1"}, got)
}

func TestOpenExpired(t *testing.T) {
	c := &clock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	codec := newCodec(t, "secret", c)

	sealed, err := codec.Seal(cookie.NameState, statePayload{PendingID: "p1"})
	require.NoError(t, err)

	c.now = c.now.Add(10 * time.Minute)
	var got statePayload
	require.NoError(t, codec.Open(cookie.NameState, sealed, 10*time.Minute, &got))

	c.now = c.now.Add(time.Second)
	err = codec.Open(cookie.NameState, sealed, 10*time.Minute, &got)
	require.True(t, errors.Is(err, errors.ErrExpired))
}

func TestOpenInvalidSignature(t *testing.T) {
	c := &clock{now: time.Now()}
	codec := newCodec(t, "secret", c)
	sealed, err := codec.Seal(cookie.NameSession, "session-id")
	require.NoError(t, err)

	var got string
	t.Run("tampered", func(t *testing.T) {
		tampered := sealed[:len(sealed)-2] + "xx"
		err := codec.Open(cookie.NameSession, tampered, time.Hour, &got)
		require.True(t, errors.Is(err, errors.ErrInvalidSignature))
	})

	t.Run("other secret", func(t *testing.T) {
		other := newCodec(t, "another-secret", c)
		err := other.Open(cookie.NameSession, sealed, time.Hour, &got)
		require.True(t, errors.Is(err, errors.ErrInvalidSignature))
	})

	t.Run("other name", func(t *testing.T) {
		err := codec.Open(cookie.NameState, sealed, time.Hour, &got)
		require.True(t, errors.Is(err, errors.ErrInvalidSignature))
	})

	t.Run("empty", func(t *testing.T) {
		err := codec.Open(cookie.NameSession, "", time.Hour, &got)
		require.True(t, errors.Is(err, errors.ErrInvalidSignature))
	})

	t.Run("garbage", func(t *testing.T) {
		err := codec.Open(cookie.NameSession, "not-a-cookie", time.Hour, &got)
		require.True(t, errors.Is(err, errors.ErrInvalidSignature))
	})
}

func TestNewCodecEmptySecret(t *testing.T) {
	_, err := cookie.NewCodec("")
	require.Error(t, err)
}
