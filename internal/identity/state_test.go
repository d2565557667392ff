package identity

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthenticator(secret string) *Authenticator {
	return &Authenticator{stateSecret: secret}
}

func TestSignedState_RoundTrip(t *testing.T) {
	a := testAuthenticator("test-secret")

	now := time.Now()
	signed, err := a.GetSignedState(OAuthState{
		CSRF:      "abc123",
		Redirect:  "/dashboard",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(5 * time.Minute).Unix(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	state, err := a.VerifySignedState(signed)
	require.NoError(t, err)
	assert.Equal(t, "abc123", state.CSRF)
	assert.Equal(t, "/dashboard", state.Redirect)
}

func TestSignedState_TamperedPayloadRejected(t *testing.T) {
	a := testAuthenticator("test-secret")

	signed, err := a.GetSignedState(OAuthState{
		CSRF:      "abc123",
		Redirect:  "/dashboard",
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	})
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(signed)
	require.NoError(t, err)
	raw[0] ^= 0xff

	_, err = a.VerifySignedState(base64.StdEncoding.EncodeToString(raw))
	assert.EqualError(t, err, "invalid state signature")
}

func TestSignedState_WrongSecretRejected(t *testing.T) {
	signed, err := testAuthenticator("secret-a").GetSignedState(OAuthState{
		CSRF:      "abc123",
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	})
	require.NoError(t, err)

	_, err = testAuthenticator("secret-b").VerifySignedState(signed)
	assert.EqualError(t, err, "invalid state signature")
}

func TestSignedState_ExpiredRejected(t *testing.T) {
	a := testAuthenticator("test-secret")

	signed, err := a.GetSignedState(OAuthState{
		CSRF:      "abc123",
		IssuedAt:  time.Now().Add(-10 * time.Minute).Unix(),
		ExpiresAt: time.Now().Add(-5 * time.Minute).Unix(),
	})
	require.NoError(t, err)

	_, err = a.VerifySignedState(signed)
	assert.EqualError(t, err, "state expired")
}

func TestSignedState_GarbageInput(t *testing.T) {
	a := testAuthenticator("test-secret")

	_, err := a.VerifySignedState("not base64!!!")
	assert.Error(t, err)

	_, err = a.VerifySignedState(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.EqualError(t, err, "state too short")
}

func TestAccessTokenScope(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "u1",
		"scope": "openid profile email",
	})
	raw, err := token.SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	assert.Equal(t, "openid profile email", AccessTokenScope(raw))
}

func TestAccessTokenScope_BadInput(t *testing.T) {
	assert.Empty(t, AccessTokenScope("not-a-jwt"))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"})
	raw, err := token.SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	assert.Empty(t, AccessTokenScope(raw))
}
