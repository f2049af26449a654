package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := NewAccessToken("user-1", "chef", secret, time.Minute)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "chef", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestAccessToken_Rejects(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken("user-1", "chef", []byte("secret"), time.Minute)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(tok, []byte("other"))
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	expired, err := NewAccessToken("user-1", "chef", []byte("secret"), -time.Minute)
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(expired, []byte("secret"))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
