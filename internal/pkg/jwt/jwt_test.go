package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("0123456789abcdef0123", time.Hour)

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "asha", user.RoleIntern)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	m, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	claims, err := ClaimsFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, Claims{UserID: "user-1", Username: "asha", Role: user.RoleIntern}, claims)
}

func TestDecode_RejectsForeignSecret(t *testing.T) {
	issuer := NewJWTService("0123456789abcdef0123", time.Hour)
	verifier := NewJWTService("another-secret-0123456", time.Hour)

	token, _, err := issuer.GenerateAccessToken("user-1", "asha", user.RoleAdmin)
	require.NoError(t, err)

	_, err = verifier.JWTAuth().Decode(token)
	assert.Error(t, err)
}

func TestClaimsFromMap_Invalid(t *testing.T) {
	cases := []map[string]interface{}{
		{"user_id": "u", "role": "intern"},                    // no type
		{"user_id": "u", "role": "intern", "type": "refresh"}, // wrong type
		{"user_id": "", "role": "intern", "type": "access"},   // no subject
		{"user_id": "u", "role": "owner", "type": "access"},   // unknown role
	}
	for _, m := range cases {
		_, err := ClaimsFromMap(m)
		assert.ErrorIs(t, err, ErrInvalidClaims)
	}
}

func TestSSEToken(t *testing.T) {
	svc := NewJWTService("0123456789abcdef0123", time.Hour)

	token, expiresIn, err := svc.GenerateSSEToken("user-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	userID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	// An access token cannot open the stream, nor can an SSE token act as one.
	access, _, err := svc.GenerateAccessToken("user-1", "asha", user.RoleIntern)
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.ErrorIs(t, err, ErrInvalidClaims)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	m, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	_, err = ClaimsFromMap(m)
	assert.ErrorIs(t, err, ErrInvalidClaims)

	_, err = NewJWTService("another-secret-0123456", time.Hour).ValidateSSEToken(token)
	assert.Error(t, err)
}
