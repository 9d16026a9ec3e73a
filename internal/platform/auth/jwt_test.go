package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "carevault/pkg/domain"
)

func TestJWTService(t *testing.T) {
	svc := NewJWTService("test-signing-key")
	owner := id.NewUserID()

	t.Run("round trip", func(t *testing.T) {
		token, err := svc.IssueToken(owner, time.Hour)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, owner, claims.UserID)
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		other := NewJWTService("other-key")
		token, err := other.IssueToken(owner, time.Hour)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token, err := svc.IssueToken(owner, -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("rejects a foreign issuer", func(t *testing.T) {
		now := time.Now()
		foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iss": "someone-else",
			"sub": owner.String(),
			"iat": now.Unix(),
			"exp": now.Add(time.Hour).Unix(),
		})
		signed, err := foreign.SignedString([]byte("test-signing-key"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.Error(t, err)
	})

	t.Run("rejects a token without expiry", func(t *testing.T) {
		eternal := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iss": "carevault",
			"sub": owner.String(),
		})
		signed, err := eternal.SignedString([]byte("test-signing-key"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.Error(t, err)
	})

	t.Run("rejects a non-UUID subject", func(t *testing.T) {
		now := time.Now()
		bad := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"iss": "carevault",
			"sub": "admin",
			"iat": now.Unix(),
			"exp": now.Add(time.Hour).Unix(),
		})
		signed, err := bad.SignedString([]byte("test-signing-key"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.Error(t, err)
	})
}
