// Package auth resolves session identity for the owner-facing API. The public
// share path never uses this: there the shareable token is the credential.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "carevault/pkg/domain"
)

// Claims carries the identity extracted from a validated session token.
type Claims struct {
	UserID id.UserID
}

// JWTService validates and (for development tooling and tests) issues
// HMAC-signed session tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
}

// NewJWTService builds a validator around a shared signing key.
func NewJWTService(signingKey string) *JWTService {
	return &JWTService{signingKey: []byte(signingKey), issuer: "carevault"}
}

// ValidateToken checks the signature and expiry of a session token and
// extracts the owner identity.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(sub)
	if err != nil {
		return nil, errors.New("invalid subject claim")
	}
	return &Claims{UserID: userID}, nil
}

// IssueToken mints a session token for the given owner. Used by tests and
// local tooling; production sessions come from the upstream login service.
func (s *JWTService) IssueToken(userID id.UserID, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": s.issuer,
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	return token.SignedString(s.signingKey)
}
