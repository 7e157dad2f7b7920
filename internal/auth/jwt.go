// internal/auth/jwt.go

// Package auth issues and verifies the bearer tokens used by the API.
package auth

import (
	"context"
	"fmt"
	"time"

	"jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Denylist records revoked token IDs until their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Claims carries the identity encoded in an access token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret   []byte
	issuer   string
	tokenTTL time.Duration
	denylist Denylist
	logger   logger.Logger
}

func NewTokenService(secret, issuer string, tokenTTL time.Duration, denylist Denylist, log logger.Logger) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		tokenTTL: tokenTTL,
		denylist: denylist,
		logger:   log,
	}
}

// Issue signs a new HS256 token for the user.
func (s *TokenService) Issue(user *models.User) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenTTL)

	claims := Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errors.NewInternalError(fmt.Errorf("token signing: %w", err))
	}

	return signed, expiresAt, nil
}

// Verify parses the token, checks the signature and the denylist.
func (s *TokenService) Verify(ctx context.Context, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, errors.NewAuthenticationError("invalid or expired token")
	}

	if claims.ID != "" && s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("denylist lookup failed", map[string]interface{}{
				"error": err.Error(),
			})
			// Fail closed: an unreadable denylist must not admit revoked tokens.
			return nil, errors.NewAuthenticationError("token verification unavailable")
		}
		if revoked {
			return nil, errors.NewTokenRevokedError()
		}
	}

	return claims, nil
}

// Revoke denylists the token ID for the remainder of its lifetime.
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	if claims.ID == "" || s.denylist == nil {
		return nil
	}

	ttl := s.tokenTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		return errors.NewCacheFailureError("token revocation failed", err)
	}

	s.logger.Info("token revoked", map[string]interface{}{
		"userId": claims.Subject,
		"jti":    claims.ID,
	})

	return nil
}
