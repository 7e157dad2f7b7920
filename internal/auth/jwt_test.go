// internal/auth/jwt_test.go
package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeDenylist struct {
	revoked map[string]bool
	failing bool
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{revoked: make(map[string]bool)}
}

func (d *fakeDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if d.failing {
		return errors.New("redis down")
	}
	d.revoked[jti] = true
	return nil
}

func (d *fakeDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if d.failing {
		return false, errors.New("redis down")
	}
	return d.revoked[jti], nil
}

func newTestTokenService(t *testing.T, denylist Denylist) *TokenService {
	t.Helper()
	return NewTokenService("test-secret-at-least-16-chars", "jobmate", time.Hour, denylist, logger.NewTestLogger(t))
}

func testUser() *models.User {
	return &models.User{ID: "user-123", Role: models.RoleSeeker}
}

// ==========================
// Issue / Verify Tests
// ==========================

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := newTestTokenService(t, newFakeDenylist())

	token, expiresAt, err := svc.Issue(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, string(models.RoleSeeker), claims.Role)
	assert.NotEmpty(t, claims.ID, "token must carry a jti for revocation")
}

func TestTokenService_VerifyRejectsGarbage(t *testing.T) {
	svc := newTestTokenService(t, newFakeDenylist())

	_, err := svc.Verify(context.Background(), "not.a.token")
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeAuthenticationFail, stdErr.Code)
}

func TestTokenService_VerifyRejectsWrongSecret(t *testing.T) {
	issuer := newTestTokenService(t, newFakeDenylist())
	verifier := NewTokenService("a-completely-different-secret!", "jobmate", time.Hour, newFakeDenylist(), logger.NewTestLogger(t))

	token, _, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestTokenService_VerifyRejectsWrongIssuer(t *testing.T) {
	other := NewTokenService("test-secret-at-least-16-chars", "someone-else", time.Hour, nil, logger.NewNoOpLogger())
	svc := newTestTokenService(t, newFakeDenylist())

	token, _, err := other.Issue(testUser())
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestTokenService_VerifyRejectsExpired(t *testing.T) {
	svc := NewTokenService("test-secret-at-least-16-chars", "jobmate", -time.Minute, newFakeDenylist(), logger.NewTestLogger(t))

	token, _, err := svc.Issue(testUser())
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), token)
	assert.Error(t, err)
}

// ==========================
// Revocation Tests
// ==========================

func TestTokenService_RevokedTokenRejected(t *testing.T) {
	denylist := newFakeDenylist()
	svc := newTestTokenService(t, denylist)
	ctx := context.Background()

	token, _, err := svc.Issue(testUser())
	require.NoError(t, err)

	claims, err := svc.Verify(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, claims))
	assert.True(t, denylist.revoked[claims.ID])

	_, err = svc.Verify(ctx, token)
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeTokenRevoked, stdErr.Code)
}

func TestTokenService_VerifyFailsClosedOnDenylistError(t *testing.T) {
	denylist := newFakeDenylist()
	svc := newTestTokenService(t, denylist)
	ctx := context.Background()

	token, _, err := svc.Issue(testUser())
	require.NoError(t, err)

	denylist.failing = true

	_, err = svc.Verify(ctx, token)
	assert.Error(t, err, "unreadable denylist must not admit tokens")
}

func TestTokenService_RevokeSurfacesDenylistError(t *testing.T) {
	denylist := newFakeDenylist()
	denylist.failing = true
	svc := newTestTokenService(t, denylist)

	token, _, err := svc.Issue(testUser())
	require.NoError(t, err)

	// Parse without the denylist so we get claims to revoke.
	clean := newTestTokenService(t, newFakeDenylist())
	claims, err := clean.Verify(context.Background(), token)
	require.NoError(t, err)

	err = svc.Revoke(context.Background(), claims)
	assert.Error(t, err)
}
