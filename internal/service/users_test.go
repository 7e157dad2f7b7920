// internal/service/users_test.go
package service

import (
	"context"
	"testing"
	"time"

	"jobmate-backend/internal/auth"
	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"
	"jobmate-backend/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ==========================
// Test Helper Functions
// ==========================

type recordingDenylist struct {
	revoked map[string]time.Duration
}

func (d *recordingDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if d.revoked == nil {
		d.revoked = map[string]time.Duration{}
	}
	d.revoked[jti] = ttl
	return nil
}

func (d *recordingDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, ok := d.revoked[jti]
	return ok, nil
}

type recordingInvalidator struct {
	users []string
}

func (r *recordingInvalidator) InvalidateUser(ctx context.Context, userID string) error {
	r.users = append(r.users, userID)
	return nil
}

func newUserService(t *testing.T, db *sqlx.DB) (*UserService, *recordingDenylist, *recordingInvalidator) {
	t.Helper()
	log := logger.NewTestLogger(t)
	denylist := &recordingDenylist{}
	invalidator := &recordingInvalidator{}
	tokens := auth.NewTokenService("test-secret", "jobmate", time.Hour, denylist, log)
	svc := NewUserService(store.NewUserStore(db, log), tokens, invalidator, bcrypt.MinCost, log)
	return svc, denylist, invalidator
}

func expectUserFetchWithHash(mock sqlmock.Sqlmock, query, hash string) {
	now := time.Now().UTC()
	mock.ExpectQuery(query).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password_hash", "full_name", "role", "phone", "location",
			"headline", "skills", "experience_years", "resume_text", "company_id",
			"is_active", "created_at", "updated_at",
		}).AddRow("user-1", "jane@example.com", hash, "Jane", "seeker", "", "Austin",
			"Backend engineer", pq.StringArray{"Go"}, 4.0, "resume body", nil, true, now, now))
}

// ==========================
// Register
// ==========================

func TestUserService_Register(t *testing.T) {
	db, mock := setupMockDB(t)
	svc, _, _ := newUserService(t, db)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-1"))

	result, err := svc.Register(context.Background(), &RegisterInput{
		Email:    "jane@example.com",
		Password: "correct horse",
		FullName: "Jane Mwangi",
		Role:     models.RoleSeeker,
		Skills:   []string{"Go"},
	})

	require.NoError(t, err)
	assert.Equal(t, "user-1", result.User.ID)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	// The stored hash must not be the raw password, and must verify.
	assert.NotEqual(t, "correct horse", result.User.PasswordHash)
	assert.True(t, auth.CheckPassword(result.User.PasswordHash, "correct horse"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	svc, _, _ := newUserService(t, db)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := svc.Register(context.Background(), &RegisterInput{
		Email:    "jane@example.com",
		Password: "correct horse",
		FullName: "Jane Mwangi",
		Role:     models.RoleSeeker,
	})

	require.Error(t, err)
	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeDuplicateEmail, stdErr.Code)
}

// ==========================
// Login
// ==========================

func TestUserService_Login(t *testing.T) {
	db, mock := setupMockDB(t)
	svc, _, _ := newUserService(t, db)

	hash, err := auth.HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	expectUserFetchWithHash(mock, "SELECT (.+) FROM users WHERE email", hash)

	result, err := svc.Login(context.Background(), "jane@example.com", "correct horse")

	require.NoError(t, err)
	assert.Equal(t, "user-1", result.User.ID)
	assert.NotEmpty(t, result.Token)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	db, mock := setupMockDB(t)
	svc, _, _ := newUserService(t, db)

	hash, err := auth.HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	expectUserFetchWithHash(mock, "SELECT (.+) FROM users WHERE email", hash)

	_, err = svc.Login(context.Background(), "jane@example.com", "wrong password")

	require.Error(t, err)
	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeAuthenticationFail, stdErr.Code)
}

func TestUserService_Login_UnknownEmailSameError(t *testing.T) {
	db, mock := setupMockDB(t)
	svc, _, _ := newUserService(t, db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WillReturnError(sqlmock.ErrCancelled)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")

	// Unknown account and wrong password must be indistinguishable.
	require.Error(t, err)
	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeAuthenticationFail, stdErr.Code)
	assert.Contains(t, stdErr.Details, "invalid email or password")
}

// ==========================
// Logout
// ==========================

func TestUserService_Logout_RevokesToken(t *testing.T) {
	db, _ := setupMockDB(t)
	svc, denylist, _ := newUserService(t, db)

	claims := &auth.Claims{
		Role: string(models.RoleSeeker),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ID:        "jti-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * time.Minute)),
		},
	}

	require.NoError(t, svc.Logout(context.Background(), claims))

	_, revoked := denylist.revoked["jti-1"]
	assert.True(t, revoked)
}

// ==========================
// Deactivation
// ==========================

func TestUserService_Deactivate(t *testing.T) {
	db, mock := setupMockDB(t)
	svc, denylist, invalidator := newUserService(t, db)

	mock.ExpectExec("UPDATE users SET is_active = FALSE").
		WillReturnResult(sqlmock.NewResult(0, 1))

	claims := &auth.Claims{
		Role: string(models.RoleSeeker),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ID:        "jti-2",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * time.Minute)),
		},
	}

	require.NoError(t, svc.Deactivate(context.Background(), claims))

	// The row is soft-deleted, the session ends, and stale analyses go.
	_, revoked := denylist.revoked["jti-2"]
	assert.True(t, revoked)
	assert.Equal(t, []string{"user-1"}, invalidator.users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Deactivate_AlreadyInactive(t *testing.T) {
	db, mock := setupMockDB(t)
	svc, denylist, _ := newUserService(t, db)

	mock.ExpectExec("UPDATE users SET is_active = FALSE").
		WillReturnResult(sqlmock.NewResult(0, 0))

	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ID: "jti-3"},
	}

	err := svc.Deactivate(context.Background(), claims)

	require.Error(t, err)
	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeResourceNotFound, stdErr.Code)
	assert.Empty(t, denylist.revoked, "token must survive a failed deactivation")
}

// ==========================
// Profile Updates
// ==========================

func TestUserService_UpdateProfile_SkillsChangeInvalidatesAnalyses(t *testing.T) {
	db, mock := setupMockDB(t)
	svc, _, invalidator := newUserService(t, db)

	expectUserFetch(mock)
	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := svc.UpdateProfile(context.Background(), "user-1", &ProfileUpdate{
		FullName:        "Jane Mwangi",
		Location:        "Austin",
		Headline:        "Backend engineer",
		Skills:          []string{"Go", "Kubernetes"},
		ExperienceYears: 4.0,
		ResumeText:      "resume body",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Kubernetes"}, []string(updated.Skills))
	assert.Equal(t, []string{"user-1"}, invalidator.users)
}

func TestUserService_UpdateProfile_CosmeticChangeKeepsAnalyses(t *testing.T) {
	db, mock := setupMockDB(t)
	svc, _, invalidator := newUserService(t, db)

	expectUserFetch(mock)
	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Same skills, experience and resume as the stored row; only the
	// headline moves.
	_, err := svc.UpdateProfile(context.Background(), "user-1", &ProfileUpdate{
		FullName:        "Jane Mwangi",
		Location:        "Austin",
		Headline:        "Staff backend engineer",
		Skills:          []string{"Go"},
		ExperienceYears: 4.0,
		ResumeText:      "resume body",
	})

	require.NoError(t, err)
	assert.Empty(t, invalidator.users)
}
