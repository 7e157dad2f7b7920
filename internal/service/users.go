// internal/service/users.go

// Package service implements the portal's business logic between the HTTP
// handlers and the store/search/cache/ML layers.
package service

import (
	"context"
	"time"

	"jobmate-backend/internal/auth"
	apperrors "jobmate-backend/internal/common/errors"
	"jobmate-backend/internal/common/logger"
	"jobmate-backend/internal/models"
	"jobmate-backend/internal/store"
)

// AnalysisInvalidator drops a user's cached ML analyses. Satisfied by
// AnalysisService; profile edits must not serve scores computed against the
// previous resume.
type AnalysisInvalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}

type UserService struct {
	users      *store.UserStore
	tokens     *auth.TokenService
	analyses   AnalysisInvalidator
	bcryptCost int
	logger     logger.Logger
}

func NewUserService(users *store.UserStore, tokens *auth.TokenService, analyses AnalysisInvalidator, bcryptCost int, log logger.Logger) *UserService {
	return &UserService{
		users:      users,
		tokens:     tokens,
		analyses:   analyses,
		bcryptCost: bcryptCost,
		logger:     log.WithFields(map[string]interface{}{"service": "users"}),
	}
}

// RegisterInput carries the validated registration payload.
type RegisterInput struct {
	Email           string
	Password        string
	FullName        string
	Role            models.UserRole
	Phone           string
	Location        string
	Headline        string
	Skills          []string
	ExperienceYears float64
}

// AuthResult is a signed-in session: the account plus its bearer token.
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Register creates the account and signs the first token.
func (s *UserService) Register(ctx context.Context, input *RegisterInput) (*AuthResult, error) {
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &models.User{
		Email:           input.Email,
		PasswordHash:    hash,
		FullName:        input.FullName,
		Role:            input.Role,
		Phone:           input.Phone,
		Location:        input.Location,
		Headline:        input.Headline,
		Skills:          input.Skills,
		ExperienceYears: input.ExperienceYears,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", map[string]interface{}{
		"userId": user.ID,
		"role":   string(user.Role),
	})

	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Login verifies credentials and issues a token. Unknown accounts and wrong
// passwords produce the same error, so login cannot probe for emails.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.NewAuthenticationError("invalid email or password")
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, apperrors.NewAuthenticationError("invalid email or password")
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout denylists the presented token until its natural expiry.
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) error {
	return s.tokens.Revoke(ctx, claims)
}

// Deactivate closes the caller's account: the row is soft-deleted, the
// presented token is revoked, and cached analyses are dropped.
func (s *UserService) Deactivate(ctx context.Context, claims *auth.Claims) error {
	if err := s.users.Deactivate(ctx, claims.Subject); err != nil {
		return err
	}

	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return err
	}

	if err := s.analyses.InvalidateUser(ctx, claims.Subject); err != nil {
		s.logger.Warn("analysis invalidation failed", map[string]interface{}{
			"userId": claims.Subject,
			"error":  err.Error(),
		})
	}

	s.logger.Info("user deactivated", map[string]interface{}{"userId": claims.Subject})
	return nil
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	FullName        string
	Phone           string
	Location        string
	Headline        string
	Skills          []string
	ExperienceYears float64
	ResumeText      string
}

// UpdateProfile rewrites the profile. A resume or skills change invalidates
// the user's cached ML analyses, since every analysis type reads them.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update *ProfileUpdate) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	analysisInputsChanged := user.ResumeText != update.ResumeText ||
		user.ExperienceYears != update.ExperienceYears ||
		!equalStrings(user.Skills, update.Skills)

	user.FullName = update.FullName
	user.Phone = update.Phone
	user.Location = update.Location
	user.Headline = update.Headline
	user.Skills = update.Skills
	user.ExperienceYears = update.ExperienceYears
	user.ResumeText = update.ResumeText

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	if analysisInputsChanged {
		if err := s.analyses.InvalidateUser(ctx, userID); err != nil {
			s.logger.Warn("analysis invalidation failed", map[string]interface{}{
				"userId": userID,
				"error":  err.Error(),
			})
		}
	}

	return user, nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
