package services

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/kdd-community/website-backend/internal/audit"
	"github.com/kdd-community/website-backend/internal/config"
	"github.com/kdd-community/website-backend/internal/models"
	"github.com/kdd-community/website-backend/pkg/identity"
)

// AuthService handles admin elevation and step-down
type AuthService interface {
	VerifyAdminPassword(ctx context.Context, token, password string) models.Result
	StepDownAsAdmin(ctx context.Context, token string) models.Result
}

type authService struct {
	identity     identity.Provider
	audit        *audit.Logger
	passwordHash string
}

// NewAuthService creates a new AuthService implementation
func NewAuthService(provider identity.Provider, auditLogger *audit.Logger, cfg *config.Config) AuthService {
	return &authService{
		identity:     provider,
		audit:        auditLogger,
		passwordHash: cfg.Admin.PasswordHash,
	}
}

// VerifyAdminPassword grants the admin claim to any signed-in user who
// presents the site admin password.
func (s *authService) VerifyAdminPassword(ctx context.Context, token, password string) models.Result {
	t, err := s.identity.VerifyToken(ctx, token)
	if err != nil {
		return models.Failure(err.Error())
	}
	if bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) != nil {
		return models.Failure("Invalid password")
	}
	if err := s.identity.SetCustomClaims(ctx, t.UID, map[string]interface{}{"admin": true}); err != nil {
		return models.Failure(err.Error())
	}
	s.audit.Record(ctx, t.UID, audit.AdminLogin{})
	return models.Ok("Admin verified")
}

// StepDownAsAdmin clears the admin claim
func (s *authService) StepDownAsAdmin(ctx context.Context, token string) models.Result {
	t, err := s.identity.VerifyToken(ctx, token)
	if err != nil {
		return models.Failure(err.Error())
	}
	if err := s.identity.SetCustomClaims(ctx, t.UID, map[string]interface{}{"admin": false}); err != nil {
		return models.Failure(err.Error())
	}
	s.audit.Record(ctx, t.UID, audit.AdminLogout{})
	return models.Ok("Admin step down")
}
