// Package identity verifies bearer tokens and resolves user records. Custom
// claims (the admin flag) live on the user record and are re-read on every
// verification, so claim changes take effect without reissuing tokens.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kdd-community/website-backend/internal/config"
	"github.com/kdd-community/website-backend/internal/models"
	"github.com/kdd-community/website-backend/internal/repositories"
)

// Token is a verified identity token
type Token struct {
	UID    string
	Email  string
	Claims map[string]interface{}
}

// Provider is the identity provider interface
type Provider interface {
	VerifyToken(ctx context.Context, token string) (*Token, error)
	GetUser(ctx context.Context, uid string) (*models.User, error)
	SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error
}

// AdminCheck is the outcome of an admin-claim verification
type AdminCheck struct {
	Valid   bool
	Message string
	UID     string
}

// VerifyAdmin verifies the token and requires the admin custom claim. An
// invalid token and a missing claim both come back as Valid=false with a
// message; the UID is returned whenever the token itself verified.
func VerifyAdmin(ctx context.Context, p Provider, token string) AdminCheck {
	t, err := p.VerifyToken(ctx, token)
	if err != nil {
		return AdminCheck{Valid: false, Message: "Unauthorized"}
	}
	if admin, ok := t.Claims["admin"].(bool); !ok || !admin {
		return AdminCheck{Valid: false, Message: "Unauthorized", UID: t.UID}
	}
	return AdminCheck{Valid: true, Message: "Authorized", UID: t.UID}
}

// JWTProvider implements Provider with HS256 tokens and user records from
// the document store.
type JWTProvider struct {
	secret    []byte
	expiresIn time.Duration
	users     repositories.UserRepository
}

// NewJWTProvider creates a JWT-backed Provider
func NewJWTProvider(cfg *config.Config, users repositories.UserRepository) *JWTProvider {
	return &JWTProvider{
		secret:    []byte(cfg.JWT.Secret),
		expiresIn: time.Duration(cfg.JWT.ExpiresIn) * time.Second,
		users:     users,
	}
}

// VerifyToken validates the token signature and expiry, then overlays the
// live custom claims from the user record.
func (p *JWTProvider) VerifyToken(ctx context.Context, tokenString string) (*Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	uid, _ := claims["sub"].(string)
	if uid == "" {
		return nil, errors.New("token has no subject")
	}
	email, _ := claims["email"].(string)

	out := &Token{UID: uid, Email: email, Claims: map[string]interface{}{}}
	user, err := p.users.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// First time this subject is seen: provision a record so later
			// lookups (audit actor resolution, claim grants) resolve.
			if err := p.users.Upsert(ctx, &models.User{UID: uid, Email: email}); err != nil {
				return nil, err
			}
			return out, nil
		}
		return nil, err
	}
	for k, v := range user.CustomClaims {
		out.Claims[k] = v
	}
	return out, nil
}

// GetUser resolves a user record by uid
func (p *JWTProvider) GetUser(ctx context.Context, uid string) (*models.User, error) {
	return p.users.FindByUID(ctx, uid)
}

// SetCustomClaims replaces the custom claim set on a user record
func (p *JWTProvider) SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	return p.users.SetCustomClaims(ctx, uid, claims)
}

// IssueToken signs a token for the given user
func (p *JWTProvider) IssueToken(uid, email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   uid,
		"email": email,
		"exp":   time.Now().Add(p.expiresIn).Unix(),
		"iat":   time.Now().Unix(),
	})
	return token.SignedString(p.secret)
}
