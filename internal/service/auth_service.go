// Package service — AuthService fronts the hosted auth (GoTrue password
// grant) and attaches the caller's profile to the session. DEV_AUTH swaps
// the hosted grant for a bcrypt check against the dev_logins table so the
// stack runs without a reachable auth instance.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/brickgo/crm-bfa-go/internal/domain"
	"github.com/brickgo/crm-bfa-go/internal/port"
)

var authTracer = otel.Tracer("service/auth")

// AuthService orchestrates sign-in and token validation.
type AuthService struct {
	auth      port.AuthStore
	profiles  port.ProfileStore
	jwtSecret []byte
	accessTTL time.Duration
	devAuth   bool
	logger    *zap.Logger
}

// NewAuthService creates the auth service. jwtSecret must match the secret
// the hosted auth signs its tokens with.
func NewAuthService(
	auth port.AuthStore,
	profiles port.ProfileStore,
	jwtSecret string,
	accessTTL time.Duration,
	devAuth bool,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		auth:      auth,
		profiles:  profiles,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		devAuth:   devAuth,
		logger:    logger,
	}
}

// ============================================================
// Login — POST /v1/auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.Session, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()
	span.SetAttributes(attribute.Bool("dev_auth", s.devAuth))

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "required"}
	}
	if req.Password == "" {
		return nil, &domain.ErrValidation{Field: "password", Message: "required"}
	}

	if s.devAuth {
		return s.devLogin(ctx, email, req.Password)
	}

	session, err := s.auth.PasswordGrant(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfile(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve profile: %w", err)
	}
	if !profile.IsActive() {
		s.logger.Warn("login: blocked profile",
			zap.String("user_id", profile.ID),
		)
		return nil, &domain.ErrAccountBlocked{ProfileID: profile.ID}
	}

	session.Profile = profile
	s.logger.Info("user logged in",
		zap.String("user_id", session.UserID),
		zap.String("role", profile.Role),
	)
	return session, nil
}

// devLogin verifies the password against the dev_logins bcrypt hash and
// issues a locally signed token.
func (s *AuthService) devLogin(ctx context.Context, email, password string) (*domain.Session, error) {
	dev, err := s.auth.GetDevLogin(ctx, email)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(dev.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("dev login: bad password", zap.String("email", email))
		return nil, &domain.ErrUnauthorized{Message: "invalid credentials"}
	}

	profile, err := s.profiles.GetProfile(ctx, dev.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("resolve profile: %w", err)
	}
	if !profile.IsActive() {
		return nil, &domain.ErrAccountBlocked{ProfileID: profile.ID}
	}

	token, err := s.signAccessToken(profile)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("dev login", zap.String("user_id", profile.ID))
	return &domain.Session{
		AccessToken: token,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		UserID:      profile.ID,
		Email:       profile.Email,
		Profile:     profile,
	}, nil
}

// ============================================================
// Session — GET /v1/auth/session
// ============================================================

// Session re-resolves the caller's profile from validated token claims.
// Blocking takes effect here, on the very next request.
func (s *AuthService) Session(ctx context.Context, claims *domain.AccessClaims) (*domain.Session, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Session")
	defer span.End()

	profile, err := s.profiles.GetProfile(ctx, claims.Sub)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive() {
		return nil, &domain.ErrAccountBlocked{ProfileID: profile.ID}
	}

	return &domain.Session{
		UserID:  profile.ID,
		Email:   profile.Email,
		Profile: profile,
	}, nil
}

// ============================================================
// Token validation
// ============================================================

// jwtClaims covers both hosted-auth tokens and DEV_AUTH ones; both are
// HS256 over the same secret.
type jwtClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// ValidateAccessToken parses and verifies a bearer token.
func (s *AuthService) ValidateAccessToken(tokenString string) (*domain.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}
	if claims.Subject == "" {
		return nil, &domain.ErrUnauthorized{Message: "token missing subject"}
	}

	return &domain.AccessClaims{
		Sub:   claims.Subject,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

func (s *AuthService) signAccessToken(profile *domain.Profile) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		Email: profile.Email,
		Role:  profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "crm-bfa",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
