package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/brickgo/crm-bfa-go/internal/domain"
	"github.com/brickgo/crm-bfa-go/internal/infra/observability"
	"github.com/brickgo/crm-bfa-go/internal/port"
)

var dirTracer = otel.Tracer("service/directory")

// DirectoryService manages application users: listing, the two-step
// creation (auth user then profile row) and block/unblock.
type DirectoryService struct {
	profiles port.ProfileStore
	auth     port.AuthStore
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewDirectoryService creates the directory service.
func NewDirectoryService(
	profiles port.ProfileStore,
	auth port.AuthStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *DirectoryService {
	return &DirectoryService{
		profiles: profiles,
		auth:     auth,
		metrics:  metrics,
		logger:   logger,
	}
}

// List returns all application users, newest first.
func (s *DirectoryService) List(ctx context.Context) ([]domain.Profile, error) {
	ctx, span := dirTracer.Start(ctx, "Directory.List")
	defer span.End()

	return s.profiles.ListProfiles(ctx)
}

// Get returns one user by id.
func (s *DirectoryService) Get(ctx context.Context, id string) (*domain.Profile, error) {
	ctx, span := dirTracer.Start(ctx, "Directory.Get")
	defer span.End()
	span.SetAttributes(attribute.String("profile.id", id))

	return s.profiles.GetProfile(ctx, id)
}

// Create provisions a new rep: first the auth user (email pre-confirmed),
// then the profile row keyed on the auth subject. If the profile write
// fails the auth user stays behind; re-running the form upserts over it.
func (s *DirectoryService) Create(ctx context.Context, req *domain.CreateUserRequest) (*domain.Profile, error) {
	ctx, span := dirTracer.Start(ctx, "Directory.Create")
	defer span.End()

	if !strings.Contains(req.Email, "@") {
		return nil, &domain.ErrValidation{Field: "email", Message: "invalid email"}
	}
	if len(req.Password) < 6 {
		return nil, &domain.ErrValidation{Field: "password", Message: "minimum 6 characters"}
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return nil, &domain.ErrValidation{Field: "first_name", Message: "required"}
	}
	if strings.TrimSpace(req.LastName) == "" {
		return nil, &domain.ErrValidation{Field: "last_name", Message: "required"}
	}

	role := req.Role
	if role == "" {
		role = domain.RoleCommercial
	}
	if role != domain.RoleAdmin && role != domain.RoleCommercial {
		return nil, &domain.ErrValidation{Field: "role", Message: "must be admin or commercial"}
	}

	userID, err := s.auth.CreateAuthUser(ctx, req)
	if err != nil {
		s.metrics.IncrExternalError("auth")
		return nil, err
	}

	profile := &domain.Profile{
		ID:        userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      role,
	}
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		s.logger.Error("profile write failed after auth user creation",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		s.metrics.IncrExternalError("profiles")
		return nil, err
	}

	s.logger.Info("user created",
		zap.String("user_id", userID),
		zap.String("role", role),
	)
	return profile, nil
}

// Block sets a user's role to blocked, which removes them from the active
// rep count and rejects their tokens on the next request.
func (s *DirectoryService) Block(ctx context.Context, id string) error {
	ctx, span := dirTracer.Start(ctx, "Directory.Block")
	defer span.End()
	span.SetAttributes(attribute.String("profile.id", id))

	if err := s.profiles.SetRole(ctx, id, domain.RoleBlocked); err != nil {
		return err
	}
	s.logger.Info("user blocked", zap.String("user_id", id))
	return nil
}

// Unblock restores a blocked user to the commercial role.
func (s *DirectoryService) Unblock(ctx context.Context, id string) error {
	ctx, span := dirTracer.Start(ctx, "Directory.Unblock")
	defer span.End()
	span.SetAttributes(attribute.String("profile.id", id))

	if err := s.profiles.SetRole(ctx, id, domain.RoleCommercial); err != nil {
		return err
	}
	s.logger.Info("user unblocked", zap.String("user_id", id))
	return nil
}
