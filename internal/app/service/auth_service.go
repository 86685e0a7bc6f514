package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coaster_catalog/internal/common"
	"coaster_catalog/internal/common/security"
	"coaster_catalog/internal/domain/model"
	"coaster_catalog/internal/domain/repository"
	"coaster_catalog/internal/platform/database"
)

type AuthService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	audit    *AuditService
	tokens   *security.TokenService
	limiter  LoginLimiter
	log      *logrus.Entry
}

func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	audit *AuditService,
	tokens *security.TokenService,
	limiter LoginLimiter,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		audit:    audit,
		tokens:   tokens,
		limiter:  limiter,
		log:      logrus.WithField("component", "AuthService"),
	}
}

type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=5,max=50"`
	FullName   string `json:"fullName" validate:"required,min=1,max=50"`
	GivenName  string `json:"givenName" validate:"required"`
	FamilyName string `json:"familyName" validate:"required"`
	Role       string `json:"role" validate:"required,oneof='Guest' 'Ride Operator' 'Maintenance Supervisor'"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5,max=50"`
}

type AuthResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

// Register creates a new account, audits it and issues a session token.
// The duplicate-email pre-check gives a friendly message; the unique index
// underneath turns a lost race into the same conflict outcome.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return nil, fmt.Errorf("user already registered: %w", common.ErrConflict)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:         primitive.NewObjectID(),
		Email:      req.Email,
		Password:   hashed,
		FullName:   req.FullName,
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
		Role:       req.Role,
		CreatedOn:  time.Now(),
	}

	if err := s.userRepo.Insert(ctx, user); err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, model.OpRegister, database.CollUsers, user.ID.Hex(), user, nil); err != nil {
		return nil, err
	}

	token, err := s.IssueAuthToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.WithField("email", user.Email).Info("new user registered")
	return &AuthResponse{
		Message: fmt.Sprintf("New user %s registered", user.FullName),
		Token:   token,
		User:    user,
	}, nil
}

// Login verifies credentials. Not-found and wrong-password produce the same
// outcome so callers cannot probe which emails are registered.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.limiter.Allow(ctx, req.Email); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user == nil || !security.CheckPasswordHash(req.Password, user.Password) {
		if lerr := s.limiter.RecordFailure(ctx, req.Email); lerr != nil {
			s.log.WithError(lerr).Warn("failed to record login failure")
		}
		return nil, fmt.Errorf("invalid login credentials provided: %w", common.ErrBadRequest)
	}

	if err := s.limiter.Reset(ctx, req.Email); err != nil {
		s.log.WithError(err).Warn("failed to reset login attempts")
	}

	token, err := s.IssueAuthToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Message: fmt.Sprintf("Welcome back, %s", user.FullName),
		Token:   token,
		User:    user,
	}, nil
}

// IssueAuthToken resolves the user's role to its permission set and signs
// the session claims. A role with no Role document resolves to an empty
// permission set rather than an error.
func (s *AuthService) IssueAuthToken(ctx context.Context, user *model.User) (string, error) {
	permissions, err := s.ResolvePermissions(ctx, user.Role)
	if err != nil {
		return "", err
	}
	token, err := s.tokens.GenerateToken(user, permissions)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *AuthService) ResolvePermissions(ctx context.Context, roleName string) (map[string]bool, error) {
	role, err := s.roleRepo.FindByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("resolve role %q: %w", roleName, err)
	}

	permissions := make(map[string]bool, len(role.Permissions))
	for name, granted := range role.Permissions {
		if granted {
			permissions[name] = true
		}
	}
	return permissions, nil
}
