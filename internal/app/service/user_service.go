package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"coaster_catalog/internal/common"
	"coaster_catalog/internal/common/security"
	"coaster_catalog/internal/domain/model"
	"coaster_catalog/internal/domain/query"
	"coaster_catalog/internal/domain/repository"
	"coaster_catalog/internal/platform/database"
)

type UserService struct {
	userRepo repository.UserRepository
	audit    *AuditService
	log      *logrus.Entry
}

func NewUserService(userRepo repository.UserRepository, audit *AuditService) *UserService {
	return &UserService{
		userRepo: userRepo,
		audit:    audit,
		log:      logrus.WithField("component", "UserService"),
	}
}

// UpdateSelfRequest carries the fields a user may change on their own
// record. Absent fields are left untouched.
type UpdateSelfRequest struct {
	Password   *string `json:"password,omitempty" validate:"omitempty,min=5,max=50"`
	FullName   *string `json:"fullName,omitempty" validate:"omitempty,min=1,max=50"`
	GivenName  *string `json:"givenName,omitempty"`
	FamilyName *string `json:"familyName,omitempty"`
}

// AdminUpdateRequest additionally allows a role change.
type AdminUpdateRequest struct {
	Password   *string `json:"password,omitempty" validate:"omitempty,min=5,max=50"`
	FullName   *string `json:"fullName,omitempty" validate:"omitempty,min=1,max=50"`
	GivenName  *string `json:"givenName,omitempty"`
	FamilyName *string `json:"familyName,omitempty"`
	Role       *string `json:"role,omitempty" validate:"omitempty,oneof='Guest' 'Ride Operator' 'Maintenance Supervisor'"`
}

func (s *UserService) List(ctx context.Context, params query.ListParams) ([]model.User, error) {
	skip, limit := params.SkipLimit()
	pipeline := query.Pipeline(params.Match(time.Now()), params.UserSort(), skip, limit)
	return s.userRepo.Aggregate(ctx, pipeline)
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid ObjectId: %w", id, common.ErrBadRequest)
	}
	return s.userRepo.FindByID(ctx, oid)
}

// UpdateSelf merges the supplied fields into the caller's own record. A
// merge that modifies nothing is a not-updated outcome and is not audited.
func (s *UserService) UpdateSelf(ctx context.Context, principal model.Principal, req UpdateSelfRequest) error {
	oid, err := primitive.ObjectIDFromHex(principal.ID)
	if err != nil {
		return fmt.Errorf("principal id: %w", common.ErrBadRequest)
	}

	fields := bson.M{}
	if req.Password != nil {
		hashed, err := security.HashPassword(*req.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		fields["password"] = hashed
	}
	if req.FullName != nil {
		fields["fullName"] = *req.FullName
	}
	if req.GivenName != nil {
		fields["givenName"] = *req.GivenName
	}
	if req.FamilyName != nil {
		fields["familyName"] = *req.FamilyName
	}
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update: %w", common.ErrNotUpdated)
	}

	modified, err := s.userRepo.Update(ctx, oid, fields)
	if err != nil {
		return err
	}
	if modified == 0 {
		return fmt.Errorf("user %s not updated: %w", principal.ID, common.ErrNotUpdated)
	}

	return s.audit.Record(ctx, model.OpSelfUpdateUser, database.CollUsers, principal.ID, req, &principal)
}

// UpdateByAdmin merges the supplied fields into another user's record and
// stamps who performed the edit. An absent target reports not-updated, the
// outcome the route has always produced.
func (s *UserService) UpdateByAdmin(ctx context.Context, principal model.Principal, id string, req AdminUpdateRequest) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%q is not a valid ObjectId: %w", id, common.ErrBadRequest)
	}

	if _, err := s.userRepo.FindByID(ctx, oid); err != nil {
		return fmt.Errorf("user %s not updated: %w", id, common.ErrNotUpdated)
	}

	fields := bson.M{}
	if req.Password != nil {
		hashed, err := security.HashPassword(*req.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		fields["password"] = hashed
	}
	if req.FullName != nil {
		fields["fullName"] = *req.FullName
	}
	if req.GivenName != nil {
		fields["givenName"] = *req.GivenName
	}
	if req.FamilyName != nil {
		fields["familyName"] = *req.FamilyName
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update: %w", common.ErrNotUpdated)
	}
	fields["lastUpdatedOn"] = time.Now()
	fields["lastUpdatedBy"] = principal.Email

	modified, err := s.userRepo.Update(ctx, oid, fields)
	if err != nil {
		return err
	}
	if modified == 0 {
		return fmt.Errorf("user %s not updated: %w", id, common.ErrNotUpdated)
	}

	return s.audit.Record(ctx, model.OpAdminUpdateUser, database.CollUsers, id, req, &principal)
}

// Delete removes a user. The existence check runs first so a missing target
// is a clean not-found with no audit entry.
func (s *UserService) Delete(ctx context.Context, principal model.Principal, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%q is not a valid ObjectId: %w", id, common.ErrBadRequest)
	}

	if _, err := s.userRepo.FindByID(ctx, oid); err != nil {
		return err
	}

	deleted, err := s.userRepo.Delete(ctx, oid)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("user %s not deleted: %w", id, common.ErrNotFound)
	}

	s.log.WithField("target", id).Info("user deleted")
	return s.audit.Record(ctx, model.OpDeleteUser, database.CollUsers, id, nil, &principal)
}
