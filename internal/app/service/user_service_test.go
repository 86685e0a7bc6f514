package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"coaster_catalog/internal/common"
	"coaster_catalog/internal/common/security"
	"coaster_catalog/internal/domain/model"
	"coaster_catalog/internal/domain/query"
	"coaster_catalog/internal/testfixtures"
)

func strptr(s string) *string { return &s }

type userFixture struct {
	userRepo *testfixtures.UserRepository
	editRepo *testfixtures.EditRepository
	svc      *UserService
	seeded   model.User
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	userRepo := testfixtures.NewUserRepository()
	editRepo := testfixtures.NewEditRepository()

	hashed, err := security.HashPassword("superSecret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	seeded := model.User{
		ID:         primitive.NewObjectID(),
		Email:      "rider@example.com",
		Password:   hashed,
		FullName:   "Rita Rider",
		GivenName:  "Rita",
		FamilyName: "Rider",
		Role:       model.RoleGuest,
		CreatedOn:  time.Now().AddDate(0, 0, -1),
	}
	if err := userRepo.Insert(context.Background(), &seeded); err != nil {
		t.Fatalf("seed: %v", err)
	}

	return &userFixture{
		userRepo: userRepo,
		editRepo: editRepo,
		svc:      NewUserService(userRepo, NewAuditService(editRepo)),
		seeded:   seeded,
	}
}

func selfPrincipal(u model.User) model.Principal {
	return model.Principal{ID: u.ID.Hex(), Email: u.Email, Role: u.Role}
}

func adminPrincipal() model.Principal {
	return model.Principal{
		ID:    primitive.NewObjectID().Hex(),
		Email: "boss@example.com",
		Role:  model.RoleMaintenanceSupervisor,
		Permissions: map[string]bool{
			model.PermViewData:    true,
			model.PermEditAnyUser: true,
		},
	}
}

func TestUpdateSelfPartial(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	err := f.svc.UpdateSelf(ctx, selfPrincipal(f.seeded), UpdateSelfRequest{FullName: strptr("Rita T. Rider")})
	if err != nil {
		t.Fatalf("update self: %v", err)
	}

	got, err := f.userRepo.FindByID(ctx, f.seeded.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.FullName != "Rita T. Rider" {
		t.Fatalf("fullName not updated: %q", got.FullName)
	}
	if got.Email != f.seeded.Email || got.Role != f.seeded.Role ||
		got.GivenName != f.seeded.GivenName || got.Password != f.seeded.Password {
		t.Fatalf("untouched fields changed: %+v", got)
	}

	if f.editRepo.Count() != 1 {
		t.Fatalf("expected exactly one audit record, got %d", f.editRepo.Count())
	}
	if op := f.editRepo.Last().Op; op != model.OpSelfUpdateUser {
		t.Fatalf("unexpected audit op %q", op)
	}
}

func TestUpdateSelfRehashesPassword(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	err := f.svc.UpdateSelf(ctx, selfPrincipal(f.seeded), UpdateSelfRequest{Password: strptr("brandNewPass")})
	if err != nil {
		t.Fatalf("update self: %v", err)
	}

	got, _ := f.userRepo.FindByID(ctx, f.seeded.ID)
	if got.Password == "brandNewPass" {
		t.Fatal("password stored as plaintext")
	}
	if !security.CheckPasswordHash("brandNewPass", got.Password) {
		t.Fatal("new password does not verify")
	}
}

func TestUpdateSelfNoFields(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.UpdateSelf(context.Background(), selfPrincipal(f.seeded), UpdateSelfRequest{})
	if !errors.Is(err, common.ErrNotUpdated) {
		t.Fatalf("expected not-updated, got %v", err)
	}
	if f.editRepo.Count() != 0 {
		t.Fatalf("no-op update must not be audited, edits=%d", f.editRepo.Count())
	}
}

func TestUpdateSelfNoChange(t *testing.T) {
	f := newUserFixture(t)

	// Same value as already stored: the store reports zero modified.
	err := f.svc.UpdateSelf(context.Background(), selfPrincipal(f.seeded), UpdateSelfRequest{FullName: strptr("Rita Rider")})
	if !errors.Is(err, common.ErrNotUpdated) {
		t.Fatalf("expected not-updated, got %v", err)
	}
	if f.editRepo.Count() != 0 {
		t.Fatalf("zero-modified update must not be audited, edits=%d", f.editRepo.Count())
	}
}

func TestUpdateByAdmin(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	admin := adminPrincipal()

	err := f.svc.UpdateByAdmin(ctx, admin, f.seeded.ID.Hex(), AdminUpdateRequest{Role: strptr(model.RoleRideOperator)})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}

	got, _ := f.userRepo.FindByID(ctx, f.seeded.ID)
	if got.Role != model.RoleRideOperator {
		t.Fatalf("role not updated: %q", got.Role)
	}
	if got.LastUpdatedOn == nil || got.LastUpdatedBy != admin.Email {
		t.Fatalf("admin edit must stamp lastUpdatedOn/lastUpdatedBy: %+v", got)
	}

	edit := f.editRepo.Last()
	if edit.Op != model.OpAdminUpdateUser || edit.Auth == nil || edit.Auth.Email != admin.Email {
		t.Fatalf("unexpected audit record: %+v", edit)
	}
}

func TestUpdateByAdminMissingUser(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.UpdateByAdmin(context.Background(), adminPrincipal(), primitive.NewObjectID().Hex(), AdminUpdateRequest{FullName: strptr("Ghost")})
	if !errors.Is(err, common.ErrNotUpdated) {
		t.Fatalf("expected not-updated for a missing target, got %v", err)
	}
	if f.editRepo.Count() != 0 {
		t.Fatalf("failed update must not be audited, edits=%d", f.editRepo.Count())
	}
}

func TestDelete(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	admin := adminPrincipal()

	if err := f.svc.Delete(ctx, admin, f.seeded.ID.Hex()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.userRepo.FindByID(ctx, f.seeded.ID); !errors.Is(err, common.ErrNotFound) {
		t.Fatal("user should be gone")
	}

	edit := f.editRepo.Last()
	if edit.Op != model.OpDeleteUser || edit.Target != f.seeded.ID.Hex() {
		t.Fatalf("unexpected audit record: %+v", edit)
	}
}

func TestDeleteNotFound(t *testing.T) {
	f := newUserFixture(t)

	err := f.svc.Delete(context.Background(), adminPrincipal(), primitive.NewObjectID().Hex())
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if f.editRepo.Count() != 0 {
		t.Fatalf("failed delete must not be audited, edits=%d", f.editRepo.Count())
	}
}

func TestGetByIDInvalid(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.GetByID(context.Background(), "not-an-objectid")
	if !errors.Is(err, common.ErrBadRequest) {
		t.Fatalf("expected bad-request for malformed id, got %v", err)
	}
}

func TestListRunsFourStagePipeline(t *testing.T) {
	f := newUserFixture(t)
	f.userRepo.AggregateOut = []model.User{f.seeded}

	users, err := f.svc.List(context.Background(), query.ListParams{SortBy: "newest", PageSize: 2, PageNumber: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected aggregate output passthrough, got %d", len(users))
	}

	if len(f.userRepo.Pipelines) != 1 {
		t.Fatalf("expected one aggregation, got %d", len(f.userRepo.Pipelines))
	}
	pipeline := f.userRepo.Pipelines[0]
	if len(pipeline) != 4 || pipeline[0][0].Key != "$match" || pipeline[1][0].Key != "$sort" ||
		pipeline[2][0].Key != "$skip" || pipeline[3][0].Key != "$limit" {
		t.Fatalf("unexpected pipeline shape: %v", pipeline)
	}
	if pipeline[2][0].Value != int64(2) || pipeline[3][0].Value != int64(2) {
		t.Fatalf("expected skip=2 limit=2, got %v/%v", pipeline[2][0].Value, pipeline[3][0].Value)
	}
}
