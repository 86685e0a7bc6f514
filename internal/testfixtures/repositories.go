// Package testfixtures provides in-memory collaborators for tests:
// repositories backed by maps instead of the document store, and a
// deterministic login limiter.
package testfixtures

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"coaster_catalog/internal/common"
	"coaster_catalog/internal/domain/model"
)

// UserRepository is an in-memory repository.UserRepository. Aggregate does
// not evaluate pipelines; it records them and returns AggregateOut so tests
// can assert on the stages a service built.
type UserRepository struct {
	mu           sync.Mutex
	users        map[string]*model.User
	Pipelines    []mongo.Pipeline
	AggregateOut []model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*model.User)}
}

func (f *UserRepository) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

func (f *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id.Hex()]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, common.ErrNotFound
}

func (f *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *UserRepository) Insert(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
	}
	copied := *user
	f.users[user.ID.Hex()] = &copied
	return nil
}

func (f *UserRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id.Hex()]
	if !ok {
		return 0, nil
	}

	modified := false
	set := func(dst *string, v interface{}) {
		if s, ok := v.(string); ok && *dst != s {
			*dst = s
			modified = true
		}
	}
	for key, value := range fields {
		switch key {
		case "password":
			set(&u.Password, value)
		case "fullName":
			set(&u.FullName, value)
		case "givenName":
			set(&u.GivenName, value)
		case "familyName":
			set(&u.FamilyName, value)
		case "role":
			set(&u.Role, value)
		case "lastUpdatedBy":
			set(&u.LastUpdatedBy, value)
		case "lastUpdatedOn":
			if ts, ok := value.(time.Time); ok {
				u.LastUpdatedOn = &ts
				modified = true
			}
		}
	}
	if !modified {
		return 0, nil
	}
	return 1, nil
}

func (f *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id.Hex()]; !ok {
		return 0, nil
	}
	delete(f.users, id.Hex())
	return 1, nil
}

func (f *UserRepository) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pipelines = append(f.Pipelines, pipeline)
	return f.AggregateOut, nil
}

// CoasterRepository is an in-memory repository.CoasterRepository.
type CoasterRepository struct {
	mu           sync.Mutex
	coasters     map[string]*model.Coaster
	Pipelines    []mongo.Pipeline
	AggregateOut []model.Coaster
}

func NewCoasterRepository() *CoasterRepository {
	return &CoasterRepository{coasters: make(map[string]*model.Coaster)}
}

func (f *CoasterRepository) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.coasters)
}

func (f *CoasterRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Coaster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.coasters[id.Hex()]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, common.ErrNotFound
}

func (f *CoasterRepository) FindByNamePark(ctx context.Context, name, park string) (*model.Coaster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.coasters {
		if c.Name == name && c.Park == park {
			copied := *c
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *CoasterRepository) Insert(ctx context.Context, coaster *model.Coaster) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.coasters {
		if c.Name == coaster.Name && c.Park == coaster.Park {
			return fmt.Errorf("coaster with given name and park already exists: %w", common.ErrConflict)
		}
	}
	copied := *coaster
	f.coasters[coaster.ID.Hex()] = &copied
	return nil
}

func (f *CoasterRepository) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]model.Coaster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pipelines = append(f.Pipelines, pipeline)
	return f.AggregateOut, nil
}

// RoleRepository is seeded with the grants the Role collection is expected
// to hold in a deployed system.
type RoleRepository struct {
	Roles map[string]*model.Role
}

func NewRoleRepository() *RoleRepository {
	return &RoleRepository{Roles: map[string]*model.Role{
		model.RoleGuest: {
			Name:        model.RoleGuest,
			Permissions: map[string]bool{},
		},
		model.RoleRideOperator: {
			Name:        model.RoleRideOperator,
			Permissions: map[string]bool{model.PermViewData: true},
		},
		model.RoleMaintenanceSupervisor: {
			Name: model.RoleMaintenanceSupervisor,
			Permissions: map[string]bool{
				model.PermViewData:     true,
				model.PermEditAnyUser:  true,
				model.PermEditCoasters: true,
			},
		},
	}}
}

func (f *RoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	if role, ok := f.Roles[name]; ok {
		return role, nil
	}
	return nil, common.ErrNotFound
}

// EditRepository collects audit records in memory.
type EditRepository struct {
	mu    sync.Mutex
	edits []model.Edit
}

func NewEditRepository() *EditRepository {
	return &EditRepository{}
}

func (f *EditRepository) Insert(ctx context.Context, edit *model.Edit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, *edit)
	return nil
}

func (f *EditRepository) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edits)
}

func (f *EditRepository) Last() model.Edit {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edits[len(f.edits)-1]
}

// LoginLimiter mirrors the redis limiter's counting semantics in memory.
type LoginLimiter struct {
	Max      int
	Failures map[string]int
}

func NewLoginLimiter(max int) *LoginLimiter {
	return &LoginLimiter{Max: max, Failures: make(map[string]int)}
}

func (l *LoginLimiter) Allow(ctx context.Context, email string) error {
	if l.Failures[email] >= l.Max {
		return common.ErrTooManyLogins
	}
	return nil
}

func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) error {
	l.Failures[email]++
	return nil
}

func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	delete(l.Failures, email)
	return nil
}
