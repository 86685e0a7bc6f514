package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"coaster_catalog/internal/common"
	"coaster_catalog/internal/domain/model"
	"coaster_catalog/internal/platform/database"
)

type RoleRepository interface {
	FindByName(ctx context.Context, name string) (*model.Role, error)
}

type mongoRoleRepository struct {
	db *database.Mongo
}

func NewMongoRoleRepository(db *database.Mongo) RoleRepository {
	return &mongoRoleRepository{db: db}
}

func (r *mongoRoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	db, err := r.db.Database(ctx)
	if err != nil {
		return nil, err
	}
	role := &model.Role{}
	err = db.Collection(database.CollRoles).FindOne(ctx, bson.M{"name": name}).Decode(role)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoRoleRepository.FindByName: %w", err)
	}
	return role, nil
}
