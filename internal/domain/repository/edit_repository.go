package repository

import (
	"context"
	"fmt"

	"coaster_catalog/internal/domain/model"
	"coaster_catalog/internal/platform/database"
)

// EditRepository is insert-only; audit records are never updated, deleted
// or read back by the service.
type EditRepository interface {
	Insert(ctx context.Context, edit *model.Edit) error
}

type mongoEditRepository struct {
	db *database.Mongo
}

func NewMongoEditRepository(db *database.Mongo) EditRepository {
	return &mongoEditRepository{db: db}
}

func (r *mongoEditRepository) Insert(ctx context.Context, edit *model.Edit) error {
	db, err := r.db.Database(ctx)
	if err != nil {
		return err
	}
	if _, err := db.Collection(database.CollEdits).InsertOne(ctx, edit); err != nil {
		return fmt.Errorf("mongoEditRepository.Insert: %w", err)
	}
	return nil
}
