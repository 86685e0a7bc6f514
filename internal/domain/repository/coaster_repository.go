package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"coaster_catalog/internal/common"
	"coaster_catalog/internal/domain/model"
	"coaster_catalog/internal/platform/database"
)

type CoasterRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Coaster, error)
	// FindByNamePark backs the duplicate check on the (name, park) pair.
	FindByNamePark(ctx context.Context, name, park string) (*model.Coaster, error)
	Insert(ctx context.Context, coaster *model.Coaster) error
	Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]model.Coaster, error)
}

type mongoCoasterRepository struct {
	db *database.Mongo
}

func NewMongoCoasterRepository(db *database.Mongo) CoasterRepository {
	return &mongoCoasterRepository{db: db}
}

func (r *mongoCoasterRepository) coll(ctx context.Context) (*mongo.Collection, error) {
	db, err := r.db.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(database.CollCoasters), nil
}

func (r *mongoCoasterRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Coaster, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoCoasterRepository) FindByNamePark(ctx context.Context, name, park string) (*model.Coaster, error) {
	return r.findOne(ctx, bson.M{"name": name, "park": park})
}

func (r *mongoCoasterRepository) findOne(ctx context.Context, filter bson.M) (*model.Coaster, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	coaster := &model.Coaster{}
	if err := coll.FindOne(ctx, filter).Decode(coaster); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoCoasterRepository.findOne: %w", err)
	}
	return coaster, nil
}

func (r *mongoCoasterRepository) Insert(ctx context.Context, coaster *model.Coaster) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	if _, err := coll.InsertOne(ctx, coaster); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("coaster with given name and park already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("mongoCoasterRepository.Insert: %w", err)
	}
	return nil
}

func (r *mongoCoasterRepository) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]model.Coaster, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongoCoasterRepository.Aggregate: %w", err)
	}
	coasters := []model.Coaster{}
	if err := cursor.All(ctx, &coasters); err != nil {
		return nil, fmt.Errorf("mongoCoasterRepository.Aggregate: %w", err)
	}
	return coasters, nil
}
