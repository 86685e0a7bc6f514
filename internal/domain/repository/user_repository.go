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

type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Insert(ctx context.Context, user *model.User) error
	// Update applies a $set merge of fields and reports the modified count.
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]model.User, error)
}

type mongoUserRepository struct {
	db *database.Mongo
}

func NewMongoUserRepository(db *database.Mongo) UserRepository {
	return &mongoUserRepository{db: db}
}

func (r *mongoUserRepository) coll(ctx context.Context) (*mongo.Collection, error) {
	db, err := r.db.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(database.CollUsers), nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	user := &model.User{}
	if err := coll.FindOne(ctx, filter).Decode(user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoUserRepository.findOne: %w", err)
	}
	return user, nil
}

func (r *mongoUserRepository) Insert(ctx context.Context, user *model.User) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	if _, err := coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("mongoUserRepository.Insert: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (int64, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}
	result, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return 0, fmt.Errorf("mongoUserRepository.Update: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}
	result, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("mongoUserRepository.Delete: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoUserRepository) Aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]model.User, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongoUserRepository.Aggregate: %w", err)
	}
	users := []model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongoUserRepository.Aggregate: %w", err)
	}
	return users, nil
}
