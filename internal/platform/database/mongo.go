package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names in the document store.
const (
	CollUsers    = "User"
	CollCoasters = "Coasters"
	CollRoles    = "Role"
	CollEdits    = "Edit"
)

// Mongo owns the single shared client for the process. Connect is
// single-flight: the first caller dials, concurrent callers wait for the
// same attempt and share its outcome.
type Mongo struct {
	uri    string
	dbName string

	once   sync.Once
	client *mongo.Client
	db     *mongo.Database
	err    error
}

func NewMongo(uri, dbName string) *Mongo {
	return &Mongo{uri: uri, dbName: dbName}
}

func (m *Mongo) Connect(ctx context.Context) error {
	m.once.Do(func() {
		opts := options.Client().
			ApplyURI(m.uri).
			SetServerSelectionTimeout(10 * time.Second)

		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			m.err = fmt.Errorf("mongo connect: %w", err)
			return
		}
		if err := client.Ping(ctx, nil); err != nil {
			m.err = fmt.Errorf("mongo ping: %w", err)
			return
		}
		m.client = client
		m.db = client.Database(m.dbName)
	})
	return m.err
}

// Database returns the shared handle, connecting on first use.
func (m *Mongo) Database(ctx context.Context) (*mongo.Database, error) {
	if err := m.Connect(ctx); err != nil {
		return nil, err
	}
	return m.db, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique and text indexes the listing and
// duplicate checks rely on. Unique indexes close the check-then-insert
// window on User.email and Coasters (name, park); text indexes back the
// keywords filter.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	db, err := m.Database(ctx)
	if err != nil {
		return err
	}

	_, err = db.Collection(CollUsers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "email", Value: "text"},
				{Key: "fullName", Value: "text"},
				{Key: "givenName", Value: "text"},
				{Key: "familyName", Value: "text"},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}

	_, err = db.Collection(CollCoasters).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "name", Value: 1},
				{Key: "park", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "park", Value: "text"},
				{Key: "manufacturer", Value: "text"},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ensure coaster indexes: %w", err)
	}

	return nil
}
