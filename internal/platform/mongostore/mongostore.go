// Package mongostore connects the portal to MongoDB and owns the collection
// names and index definitions shared by the document repositories.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/wellness/portal/internal/platform/db"
)

const (
	UsersCollection = "users"
	GoalsCollection = "goals"
)

// Store is a connected client bound to one database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri and verifies the primary is reachable.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Database() *mongo.Database { return s.db }

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Indexes returns the index definitions per collection.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("email_unique").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "role", Value: 1}},
				Options: options.Index().SetName("role"),
			},
		},
		GoalsCollection: {
			{
				Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("user_created"),
			},
		},
	}
}

// EnsureIndexes creates any missing index and returns the names reported by
// the server. Existing indexes with the same definition are left alone.
func (s *Store) EnsureIndexes(ctx context.Context) ([]string, error) {
	var names []string
	for coll, models := range Indexes() {
		created, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models)
		if err != nil {
			return names, fmt.Errorf("create indexes on %s: %w", coll, err)
		}
		names = append(names, created...)
	}
	return names, nil
}

// Probe reports the store for the /health/db endpoint.
func (s *Store) Probe() db.Probe {
	return db.Probe{
		Driver: "mongo",
		Ping: func(ctx context.Context) error {
			return s.client.Ping(ctx, readpref.Primary())
		},
		Details: func() interface{} {
			return map[string]string{"database": s.db.Name()}
		},
	}
}

// IsDuplicateKey reports whether err is a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
