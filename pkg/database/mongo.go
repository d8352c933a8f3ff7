package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"optysys-backend/pkg/apperrors"
	"optysys-backend/pkg/config"
)

// Collection names
const (
	CollectionOrganizations = "organizations"
	CollectionUsers         = "users"
	CollectionOpportunities = "opportunities"
)

// Mongo wraps the driver client and the application database. It is
// constructed once at startup and injected into the stores.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect establishes the client connection and verifies it with a ping
func Connect(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Mongo{
		client: client,
		db:     client.Database(cfg.MongoDatabase),
	}, nil
}

// EnsureIndexes creates the unique indexes the stores rely on
// (organization name, user email).
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.db.Collection(CollectionOrganizations).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create organizations index: %w", err)
	}

	_, err = m.db.Collection(CollectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users index: %w", err)
	}

	return nil
}

// Collection returns a handle to a named collection
func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

// HealthCheck pings the server
func (m *Mongo) HealthCheck(ctx context.Context) error {
	if err := m.client.Ping(ctx, nil); err != nil {
		return apperrors.ErrUnavailable
	}
	return nil
}

// Close disconnects the client
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// withTransaction runs fn inside a session-scoped transaction. The session
// is released on every exit path; driver errors are translated into the
// application error set. fn's writes commit only if it returns nil.
func (m *Mongo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return apperrors.FromMongoError(err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return apperrors.FromMongoError(err)
}
