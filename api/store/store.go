/* store.go
 * Contains the store struct and NewStore function. The methods for this package are split by collection:
 * preferences.go works on the users collection and user_predictions.go on the user_predictions collection
 */

package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collections holds the collections used by the store
type Collections struct {
	Users       *mongo.Collection
	Predictions *mongo.Collection
}

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections Collections
	Logger      *zap.Logger
}

// Function for initialising Store. Connects to the database and sets the collection handles
// Preconditions: Receives a context, strings containing dbName and mongoURI, and a logger
// Postconditions: Returns pointer to the Store object, or error if it occurs
func NewStore(ctx context.Context, dbName string, mongoURI string, logger *zap.Logger) (*Store, error) {
	if dbName == "" {
		return nil, fmt.Errorf("database name cannot be empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return newStore(client, client.Database(dbName), logger), nil
}

func newStore(client *mongo.Client, db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{
		Client:   client,
		Database: db,
		Collections: Collections{
			Users:       db.Collection("users"),
			Predictions: db.Collection("user_predictions"),
		},
		Logger: logger,
	}
}

// EnsureIndexes creates the secondary indexes the queries rely on. Prediction uniqueness comes from the
// userId/matchId _id and needs no index
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.Collections.Predictions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("userId_1"),
	})
	if err != nil {
		return fmt.Errorf("error creating user_predictions index: %w", err)
	}
	return nil
}

// Ping checks that the primary is reachable
func (s *Store) Ping(ctx context.Context) error {
	if err := s.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("error pinging mongo: %w", err)
	}
	return nil
}

// Disconnect closes the client connection
func (s *Store) Disconnect(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}
