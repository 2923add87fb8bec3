/* test_helpers.go
 * Contains test helper functions for store package tests
 */

package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"

	"e-network/api/shared"
)

// newMockStore creates a Store backed by an mtest mock deployment. Both collections point at the mock so
// responses are consumed in call order
func newMockStore(mt *mtest.T) *Store {
	return &Store{
		Client:   mt.Client,
		Database: mt.DB,
		Collections: Collections{
			Users:       mt.Coll,
			Predictions: mt.Coll,
		},
		Logger: zap.NewNop(),
	}
}

// CreateTestStore creates a Store connected to a test database.
// Returns the store and a cleanup function that drops the database.
func CreateTestStore(ctx context.Context, mongoURI string) (*Store, func(), error) {
	s, err := NewStore(ctx, "test_enetwork", mongoURI, zap.NewNop())
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		s.Database.Drop(context.TODO())
		s.Client.Disconnect(context.TODO())
	}
	return s, cleanup, nil
}

// mockNamespace returns the namespace used in cursor responses
func mockNamespace(coll *mongo.Collection) string {
	return coll.Database().Name() + "." + coll.Name()
}

// CreateSamplePredictionDocs creates prediction documents with a mix of numeric and string ids
func CreateSamplePredictionDocs(userID string) []bson.D {
	return []bson.D{
		{
			{Key: "_id", Value: PredictionKey(userID, "1001")},
			{Key: "userId", Value: userID},
			{Key: "matchId", Value: int32(1001)},
			{Key: "teamId", Value: int64(88)},
		},
		{
			{Key: "_id", Value: PredictionKey(userID, "1002")},
			{Key: "userId", Value: userID},
			{Key: "matchId", Value: "1002"},
			{Key: "teamId", Value: 87.0},
		},
	}
}

// CreateSampleUser creates a user for EnsureUser tests
func CreateSampleUser() shared.User {
	return shared.User{UserID: "user123", Username: "testuser", Email: "test@example.com"}
}
