/* user_predictions.go
 * Contains the methods for interacting with the user_predictions collection
 */

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"e-network/api/shared"
)

// GetUserPredictions does DB lookup and gets every prediction a user has made
// Preconditions: Receives a context and the user id
// Postconditions: Returns the user's ledger (empty if they have no predictions), or an error wrapping
// shared.ErrPersistenceFailed if the lookup fails
func (s *Store) GetUserPredictions(ctx context.Context, userID string) (shared.Ledger, error) {
	cursor, err := s.Collections.Predictions.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("%w: error fetching predictions from db: %w", shared.ErrPersistenceFailed, err)
	}
	defer cursor.Close(ctx)

	ledger := shared.Ledger{}
	for cursor.Next(ctx) {
		var doc PredictionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: error decoding prediction: %w", shared.ErrPersistenceFailed, err)
		}
		matchID, ok := shared.NormalizeID(doc.MatchID)
		if !ok {
			s.Logger.Warn("skipping prediction with invalid match id", zap.String("_id", doc.ID))
			continue
		}
		teamID, ok := shared.NormalizeID(doc.TeamID)
		if !ok {
			s.Logger.Warn("skipping prediction with invalid team id", zap.String("_id", doc.ID))
			continue
		}
		ledger[matchID] = teamID
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating predictions: %w", shared.ErrPersistenceFailed, err)
	}
	return ledger, nil
}

// InsertUserPrediction writes a prediction only if the user has none for the match
// Preconditions: Receives a context, the user id, the match id and the predicted team id
// Postconditions: Stores the prediction with its creation time. Returns shared.ErrAlreadyPredicted if a prediction
// for the match already exists, or an error wrapping shared.ErrPersistenceFailed if the write fails
func (s *Store) InsertUserPrediction(ctx context.Context, userID string, matchID shared.ID, teamID shared.ID) error {
	doc := PredictionDoc{
		ID:        PredictionKey(userID, matchID),
		UserID:    userID,
		MatchID:   matchID.String(),
		TeamID:    teamID.String(),
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.Collections.Predictions.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shared.ErrAlreadyPredicted
		}
		s.Logger.Error("failed to insert prediction",
			zap.String("user_id", userID), zap.String("match_id", matchID.String()), zap.Error(err))
		return fmt.Errorf("%w: failed to insert prediction: %w", shared.ErrPersistenceFailed, err)
	}
	return nil
}
