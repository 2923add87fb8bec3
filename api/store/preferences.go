/* preferences.go
 * Contains the methods for interacting with the users collection
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"e-network/api/shared"
)

// GetPreferences does DB lookup and gets the preferences for a user
// Preconditions: Receives a context and the user id
// Postconditions: Returns the user's normalised preferences, mongo.ErrNoDocuments if the user has no document, or
// an error wrapping shared.ErrPersistenceFailed if the lookup fails
func (s *Store) GetPreferences(ctx context.Context, userID string) (*shared.Preferences, error) {
	opts := options.FindOne().SetProjection(bson.M{"games": 1, "leagues": 1, "teams": 1})

	var result UserDoc
	err := s.Collections.Users.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: error fetching preferences from db: %w", shared.ErrPersistenceFailed, err)
	}
	return result.Preferences(), nil
}

// StorePreferences merges a partial preferences update into the user's document
// Preconditions: Receives a context, the user id and the update. Nil fields of the update are left untouched
// Postconditions: Creates the document if needed and sets only the supplied fields, or returns an error wrapping
// shared.ErrPersistenceFailed
func (s *Store) StorePreferences(ctx context.Context, userID string, update shared.PreferencesUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Games != nil {
		set["games"] = idStrings(*update.Games)
	}
	if update.Leagues != nil {
		set["leagues"] = idStrings(*update.Leagues)
	}
	if update.Teams != nil {
		set["teams"] = idStrings(*update.Teams)
	}

	_, err := s.Collections.Users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		s.Logger.Error("failed to store preferences", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("%w: failed to store preferences: %w", shared.ErrPersistenceFailed, err)
	}
	return nil
}

// EnsureUser creates the user's document on first sign in. Existing documents are left unchanged
func (s *Store) EnsureUser(ctx context.Context, user shared.User) error {
	if user.UserID == "" {
		return fmt.Errorf("user id cannot be empty")
	}
	_, err := s.Collections.Users.UpdateOne(ctx,
		bson.M{"_id": user.UserID},
		bson.M{"$setOnInsert": bson.M{
			"username":  user.Username,
			"email":     user.Email,
			"createdAt": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to create user document: %w", shared.ErrPersistenceFailed, err)
	}
	return nil
}

// idStrings stores ids as strings, dropping empty ones and duplicates
func idStrings(ids []shared.ID) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[shared.ID]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id.String())
	}
	return out
}
