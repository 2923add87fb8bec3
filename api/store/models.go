/* models.go
 * This file contains the documents stored in the users and user_predictions collections. Ids are read as
 * interface{} because older documents hold them as numbers and newer ones as strings, they are normalised on read
 */

package store

import (
	"time"

	"e-network/api/shared"
)

// UserDoc is a document in the users collection, keyed by the identity provider's user id
type UserDoc struct {
	UserID    string        `bson:"_id"`
	Username  string        `bson:"username,omitempty"`
	Email     string        `bson:"email,omitempty"`
	Games     []interface{} `bson:"games,omitempty"`
	Leagues   []interface{} `bson:"leagues,omitempty"`
	Teams     []interface{} `bson:"teams,omitempty"`
	CreatedAt time.Time     `bson:"createdAt,omitempty"`
	UpdatedAt time.Time     `bson:"updatedAt,omitempty"`
}

// Preferences returns the normalised preferences held by the document
func (d UserDoc) Preferences() *shared.Preferences {
	return &shared.Preferences{
		Games:   shared.NormalizeIDs(d.Games),
		Leagues: shared.NormalizeIDs(d.Leagues),
		Teams:   shared.NormalizeIDs(d.Teams),
	}
}

// PredictionDoc is one ledger entry. The _id is userId/matchId so a second write for the same match fails with a
// duplicate key error
type PredictionDoc struct {
	ID        string      `bson:"_id"`
	UserID    string      `bson:"userId"`
	MatchID   interface{} `bson:"matchId"`
	TeamID    interface{} `bson:"teamId"`
	CreatedAt time.Time   `bson:"createdAt"`
}

// PredictionKey returns the _id of a user's prediction for a match
func PredictionKey(userID string, matchID shared.ID) string {
	return userID + "/" + matchID.String()
}
