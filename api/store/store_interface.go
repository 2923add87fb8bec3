/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 */

package store

import (
	"context"

	"e-network/api/shared"
)

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	GetPreferences(ctx context.Context, userID string) (*shared.Preferences, error)
	StorePreferences(ctx context.Context, userID string, update shared.PreferencesUpdate) error
	EnsureUser(ctx context.Context, user shared.User) error
	GetUserPredictions(ctx context.Context, userID string) (shared.Ledger, error)
	InsertUserPrediction(ctx context.Context, userID string, matchID shared.ID, teamID shared.ID) error
	Ping(ctx context.Context) error
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)
