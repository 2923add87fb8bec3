/* models.go
 * This file contain the interfaces and structs that are used by api consumers
 */

package api

import (
	"context"

	"e-network/api/external"
	"e-network/api/shared"
)

// BroaderResultsMessage is shown when the feed fell back to every match of the user's games
const BroaderResultsMessage = "Showing broader results"

// MatchSource is the part of the match provider the API depends on
type MatchSource interface {
	FetchUpcomingMatches(ctx context.Context) ([]shared.Match, error)
	FetchMatchesByIDs(ctx context.Context, ids []shared.ID) ([]shared.Match, error)
	FetchMatch(ctx context.Context, id shared.ID) (*shared.Match, error)
}

// NewsSource is the part of the news provider the API depends on
type NewsSource interface {
	FetchArticles(ctx context.Context) ([]external.Article, error)
}

// MatchCache caches the upcoming match list. A nil MatchCache disables caching
type MatchCache interface {
	GetUpcoming(ctx context.Context) ([]shared.Match, bool, error)
	SetUpcoming(ctx context.Context, matches []shared.Match) error
	Invalidate(ctx context.Context) error
}

// Feed is a personalised list of upcoming matches
type Feed struct {
	Matches      []shared.Match `json:"matches"`
	UsedFallback bool           `json:"usedFallback"`
	Message      string         `json:"message,omitempty"`
}

// PredictionsPage holds the matches open for predictions and the user's ledger
type PredictionsPage struct {
	Matches []shared.Match `json:"matches"`
	Ledger  shared.Ledger  `json:"predictions"`
}

// State of a prediction write
type State string

const (
	StateCommitted  State = "committed"
	StateRolledBack State = "rolled_back"
	StateRejected   State = "rejected"
)

// PredictionResult describes what happened to a prediction and the board at the time Record returned
type PredictionResult struct {
	MatchID   shared.ID     `json:"matchId"`
	TeamID    shared.ID     `json:"teamId"`
	State     State         `json:"state"`
	Committed shared.Ledger `json:"committed"`
	Pending   shared.Ledger `json:"pending"`
}
