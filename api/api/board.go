/* board.go
 * Contains the PredictionBoard, the write path for predictions. A prediction is applied to the local board, written
 * to the store with a conditional insert, and committed or rolled back depending on the outcome of the write
 */

package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"e-network/api/events"
	"e-network/api/logic"
	"e-network/api/shared"
)

// PredictionBoard holds the ledger of the user signed in to a session. It follows the session: signing out clears
// the board and signing in makes the next call load the new user's ledger
type PredictionBoard struct {
	api     *API
	session *shared.Session
	board   *logic.Board

	mu          sync.Mutex
	loadedFor   string
	unsubscribe func()
}

// NewPredictionBoard creates a board bound to the session. Close releases the session subscription
func (a *API) NewPredictionBoard(session *shared.Session) *PredictionBoard {
	pb := &PredictionBoard{
		api:     a,
		session: session,
		board:   logic.NewBoard(nil),
	}
	pb.unsubscribe = session.Subscribe(pb.onSessionChange)
	return pb
}

// Close stops following the session
func (pb *PredictionBoard) Close() {
	if pb.unsubscribe != nil {
		pb.unsubscribe()
	}
}

func (pb *PredictionBoard) onSessionChange(*shared.User) {
	pb.mu.Lock()
	pb.loadedFor = ""
	pb.mu.Unlock()
	pb.board.Reset()
}

// ensureLoaded loads the ledger of userID unless it is already on the board
func (pb *PredictionBoard) ensureLoaded(ctx context.Context, userID string) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.loadedFor == userID {
		return nil
	}
	ledger, err := pb.api.GetLedger(ctx, userID)
	if err != nil {
		return err
	}
	pb.board.Replace(ledger)
	pb.loadedFor = userID
	return nil
}

// reload replaces the committed ledger with the one in the store
func (pb *PredictionBoard) reload(ctx context.Context, userID string) {
	ledger, err := pb.api.GetLedger(ctx, userID)
	if err != nil {
		pb.api.Logger.Warn("failed to reload ledger", zap.String("user_id", userID), zap.Error(err))
		return
	}
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.board.Replace(ledger)
	pb.loadedFor = userID
}

// Ledger returns the committed ledger of the signed in user, empty when nobody is signed in
func (pb *PredictionBoard) Ledger(ctx context.Context) (shared.Ledger, error) {
	user := pb.session.Current()
	if user == nil {
		return shared.Ledger{}, nil
	}
	if err := pb.ensureLoaded(ctx, user.UserID); err != nil {
		return nil, err
	}
	return pb.board.Committed(), nil
}

// Record predicts teamID as the winner of matchID for the signed in user
// Preconditions: Receives a context, the match id and the team id
// Postconditions: Returns the result with the board state at return time. The error is
// shared.ErrAlreadyPredicted if the match already has a prediction (including one written concurrently elsewhere),
// shared.ErrNotAuthenticated if nobody is signed in, shared.ErrInvalidPrediction if the match is closed or the team
// does not play in it, and shared.ErrPersistenceFailed if the store write failed. Only a nil error commits
func (pb *PredictionBoard) Record(ctx context.Context, matchID shared.ID, teamID shared.ID) (PredictionResult, error) {
	result := PredictionResult{MatchID: matchID, TeamID: teamID, State: StateRejected}

	user := pb.session.Current()
	if user != nil {
		if err := pb.ensureLoaded(ctx, user.UserID); err != nil {
			return pb.snapshot(result), err
		}
	}

	if pb.board.Has(matchID) {
		pb.api.Metrics.Prediction("already_predicted")
		return pb.snapshot(result), shared.ErrAlreadyPredicted
	}
	if user == nil {
		pb.api.Metrics.Prediction("not_authenticated")
		return pb.snapshot(result), shared.ErrNotAuthenticated
	}
	if err := pb.validate(ctx, matchID, teamID); err != nil {
		pb.api.Metrics.Prediction("invalid")
		return pb.snapshot(result), err
	}

	if err := pb.board.Tentative(matchID, teamID); err != nil {
		return pb.snapshot(result), err
	}

	err := pb.api.Store.InsertUserPrediction(ctx, user.UserID, matchID, teamID)
	switch {
	case errors.Is(err, shared.ErrAlreadyPredicted):
		pb.board.Rollback(matchID)
		pb.api.Metrics.Race()
		pb.api.Metrics.Prediction("already_predicted")
		pb.api.Logger.Info("prediction lost a race",
			zap.String("user_id", user.UserID), zap.String("match_id", matchID.String()))
		pb.reload(ctx, user.UserID)
		result.State = StateRolledBack
		return pb.snapshot(result), shared.ErrAlreadyPredicted
	case err != nil:
		pb.board.Rollback(matchID)
		pb.api.Metrics.Prediction("persistence_failed")
		result.State = StateRolledBack
		if !errors.Is(err, shared.ErrPersistenceFailed) {
			err = fmt.Errorf("%w: %w", shared.ErrPersistenceFailed, err)
		}
		return pb.snapshot(result), err
	}

	pb.board.Commit(matchID)
	pb.api.Metrics.Prediction("committed")
	result.State = StateCommitted

	event := events.PredictionRecorded{
		UserID:    user.UserID,
		MatchID:   matchID,
		TeamID:    teamID,
		CreatedAt: time.Now().UTC(),
	}
	if err := pb.api.Events.PublishPrediction(ctx, event); err != nil {
		pb.api.Logger.Warn("failed to publish prediction event", zap.String("user_id", user.UserID), zap.Error(err))
	}
	return pb.snapshot(result), nil
}

// validate checks the match against the provider before anything is written
func (pb *PredictionBoard) validate(ctx context.Context, matchID shared.ID, teamID shared.ID) error {
	if matchID == "" || teamID == "" {
		return fmt.Errorf("%w: match and team are required", shared.ErrInvalidPrediction)
	}
	matches, err := pb.api.Matches.FetchMatchesByIDs(ctx, []shared.ID{matchID})
	if err != nil {
		return fmt.Errorf("error validating prediction: %w", err)
	}
	for _, m := range matches {
		if m.ID == matchID {
			return logic.ValidatePrediction(m, teamID)
		}
	}
	return fmt.Errorf("%w: unknown match %s", shared.ErrInvalidPrediction, matchID)
}

func (pb *PredictionBoard) snapshot(result PredictionResult) PredictionResult {
	result.Committed = pb.board.Committed()
	result.Pending = pb.board.Pending()
	return result
}
