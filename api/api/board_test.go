/* board_test.go
 * Contains unit tests for board.go
 */

package api

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"e-network/api/metrics"
	"e-network/api/shared"
)

func newBoardAPI(t *testing.T) (*API, *MockStore, *MockPublisher) {
	t.Helper()
	a, s, _ := newTestAPI(t,
		sampleMatch("1", "1", "10", "a", "b", 1),
		sampleMatch("2", "1", "10", "c", "d", 2),
	)
	pub := &MockPublisher{}
	a.Events = pub
	a.Metrics = metrics.New(prometheus.NewRegistry())
	return a, s, pub
}

// region Record tests

func TestRecord_Commits(t *testing.T) {
	a, s, pub := newBoardAPI(t)
	board := a.NewPredictionBoard(shared.NewSession(&shared.User{UserID: "u1"}))
	defer board.Close()

	result, err := board.Record(context.Background(), "1", "a")
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, result.State)
	assert.Equal(t, shared.Ledger{"1": "a"}, result.Committed)
	assert.Empty(t, result.Pending)
	assert.Equal(t, shared.ID("a"), s.Predictions["u1"]["1"])

	published := pub.Published()
	require.Len(t, published, 1)
	assert.Equal(t, "u1", published[0].UserID)
	assert.Equal(t, float64(1), testutil.ToFloat64(a.Metrics.Predictions.WithLabelValues("committed")))
}

func TestRecord_AlreadyPredictedLeavesStateUnchanged(t *testing.T) {
	a, s, _ := newBoardAPI(t)
	s.SetPrediction("u1", "1", "a")
	board := a.NewPredictionBoard(shared.NewSession(&shared.User{UserID: "u1"}))
	defer board.Close()

	result, err := board.Record(context.Background(), "1", "b")
	assert.ErrorIs(t, err, shared.ErrAlreadyPredicted)
	assert.Equal(t, StateRejected, result.State)
	assert.Equal(t, shared.Ledger{"1": "a"}, result.Committed)
	assert.Equal(t, 0, s.InsertCalls)
}

func TestRecord_NotAuthenticated(t *testing.T) {
	a, s, _ := newBoardAPI(t)
	board := a.NewPredictionBoard(shared.NewSession(nil))
	defer board.Close()

	result, err := board.Record(context.Background(), "1", "a")
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
	assert.Equal(t, StateRejected, result.State)
	assert.Empty(t, result.Committed)
	assert.Equal(t, 0, s.InsertCalls)
}

func TestRecord_InvalidPrediction(t *testing.T) {
	a, s, _ := newBoardAPI(t)
	closed := sampleMatch("3", "1", "10", "e", "f", -1)
	closed.Status = shared.MatchRunning
	a.Matches.(*MockMatchSource).ByID["3"] = closed

	board := a.NewPredictionBoard(shared.NewSession(&shared.User{UserID: "u1"}))
	defer board.Close()

	tests := []struct {
		name    string
		matchID shared.ID
		teamID  shared.ID
	}{
		{"team not playing", "1", "zzz"},
		{"match closed", "3", "e"},
		{"unknown match", "404", "a"},
		{"empty team", "1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := board.Record(context.Background(), tt.matchID, tt.teamID)
			assert.ErrorIs(t, err, shared.ErrInvalidPrediction)
			assert.Equal(t, StateRejected, result.State)
		})
	}
	assert.Equal(t, 0, s.InsertCalls)
}

func TestRecord_PersistenceFailureRollsBack(t *testing.T) {
	a, s, pub := newBoardAPI(t)
	cause := errors.New("write concern timeout")
	s.InsertUserPredictionError = cause
	board := a.NewPredictionBoard(shared.NewSession(&shared.User{UserID: "u1"}))
	defer board.Close()

	result, err := board.Record(context.Background(), "1", "a")
	assert.ErrorIs(t, err, shared.ErrPersistenceFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, StateRolledBack, result.State)
	assert.Empty(t, result.Committed)
	assert.Empty(t, result.Pending)
	assert.Empty(t, pub.Published())

	// The match can be predicted once the store recovers
	s.InsertUserPredictionError = nil
	result, err = board.Record(context.Background(), "1", "a")
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, result.State)
}

func TestRecord_LostRaceReloadsLedger(t *testing.T) {
	a, s, _ := newBoardAPI(t)
	board := a.NewPredictionBoard(shared.NewSession(&shared.User{UserID: "u1"}))
	defer board.Close()

	// Another device writes the same match between the local check and the insert
	s.BeforeInsert = func(userID string, matchID shared.ID) {
		s.BeforeInsert = nil
		s.SetPrediction(userID, matchID, "b")
	}

	result, err := board.Record(context.Background(), "1", "a")
	assert.ErrorIs(t, err, shared.ErrAlreadyPredicted)
	assert.Equal(t, StateRolledBack, result.State)
	assert.Equal(t, shared.Ledger{"1": "b"}, result.Committed)
	assert.Empty(t, result.Pending)
	assert.Equal(t, float64(1), testutil.ToFloat64(a.Metrics.PredictionRaces))
}

func TestRecord_ConcurrentWritesFirstWins(t *testing.T) {
	a, s, _ := newBoardAPI(t)
	board := a.NewPredictionBoard(shared.NewSession(&shared.User{UserID: "u1"}))
	defer board.Close()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = board.Record(context.Background(), "1", "a")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, shared.ErrAlreadyPredicted)
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, shared.Ledger{"1": "a"}, s.Predictions["u1"])
}

func TestRecord_PublishFailureStillCommits(t *testing.T) {
	a, _, _ := newBoardAPI(t)
	a.Events = &MockPublisher{Error: errors.New("broker down")}
	board := a.NewPredictionBoard(shared.NewSession(&shared.User{UserID: "u1"}))
	defer board.Close()

	result, err := board.Record(context.Background(), "1", "a")
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, result.State)
}

// endregion

// region Session tests

func TestBoard_FollowsSession(t *testing.T) {
	a, s, _ := newBoardAPI(t)
	s.SetPrediction("u1", "1", "a")
	s.SetPrediction("u2", "2", "c")
	session := shared.NewSession(&shared.User{UserID: "u1"})
	board := a.NewPredictionBoard(session)
	defer board.Close()
	ctx := context.Background()

	ledger, err := board.Ledger(ctx)
	require.NoError(t, err)
	assert.Equal(t, shared.Ledger{"1": "a"}, ledger)

	session.SignOut()
	ledger, err = board.Ledger(ctx)
	require.NoError(t, err)
	assert.Empty(t, ledger)

	session.SignIn(shared.User{UserID: "u2"})
	ledger, err = board.Ledger(ctx)
	require.NoError(t, err)
	assert.Equal(t, shared.Ledger{"2": "c"}, ledger)
}

func TestBoard_LoadFailure(t *testing.T) {
	a, s, _ := newBoardAPI(t)
	s.GetUserPredictionsError = errors.New("mongo down")
	board := a.NewPredictionBoard(shared.NewSession(&shared.User{UserID: "u1"}))
	defer board.Close()

	_, err := board.Record(context.Background(), "1", "a")
	assert.ErrorContains(t, err, "mongo down")
	assert.ErrorIs(t, err, shared.ErrPersistenceFailed)
	assert.Equal(t, 0, s.InsertCalls)
}

func TestRecordPrediction_Stateless(t *testing.T) {
	a, s, _ := newBoardAPI(t)

	_, err := a.RecordPrediction(context.Background(), shared.User{UserID: "u1"}, "2", "d")
	require.NoError(t, err)
	_, err = a.RecordPrediction(context.Background(), shared.User{UserID: "u1"}, "2", "c")
	assert.ErrorIs(t, err, shared.ErrAlreadyPredicted)
	assert.Equal(t, shared.Ledger{"2": "d"}, s.Predictions["u1"])
}

// endregion
