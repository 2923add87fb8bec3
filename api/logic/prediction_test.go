/* prediction_test.go
 * Contains unit tests for prediction.go
 */

package logic

import (
	"e-network/api/shared"
	"testing"

	"github.com/stretchr/testify/assert"
)

// region Board tests

func TestBoard_TentativeThenCommit(t *testing.T) {
	b := NewBoard(shared.Ledger{})

	assert.NoError(t, b.Tentative("1", "10"))
	assert.Equal(t, shared.Ledger{"1": "10"}, b.Pending())
	assert.Empty(t, b.Committed())

	b.Commit("1")
	assert.Empty(t, b.Pending())
	assert.Equal(t, shared.Ledger{"1": "10"}, b.Committed())
}

func TestBoard_TentativeThenRollback(t *testing.T) {
	b := NewBoard(nil)

	assert.NoError(t, b.Tentative("1", "10"))
	b.Rollback("1")

	assert.Empty(t, b.Pending())
	assert.Empty(t, b.Committed())
	assert.False(t, b.Has("1"))
}

func TestBoard_RejectsCommittedEntry(t *testing.T) {
	b := NewBoard(shared.Ledger{"1": "10"})

	err := b.Tentative("1", "11")
	assert.ErrorIs(t, err, shared.ErrAlreadyPredicted)
	assert.Equal(t, shared.Ledger{"1": "10"}, b.Committed())
	assert.Empty(t, b.Pending())
}

func TestBoard_RejectsPendingEntry(t *testing.T) {
	b := NewBoard(nil)
	assert.NoError(t, b.Tentative("1", "10"))

	err := b.Tentative("1", "10")
	assert.ErrorIs(t, err, shared.ErrAlreadyPredicted)
}

func TestBoard_RejectsEmptyIDs(t *testing.T) {
	b := NewBoard(nil)
	assert.ErrorIs(t, b.Tentative("", "10"), shared.ErrInvalidPrediction)
	assert.ErrorIs(t, b.Tentative("1", ""), shared.ErrInvalidPrediction)
}

func TestBoard_CommitWithoutPendingIsNoop(t *testing.T) {
	b := NewBoard(shared.Ledger{"1": "10"})
	b.Commit("2")
	assert.Equal(t, shared.Ledger{"1": "10"}, b.Committed())
}

func TestBoard_SeedIsCopied(t *testing.T) {
	seed := shared.Ledger{"1": "10"}
	b := NewBoard(seed)
	seed["2"] = "20"

	assert.Equal(t, shared.Ledger{"1": "10"}, b.Committed())
}

func TestBoard_ReplaceKeepsPending(t *testing.T) {
	b := NewBoard(nil)
	assert.NoError(t, b.Tentative("2", "20"))

	b.Replace(shared.Ledger{"1": "10"})

	assert.Equal(t, shared.Ledger{"1": "10"}, b.Committed())
	assert.Equal(t, shared.Ledger{"2": "20"}, b.Pending())
}

func TestBoard_Reset(t *testing.T) {
	b := NewBoard(shared.Ledger{"1": "10"})
	assert.NoError(t, b.Tentative("2", "20"))

	b.Reset()
	assert.Empty(t, b.Committed())
	assert.Empty(t, b.Pending())
}

// endregion

// region ValidatePrediction tests

func TestValidatePrediction(t *testing.T) {
	open := shared.Match{
		ID:        "1",
		Status:    shared.MatchNotStarted,
		Opponents: [2]shared.Opponent{{TeamID: "10", Name: "G2"}, {TeamID: "11", Name: "Fnatic"}},
	}
	assert.NoError(t, ValidatePrediction(open, "10"))
	assert.ErrorIs(t, ValidatePrediction(open, "12"), shared.ErrInvalidPrediction)

	running := open
	running.Status = shared.MatchRunning
	assert.ErrorIs(t, ValidatePrediction(running, "10"), shared.ErrInvalidPrediction)
}

func TestValidatePrediction_TBDOpponent(t *testing.T) {
	m := shared.Match{ID: "1", Status: shared.MatchNotStarted, Opponents: [2]shared.Opponent{{TeamID: "10"}, {}}}
	assert.ErrorIs(t, ValidatePrediction(m, ""), shared.ErrInvalidPrediction)
}

// endregion
