/* prediction.go
 * Contains the local two-phase transaction used when recording a prediction: the entry is applied tentatively,
 * written to the store, and then either committed or rolled back depending on the result of the write
 */

package logic

import (
	"e-network/api/shared"
	"fmt"
	"sync"
)

// Board holds a user's committed ledger alongside the predictions that are waiting on a durable write
type Board struct {
	mu        sync.Mutex
	committed shared.Ledger
	pending   shared.Ledger
}

// NewBoard creates a board seeded with the ledger loaded from the store
func NewBoard(ledger shared.Ledger) *Board {
	b := &Board{pending: make(shared.Ledger)}
	b.committed = ledger.Clone()
	return b
}

// Has reports whether the match has a committed or pending prediction
func (b *Board) Has(matchID shared.ID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, committed := b.committed[matchID]
	_, pending := b.pending[matchID]
	return committed || pending
}

// Tentative applies a prediction locally without committing it
// Preconditions: Receives non-empty match and team ids
// Postconditions: The prediction is pending, or ErrAlreadyPredicted is returned and nothing changes
func (b *Board) Tentative(matchID, teamID shared.ID) error {
	if matchID == "" || teamID == "" {
		return fmt.Errorf("%w: match and team are required", shared.ErrInvalidPrediction)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.committed[matchID]; ok {
		return shared.ErrAlreadyPredicted
	}
	if _, ok := b.pending[matchID]; ok {
		return shared.ErrAlreadyPredicted
	}
	b.pending[matchID] = teamID
	return nil
}

// Commit moves a pending prediction into the committed ledger. It is a no-op when nothing is pending
func (b *Board) Commit(matchID shared.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	teamID, ok := b.pending[matchID]
	if !ok {
		return
	}
	delete(b.pending, matchID)
	b.committed[matchID] = teamID
}

// Rollback discards a pending prediction
func (b *Board) Rollback(matchID shared.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, matchID)
}

// Replace swaps the committed ledger for one reloaded from the store. Pending entries are kept
func (b *Board) Replace(ledger shared.Ledger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.committed = ledger.Clone()
}

// Reset clears both ledgers, used when the user signs out
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.committed = make(shared.Ledger)
	b.pending = make(shared.Ledger)
}

// Committed returns a copy of the durable ledger
func (b *Board) Committed() shared.Ledger {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.committed.Clone()
}

// Pending returns a copy of the predictions still waiting on a write
func (b *Board) Pending() shared.Ledger {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending.Clone()
}

// ValidatePrediction checks that a match is open and that the team is one of its opponents
func ValidatePrediction(m shared.Match, teamID shared.ID) error {
	if !m.IsOpen() {
		return fmt.Errorf("%w: match %s has status %s", shared.ErrInvalidPrediction, m.ID, m.Status)
	}
	if !m.HasTeam(teamID) {
		return fmt.Errorf("%w: team %s is not playing in match %s", shared.ErrInvalidPrediction, teamID, m.ID)
	}
	return nil
}
