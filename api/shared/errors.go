/* errors.go
 * Contains the error kinds reported by the I/O boundaries. Callers wrap them with fmt.Errorf("...: %w") and test
 * for them with errors.Is
 */

package shared

import "errors"

var (
	// ErrUpstreamUnavailable is returned when the match or news provider could not be reached or answered with
	// something that could not be used. The caller may retry
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNotAuthenticated is returned when a write is attempted without a signed in user
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAlreadyPredicted is returned when the user already has a prediction for the match. The write is a no-op
	ErrAlreadyPredicted = errors.New("match already predicted")

	// ErrPersistenceFailed is returned when a read or write against the store failed. For predictions it means the
	// entry was accepted locally and then rolled back
	ErrPersistenceFailed = errors.New("persistence failed")

	// ErrInvalidPrediction is returned when the match is closed for predictions or the team is not playing in it
	ErrInvalidPrediction = errors.New("invalid prediction")
)
