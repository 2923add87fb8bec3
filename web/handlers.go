/* handlers.go
 * Contains the JSON api handlers. Errors are mapped to status codes by writeError
 */

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"e-network/api/api"
	"e-network/api/shared"
)

type errorBody struct {
	Error  string                `json:"error"`
	Result *api.PredictionResult `json:"result,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrAlreadyPredicted):
		return http.StatusConflict
	case errors.Is(err, shared.ErrInvalidPrediction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrPersistenceFailed):
		return http.StatusServiceUnavailable
	case errors.Is(err, shared.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
}

// FeedHandler serves the personalised feed, or every upcoming match for anonymous requests
func (s *Server) FeedHandler(w http.ResponseWriter, r *http.Request) {
	feed, err := s.api.GetFeed(r.Context(), userFromContext(r.Context()))
	if err != nil {
		s.logger.Warn("failed to build feed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

// SessionHandler is called by the front end after sign in and creates the user's document on first use
func (s *Server) SessionHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if err := s.api.SignIn(r.Context(), *user); err != nil {
		s.logger.Error("failed to sign in user", zap.String("user_id", user.UserID), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// maxBodyBytes caps the JSON bodies accepted by the write handlers
const maxBodyBytes = 1 << 20

// decodeBody decodes a JSON body of at most maxBodyBytes into v. On failure it returns the status to answer with
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, err
		}
		return http.StatusBadRequest, err
	}
	return 0, nil
}

func (s *Server) GetPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	prefs, err := s.api.GetPreferences(r.Context(), user.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// PutPreferencesHandler merges the supplied fields into the stored preferences and returns the result
func (s *Server) PutPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	defer r.Body.Close()

	var update shared.PreferencesUpdate
	if status, err := decodeBody(w, r, &update); err != nil {
		writeJSON(w, status, errorBody{Error: fmt.Sprintf("invalid preferences: %v", err)})
		return
	}
	if err := s.api.SavePreferences(r.Context(), user.UserID, update); err != nil {
		writeError(w, err)
		return
	}
	prefs, err := s.api.GetPreferences(r.Context(), user.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) GetPredictionsHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	page, err := s.api.GetPredictionsPage(r.Context(), user.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

type predictionRequest struct {
	MatchID shared.ID `json:"matchId"`
	TeamID  shared.ID `json:"teamId"`
}

// PostPredictionHandler records a prediction. The body is {"matchId": ..., "teamId": ...}, ids may be numbers or
// strings
func (s *Server) PostPredictionHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	defer r.Body.Close()

	var req predictionRequest
	if status, err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, status, errorBody{Error: fmt.Sprintf("invalid prediction: %v", err)})
		return
	}

	result, err := s.api.RecordPrediction(r.Context(), *user, req.MatchID, req.TeamID)
	if err != nil {
		writeJSON(w, statusFor(err), errorBody{Error: err.Error(), Result: &result})
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) StatsHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	stats, err := s.api.GetStats(r.Context(), user.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	history, err := s.api.GetHistory(r.Context(), user.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.api.GetCatalog())
}

func (s *Server) ArticlesHandler(w http.ResponseWriter, r *http.Request) {
	articles, err := s.api.GetArticles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

// HealthHandler reports whether the store is reachable
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()

	if err := s.api.Health(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(fmt.Sprintf("unhealthy: %v", err)))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
