package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// PandaScoreEvent is the envelope of a PandaScore webhook delivery
type PandaScoreEvent struct {
	Type   string          `json:"type"`
	Action string          `json:"action"`
	Object json.RawMessage `json:"object"`
}

// isRelevantEvent reports whether the event can change the upcoming match list
func isRelevantEvent(eventType string) bool {
	switch strings.ToLower(eventType) {
	case "match", "game":
		return true
	}
	return false
}

// PandaScoreWebhookHandler HTTP endpoint that receives match update events from PandaScore and drops the cached
// upcoming match list so the next read fetches fresh data
// Preconditions: HTTP server has been started, receives HTTP ResponseWriter and Http Request
// Postconditions: Responds 200 for valid payloads, invalidation runs in the background
func (s *Server) PandaScoreWebhookHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var event PandaScoreEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.logger.Warn("failed to decode webhook", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if !isRelevantEvent(event.Type) {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.logger.Info("pandascore event", zap.String("type", event.Type), zap.String("action", event.Action))

	s.background.Add(1)
	go func(e PandaScoreEvent) {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.api.InvalidateMatches(ctx); err != nil {
			s.logger.Error("match cache invalidation failed", zap.String("type", e.Type), zap.Error(err))
		}
	}(event)

	w.WriteHeader(http.StatusOK)
}
