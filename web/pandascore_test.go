/* pandascore_test.go
 * Contains unit tests for pandascore.go
 */

package web

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// region isRelevantEvent tests

func TestIsRelevantEvent(t *testing.T) {
	assert.True(t, isRelevantEvent("match"))
	assert.True(t, isRelevantEvent("Game"))
	assert.False(t, isRelevantEvent("team"))
	assert.False(t, isRelevantEvent(""))
}

// endregion

// region PandaScoreWebhookHandler tests

func TestPandaScoreWebhook_WrongMethod(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/webhooks/pandascore", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPandaScoreWebhook_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/pandascore", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPandaScoreWebhook_UnrelatedEventIgnored(t *testing.T) {
	env := newTestEnv(t)
	env.cache.Present = true

	rec := env.do(http.MethodPost, "/webhooks/pandascore", map[string]string{"type": "team", "action": "update"}, nil)
	env.server.Wait()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, env.cache.Invalidations)
	assert.True(t, env.cache.Present)
}

func TestPandaScoreWebhook_MatchEventInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	env.cache.Present = true

	rec := env.do(http.MethodPost, "/webhooks/pandascore", map[string]string{"type": "match", "action": "update"}, nil)
	env.server.Wait()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.cache.Invalidations)
	assert.False(t, env.cache.Present)
}

func TestPandaScoreWebhook_InvalidationFailureLogged(t *testing.T) {
	env := newTestEnv(t)
	env.cache.InvalidateError = errors.New("redis down")

	rec := env.do(http.MethodPost, "/webhooks/pandascore", map[string]string{"type": "game"}, nil)
	env.server.Wait()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.cache.Invalidations)
}

// endregion
