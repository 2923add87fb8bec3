/* server_test.go
 * Contains unit tests for the routes served by Handler using httptest
 */

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"e-network/api/api"
	"e-network/api/external"
	"e-network/api/metrics"
	"e-network/api/shared"
	"e-network/config"
)

type fakeRelayer struct {
	path     string
	rawQuery string
	resp     *external.RelayResponse
	err      error
}

func (f *fakeRelayer) Relay(_ context.Context, path string, rawQuery string) (*external.RelayResponse, error) {
	f.path, f.rawQuery = path, rawQuery
	return f.resp, f.err
}

type fakeVerifier struct{}

func (fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if idToken != "good-token" {
		return nil, errors.New("token expired")
	}
	return &auth.Token{UID: "firebase-user", Claims: map[string]interface{}{"email": "fan@example.com", "name": "Fan"}}, nil
}

type testEnv struct {
	server *Server
	store  *api.MockStore
	source *api.MockMatchSource
	cache  *api.MockCache
	relay  *fakeRelayer
}

func openMatch() shared.Match {
	return shared.Match{
		ID:          "1001",
		BeginAt:     time.Date(2025, 3, 1, 17, 0, 0, 0, time.UTC),
		Status:      shared.MatchNotStarted,
		VideogameID: "1",
		LeagueID:    "4197",
		Opponents: [2]shared.Opponent{
			{TeamID: "88", Name: "G2 Esports"},
			{TeamID: "87", Name: "Fnatic"},
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := api.NewMockStore()
	src := api.NewMockMatchSource(openMatch())
	a, err := api.NewAPI(st, src, &api.MockNewsSource{Articles: []external.Article{{ID: "a1", Title: "News"}}}, zap.NewNop())
	require.NoError(t, err)
	cache := &api.MockCache{}
	a.Cache = cache

	reg := prometheus.NewRegistry()
	a.Metrics = metrics.New(reg)

	relay := &fakeRelayer{resp: &external.RelayResponse{StatusCode: http.StatusOK, ContentType: "application/json", Body: []byte(`[]`)}}
	s := NewServer(Config{
		API:      a,
		Matches:  relay,
		News:     relay,
		Verifier: fakeVerifier{},
		AuthMode: config.AuthHeader,
		Gatherer: reg,
		Logger:   zap.NewNop(),
	})
	return &testEnv{server: s, store: st, source: src, cache: cache, relay: relay}
}

func (e *testEnv) do(method string, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

var asUser = map[string]string{"X-User-ID": "u1"}

// region Proxy tests

func TestProxy_RelaysPathAndQuery(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/teams?sort=-modified_at&per_page=100", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/teams", env.relay.path)
	assert.Equal(t, "sort=-modified_at&per_page=100", env.relay.rawQuery)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestProxy_UpcomingIsNotAMatchID(t *testing.T) {
	env := newTestEnv(t)

	env.do(http.MethodGet, "/api/matches/upcoming", nil, nil)
	assert.Equal(t, "/matches/upcoming", env.relay.path)

	env.do(http.MethodGet, "/api/matches/1001", nil, nil)
	assert.Equal(t, "/matches/1001", env.relay.path)
}

func TestProxy_RelaysUpstreamStatus(t *testing.T) {
	env := newTestEnv(t)
	env.relay.resp = &external.RelayResponse{StatusCode: http.StatusTooManyRequests, Body: []byte(`{"error":"slow down"}`)}

	rec := env.do(http.MethodGet, "/api/leagues", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"slow down"}`, rec.Body.String())
}

func TestProxy_UpstreamUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.relay.err = shared.ErrUpstreamUnavailable

	rec := env.do(http.MethodGet, "/api/articles", nil, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCORS_ReflectsOrigin(t *testing.T) {
	env := newTestEnv(t)
	origin := map[string]string{"Origin": "http://localhost:3000"}

	rec := env.do(http.MethodGet, "/healthz", nil, origin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_Preflight(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodOptions, "/v1/predictions", nil, map[string]string{
		"Origin":                         "http://localhost:3000",
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "Authorization, Content-Type",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Empty(t, env.store.Predictions)
}

func TestCORS_PlainOptionsIsRouted(t *testing.T) {
	env := newTestEnv(t)
	origin := map[string]string{"Origin": "http://localhost:3000"}

	rec := env.do(http.MethodOptions, "/v1/predictions", nil, origin)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = env.do(http.MethodOptions, "/no/such/route", nil, origin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// endregion

// region Auth tests

func TestAuth_MissingCredentials(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/v1/preferences", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_BearerToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/session", nil, map[string]string{"Authorization": "Bearer good-token"})
	require.Equal(t, http.StatusOK, rec.Code)

	var user shared.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "firebase-user", user.UserID)
	assert.Equal(t, "fan@example.com", env.store.Users["firebase-user"].Email)
}

func TestAuth_InvalidBearerToken(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/v1/feed", nil, map[string]string{"Authorization": "Bearer bad-token"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_HeaderModeDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.server.authMode = config.AuthFirebase

	rec := env.do(http.MethodGet, "/v1/preferences", nil, asUser)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// endregion

// region Feed and preferences tests

func TestFeed_Anonymous(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/v1/feed", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var feed api.Feed
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
	assert.True(t, feed.UsedFallback)
	assert.Len(t, feed.Matches, 1)
}

func TestFeed_BroaderResultsMessage(t *testing.T) {
	env := newTestEnv(t)
	env.store.Preferences["u1"] = shared.Preferences{Games: []shared.ID{"1"}, Leagues: []shared.ID{"999"}}

	rec := env.do(http.MethodGet, "/v1/feed", nil, asUser)
	require.Equal(t, http.StatusOK, rec.Code)

	var feed api.Feed
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
	assert.True(t, feed.UsedFallback)
	assert.Equal(t, api.BroaderResultsMessage, feed.Message)
}

func TestFeed_UpstreamUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.source.FetchUpcomingError = shared.ErrUpstreamUnavailable

	rec := env.do(http.MethodGet, "/v1/feed", nil, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPreferences_PutMerges(t *testing.T) {
	env := newTestEnv(t)
	env.store.Preferences["u1"] = shared.Preferences{Games: []shared.ID{"1"}, Teams: []shared.ID{"88"}}

	rec := env.do(http.MethodPut, "/v1/preferences", map[string]interface{}{"leagues": []interface{}{4197, "4198"}}, asUser)
	require.Equal(t, http.StatusOK, rec.Code)

	var prefs shared.Preferences
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prefs))
	assert.Equal(t, []shared.ID{"1"}, prefs.Games)
	assert.Equal(t, []shared.ID{"4197", "4198"}, prefs.Leagues)
	assert.Equal(t, []shared.ID{"88"}, prefs.Teams)
}

func TestPreferences_BadBody(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPut, "/v1/preferences", bytes.NewReader([]byte("{")))
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreferences_OversizedBody(t *testing.T) {
	env := newTestEnv(t)
	huge := map[string]interface{}{"teams": []string{strings.Repeat("8", maxBodyBytes)}}

	rec := env.do(http.MethodPut, "/v1/preferences", huge, asUser)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, env.store.Preferences)
}

func TestPreferences_StoreReadFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.GetPreferencesError = errors.New("connection reset")

	rec := env.do(http.MethodGet, "/v1/preferences", nil, asUser)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// endregion

// region Prediction tests

func TestPostPrediction_StatusCodes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/v1/predictions", map[string]interface{}{"matchId": 1001, "teamId": "88"}, asUser)
	require.Equal(t, http.StatusCreated, rec.Code)
	var result api.PredictionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, api.StateCommitted, result.State)
	assert.Equal(t, shared.Ledger{"1001": "88"}, result.Committed)

	rec = env.do(http.MethodPost, "/v1/predictions", map[string]interface{}{"matchId": "1001", "teamId": "87"}, asUser)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(http.MethodPost, "/v1/predictions", map[string]interface{}{"matchId": "1001", "teamId": "87"}, map[string]string{"X-User-ID": "u2", "Content-Type": "application/json"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/v1/predictions", map[string]interface{}{"matchId": "1001", "teamId": "1"}, map[string]string{"X-User-ID": "u3"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	env.store.InsertUserPredictionError = errors.New("disk full")
	rec = env.do(http.MethodPost, "/v1/predictions", map[string]interface{}{"matchId": "1001", "teamId": "88"}, map[string]string{"X-User-ID": "u4"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Result)
	assert.Equal(t, api.StateRolledBack, body.Result.State)
}

func TestPostPrediction_OversizedBody(t *testing.T) {
	env := newTestEnv(t)
	huge := map[string]interface{}{"matchId": "1001", "teamId": strings.Repeat("8", maxBodyBytes)}

	rec := env.do(http.MethodPost, "/v1/predictions", huge, asUser)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 0, env.store.InsertCalls)
}

func TestGetPredictions(t *testing.T) {
	env := newTestEnv(t)
	env.store.SetPrediction("u1", "55", "7")

	rec := env.do(http.MethodGet, "/v1/predictions", nil, asUser)
	require.Equal(t, http.StatusOK, rec.Code)

	var page api.PredictionsPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Matches, 1)
	assert.Equal(t, shared.Ledger{"55": "7"}, page.Ledger)
}

func TestStatsAndHistory(t *testing.T) {
	env := newTestEnv(t)
	finished := openMatch()
	finished.ID, finished.Status, finished.WinnerID = "2002", shared.MatchFinished, "88"
	env.source.ByID["2002"] = finished
	env.store.SetPrediction("u1", "2002", "88")

	rec := env.do(http.MethodGet, "/v1/predictions/stats", nil, asUser)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":1,"correct":1,"incorrect":0}`, rec.Body.String())

	rec = env.do(http.MethodGet, "/v1/predictions/history", nil, asUser)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []shared.HistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, shared.OutcomeCorrect, history[0].Outcome)
}

// endregion

// region Misc route tests

func TestCatalogAndArticles(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/v1/catalog", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"games"`)

	rec = env.do(http.MethodGet, "/v1/articles", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"a1"`)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	env.store.PingError = errors.New("no primary")
	rec = env.do(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodGet, "/v1/feed", nil, nil)

	rec := env.do(http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "enetwork_feed_requests_total")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, statusFor(shared.ErrUpstreamUnavailable))
	assert.Equal(t, http.StatusUnauthorized, statusFor(shared.ErrNotAuthenticated))
	assert.Equal(t, http.StatusConflict, statusFor(shared.ErrAlreadyPredicted))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(shared.ErrPersistenceFailed))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(shared.ErrInvalidPrediction))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

// endregion
