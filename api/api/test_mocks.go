/* test_mocks.go
 * Contains mock structures for testing the API package and its consumers
 */

package api

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	"e-network/api/events"
	"e-network/api/external"
	"e-network/api/shared"
	"e-network/api/store"
)

// MockStore implements the store Interface for testing
type MockStore struct {
	mu sync.Mutex

	// Storage for mock data
	Users       map[string]shared.User
	Preferences map[string]shared.Preferences
	Predictions map[string]shared.Ledger

	// Error injection for testing error paths
	GetPreferencesError       error
	StorePreferencesError     error
	EnsureUserError           error
	GetUserPredictionsError   error
	InsertUserPredictionError error
	PingError                 error

	// BeforeInsert runs before InsertUserPrediction checks for an existing entry, used to simulate a concurrent
	// writer
	BeforeInsert func(userID string, matchID shared.ID)

	InsertCalls int
}

var _ store.Interface = (*MockStore)(nil)

// NewMockStore creates a new MockStore with empty storage
func NewMockStore() *MockStore {
	return &MockStore{
		Users:       make(map[string]shared.User),
		Preferences: make(map[string]shared.Preferences),
		Predictions: make(map[string]shared.Ledger),
	}
}

func (m *MockStore) GetPreferences(_ context.Context, userID string) (*shared.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPreferencesError != nil {
		return nil, m.GetPreferencesError
	}
	prefs, ok := m.Preferences[userID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &prefs, nil
}

func (m *MockStore) StorePreferences(_ context.Context, userID string, update shared.PreferencesUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StorePreferencesError != nil {
		return m.StorePreferencesError
	}
	m.Preferences[userID] = update.Apply(m.Preferences[userID])
	return nil
}

func (m *MockStore) EnsureUser(_ context.Context, user shared.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EnsureUserError != nil {
		return m.EnsureUserError
	}
	if _, ok := m.Users[user.UserID]; !ok {
		m.Users[user.UserID] = user
	}
	return nil
}

func (m *MockStore) GetUserPredictions(_ context.Context, userID string) (shared.Ledger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetUserPredictionsError != nil {
		return nil, m.GetUserPredictionsError
	}
	return m.Predictions[userID].Clone(), nil
}

func (m *MockStore) InsertUserPrediction(_ context.Context, userID string, matchID shared.ID, teamID shared.ID) error {
	if m.BeforeInsert != nil {
		m.BeforeInsert(userID, matchID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertCalls++
	if m.InsertUserPredictionError != nil {
		return m.InsertUserPredictionError
	}
	ledger, ok := m.Predictions[userID]
	if !ok {
		ledger = shared.Ledger{}
		m.Predictions[userID] = ledger
	}
	if _, exists := ledger[matchID]; exists {
		return shared.ErrAlreadyPredicted
	}
	ledger[matchID] = teamID
	return nil
}

func (m *MockStore) Ping(context.Context) error {
	return m.PingError
}

// SetPrediction writes a ledger entry directly, bypassing the conditional insert
func (m *MockStore) SetPrediction(userID string, matchID shared.ID, teamID shared.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Predictions[userID] == nil {
		m.Predictions[userID] = shared.Ledger{}
	}
	m.Predictions[userID][matchID] = teamID
}

// MockMatchSource implements MatchSource for testing
type MockMatchSource struct {
	mu sync.Mutex

	Upcoming []shared.Match
	ByID     map[shared.ID]shared.Match

	FetchUpcomingError error
	FetchByIDsError    error
	FetchMatchError    error

	UpcomingCalls int
	ByIDsCalls    int
}

// NewMockMatchSource creates a match source serving the given matches both as upcoming and by id
func NewMockMatchSource(matches ...shared.Match) *MockMatchSource {
	src := &MockMatchSource{ByID: make(map[shared.ID]shared.Match)}
	src.Upcoming = append(src.Upcoming, matches...)
	for _, m := range matches {
		src.ByID[m.ID] = m
	}
	return src
}

func (s *MockMatchSource) FetchUpcomingMatches(context.Context) ([]shared.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpcomingCalls++
	if s.FetchUpcomingError != nil {
		return nil, s.FetchUpcomingError
	}
	return append([]shared.Match(nil), s.Upcoming...), nil
}

func (s *MockMatchSource) FetchMatchesByIDs(_ context.Context, ids []shared.ID) ([]shared.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ByIDsCalls++
	if s.FetchByIDsError != nil {
		return nil, s.FetchByIDsError
	}
	out := make([]shared.Match, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.ByID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MockMatchSource) FetchMatch(_ context.Context, id shared.ID) (*shared.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FetchMatchError != nil {
		return nil, s.FetchMatchError
	}
	m, ok := s.ByID[id]
	if !ok {
		return nil, shared.ErrUpstreamUnavailable
	}
	return &m, nil
}

// MockNewsSource implements NewsSource for testing
type MockNewsSource struct {
	Articles []external.Article
	Error    error
}

func (n *MockNewsSource) FetchArticles(context.Context) ([]external.Article, error) {
	if n.Error != nil {
		return nil, n.Error
	}
	return n.Articles, nil
}

// MockCache implements MatchCache for testing
type MockCache struct {
	mu sync.Mutex

	Matches []shared.Match
	Present bool

	GetError        error
	SetError        error
	InvalidateError error

	Invalidations int
}

func (c *MockCache) GetUpcoming(context.Context) ([]shared.Match, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.GetError != nil {
		return nil, false, c.GetError
	}
	return c.Matches, c.Present, nil
}

func (c *MockCache) SetUpcoming(_ context.Context, matches []shared.Match) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SetError != nil {
		return c.SetError
	}
	c.Matches = matches
	c.Present = true
	return nil
}

func (c *MockCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Invalidations++
	if c.InvalidateError != nil {
		return c.InvalidateError
	}
	c.Matches = nil
	c.Present = false
	return nil
}

// MockPublisher records published prediction events
type MockPublisher struct {
	mu     sync.Mutex
	Events []events.PredictionRecorded
	Error  error
}

func (p *MockPublisher) PublishPrediction(_ context.Context, e events.PredictionRecorded) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Error != nil {
		return p.Error
	}
	p.Events = append(p.Events, e)
	return nil
}

// Published returns a copy of the recorded events
func (p *MockPublisher) Published() []events.PredictionRecorded {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.PredictionRecorded(nil), p.Events...)
}
