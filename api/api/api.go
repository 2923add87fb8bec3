/* api.go
 * This file contains the public methods for interacting with this package. The web server and the bot should only
 * call the functions in this package, not the sub packages for store, external and logic
 */

package api

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"e-network/api/events"
	"e-network/api/external"
	"e-network/api/logic"
	"e-network/api/metrics"
	"e-network/api/shared"
	"e-network/api/store"
)

// API provides methods for interacting with the e-network data layer
type API struct {
	Store   store.Interface
	Matches MatchSource
	News    NewsSource
	Cache   MatchCache
	Events  events.Publisher
	Catalog logic.Catalog
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// NewAPI creates a new API instance. Cache, Metrics and Events can be set on the returned value, Events defaults
// to a publisher that drops every event
func NewAPI(s store.Interface, matches MatchSource, news NewsSource, logger *zap.Logger) (*API, error) {
	if s == nil || matches == nil {
		return nil, fmt.Errorf("store and match source are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		Store:   s,
		Matches: matches,
		News:    news,
		Events:  events.NoopPublisher{},
		Catalog: logic.DefaultCatalog(),
		Logger:  logger,
	}, nil
}

// GetUpcomingMatches returns the upcoming matches ordered by begin time. The list is served from the cache when
// one is configured, cache failures fall through to the provider
func (a *API) GetUpcomingMatches(ctx context.Context) ([]shared.Match, error) {
	if a.Cache != nil {
		cached, ok, err := a.Cache.GetUpcoming(ctx)
		switch {
		case err != nil:
			a.Metrics.Cache("error")
			a.Logger.Warn("match cache read failed", zap.Error(err))
		case ok:
			a.Metrics.Cache("hit")
			return cached, nil
		default:
			a.Metrics.Cache("miss")
		}
	}

	fetched, err := a.Matches.FetchUpcomingMatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting upcoming matches: %w", err)
	}
	matches := logic.SortByBeginAt(fetched)

	if a.Cache != nil {
		if err := a.Cache.SetUpcoming(ctx, matches); err != nil {
			a.Logger.Warn("match cache write failed", zap.Error(err))
		}
	}
	return matches, nil
}

// InvalidateMatches drops the cached upcoming match list
func (a *API) InvalidateMatches(ctx context.Context) error {
	if a.Cache == nil {
		return nil
	}
	return a.Cache.Invalidate(ctx)
}

// GetMatch returns the details of a single match
func (a *API) GetMatch(ctx context.Context, id shared.ID) (*shared.Match, error) {
	return a.Matches.FetchMatch(ctx, id)
}

// GetFeed builds the personalised feed for a user. Preferences and matches are fetched concurrently and the
// filter only runs once both are available
// Preconditions: Receives a context and the signed in user, nil for an anonymous feed
// Postconditions: Returns the feed, or an error if either fetch failed
func (a *API) GetFeed(ctx context.Context, user *shared.User) (Feed, error) {
	var prefs shared.Preferences
	var matches []shared.Match

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if user == nil {
			return nil
		}
		p, err := a.GetPreferences(gctx, user.UserID)
		if err != nil {
			return err
		}
		prefs = p
		return nil
	})
	g.Go(func() error {
		m, err := a.GetUpcomingMatches(gctx)
		if err != nil {
			return err
		}
		matches = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return Feed{}, err
	}

	selected, usedFallback := logic.SelectFeed(matches, prefs)
	a.Metrics.Feed(usedFallback)

	feed := Feed{Matches: selected, UsedFallback: usedFallback}
	if usedFallback && len(prefs.Games) > 0 {
		feed.Message = BroaderResultsMessage
	}
	return feed, nil
}

// GetPreferences returns a user's preferences. A user without a document has empty preferences
func (a *API) GetPreferences(ctx context.Context, userID string) (shared.Preferences, error) {
	empty := shared.Preferences{Games: []shared.ID{}, Leagues: []shared.ID{}, Teams: []shared.ID{}}
	if userID == "" {
		return empty, nil
	}
	prefs, err := a.Store.GetPreferences(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return empty, nil
	}
	if err != nil {
		return shared.Preferences{}, storeErr("error getting preferences", err)
	}
	return *prefs, nil
}

// SavePreferences merges the supplied preference fields into the user's stored preferences
func (a *API) SavePreferences(ctx context.Context, userID string, update shared.PreferencesUpdate) error {
	if userID == "" {
		return shared.ErrNotAuthenticated
	}
	return a.Store.StorePreferences(ctx, userID, update)
}

// SignIn creates the user's document on first sign in
func (a *API) SignIn(ctx context.Context, user shared.User) error {
	if user.UserID == "" {
		return shared.ErrNotAuthenticated
	}
	return a.Store.EnsureUser(ctx, user)
}

// GetLedger returns every prediction a user has made
func (a *API) GetLedger(ctx context.Context, userID string) (shared.Ledger, error) {
	if userID == "" {
		return shared.Ledger{}, nil
	}
	ledger, err := a.Store.GetUserPredictions(ctx, userID)
	if err != nil {
		return nil, storeErr("error getting predictions", err)
	}
	if ledger == nil {
		ledger = shared.Ledger{}
	}
	return ledger, nil
}

// GetPredictionsPage returns the matches still open for predictions together with the user's ledger
func (a *API) GetPredictionsPage(ctx context.Context, userID string) (PredictionsPage, error) {
	var page PredictionsPage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ledger, err := a.GetLedger(gctx, userID)
		page.Ledger = ledger
		return err
	})
	g.Go(func() error {
		matches, err := a.GetUpcomingMatches(gctx)
		page.Matches = logic.OpenMatches(matches)
		return err
	})
	if err := g.Wait(); err != nil {
		return PredictionsPage{}, err
	}
	return page, nil
}

// predictedMatches fetches every match referenced by the user's ledger
func (a *API) predictedMatches(ctx context.Context, userID string) (shared.Ledger, []shared.Match, error) {
	ledger, err := a.GetLedger(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	matches, err := a.Matches.FetchMatchesByIDs(ctx, ledger.MatchIDs())
	if err != nil {
		return nil, nil, fmt.Errorf("error getting predicted matches: %w", err)
	}
	return ledger, matches, nil
}

// GetStats returns the user's prediction statistics over the matches that have finished
func (a *API) GetStats(ctx context.Context, userID string) (shared.PredictionStats, error) {
	ledger, matches, err := a.predictedMatches(ctx, userID)
	if err != nil {
		return shared.PredictionStats{}, err
	}
	return logic.Score(ledger, matches), nil
}

// GetHistory returns the user's predictions with their outcomes, most recent match first
func (a *API) GetHistory(ctx context.Context, userID string) ([]shared.HistoryEntry, error) {
	ledger, matches, err := a.predictedMatches(ctx, userID)
	if err != nil {
		return nil, err
	}
	return logic.History(ledger, matches), nil
}

// GetArticles returns the latest news articles
func (a *API) GetArticles(ctx context.Context) ([]external.Article, error) {
	if a.News == nil {
		return nil, fmt.Errorf("%w: news provider not configured", shared.ErrUpstreamUnavailable)
	}
	return a.News.FetchArticles(ctx)
}

// GetCatalog returns the curated games, leagues and organisations users can follow
func (a *API) GetCatalog() logic.Catalog {
	return a.Catalog
}

// RecordPrediction records a prediction for a user outside of a long lived session
func (a *API) RecordPrediction(ctx context.Context, user shared.User, matchID shared.ID, teamID shared.ID) (PredictionResult, error) {
	board := a.NewPredictionBoard(shared.NewSession(&user))
	defer board.Close()
	return board.Record(ctx, matchID, teamID)
}

// Health checks the store connection
func (a *API) Health(ctx context.Context) error {
	return a.Store.Ping(ctx)
}

// storeErr tags a failed store read with shared.ErrPersistenceFailed unless the store already did
func storeErr(msg string, err error) error {
	if errors.Is(err, shared.ErrPersistenceFailed) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return fmt.Errorf("%w: %s: %w", shared.ErrPersistenceFailed, msg, err)
}
