/* cache.go
 * Contains the Redis backed cache for the normalised upcoming match list. The list is stored as one JSON value whose
 * expiry is shortened while a match is being played so results show up quickly
 */

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"e-network/api/shared"
)

const upcomingKey = "matches:upcoming"

const (
	liveTTL = 3 * time.Minute
	// After begin time a match counts as live for this long per game in the series
	perGameDuration = 75 * time.Minute
	// Used when the number of games is unknown
	defaultMatchDuration = 3 * time.Hour
)

// RedisCache stores the upcoming match list in Redis
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisCache creates a cache whose entries expire after ttl unless a match is live
func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

// GetUpcoming returns the cached list and true, or nil and false on a miss
func (r *RedisCache) GetUpcoming(ctx context.Context) ([]shared.Match, bool, error) {
	b, err := r.Client.Get(ctx, upcomingKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error reading match cache: %w", err)
	}
	var matches []shared.Match
	if err := json.Unmarshal(b, &matches); err != nil {
		return nil, false, fmt.Errorf("error decoding match cache: %w", err)
	}
	return matches, true, nil
}

// SetUpcoming stores the list with an expiry chosen by DetermineTTL. Nothing is written when caching is disabled,
// since a zero expiry would keep the entry forever
func (r *RedisCache) SetUpcoming(ctx context.Context, matches []shared.Match) error {
	ttl := DetermineTTL(matches, time.Now(), r.TTL)
	if ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("error encoding match cache: %w", err)
	}
	if err := r.Client.Set(ctx, upcomingKey, b, ttl).Err(); err != nil {
		return fmt.Errorf("error writing match cache: %w", err)
	}
	return nil
}

// Invalidate removes the cached list
func (r *RedisCache) Invalidate(ctx context.Context) error {
	if err := r.Client.Del(ctx, upcomingKey).Err(); err != nil {
		return fmt.Errorf("error invalidating match cache: %w", err)
	}
	return nil
}

// Ping checks the connection to Redis
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// DetermineTTL returns how long a match list may be cached.
// Preconditions: Receives the matches to cache, the current time and the configured expiry
// Postconditions: Returns the shorter live expiry if any match is running or inside its estimated playing window,
// else the configured expiry. A non-positive configured expiry disables caching and always returns 0
func DetermineTTL(matches []shared.Match, now time.Time, normal time.Duration) time.Duration {
	if normal <= 0 {
		return 0
	}
	short := liveTTL
	if normal < short {
		short = normal
	}

	for _, m := range matches {
		if m.Status == shared.MatchRunning {
			return short
		}
		if m.Status == shared.MatchFinished || m.BeginAt.IsZero() {
			continue
		}
		duration := defaultMatchDuration
		if m.NumberOfGames > 0 {
			duration = time.Duration(m.NumberOfGames) * perGameDuration
		}
		if !now.Before(m.BeginAt) && !now.After(m.BeginAt.Add(duration)) {
			return short
		}
	}
	return normal
}
