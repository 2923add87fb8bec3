/* main.go
 * The "main" method for running the e-network backend: the HTTP api server, the Discord bot or both
 * Usage: go run . -mode=<web|bot|all>
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"e-network/api/api"
	"e-network/api/cache"
	"e-network/api/events"
	"e-network/api/external"
	"e-network/api/metrics"
	"e-network/api/store"
	"e-network/bot"
	"e-network/config"
	"e-network/logger"
	"e-network/web"
)

func main() {
	// A missing .env is fine, the environment may already be populated
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("error loading .env file: %v", err)
	}

	modePtr := flag.String("mode", "all", "Front ends to run: web, bot or all")
	flag.Parse()

	mode, err := parseMode(*modePtr)
	if err != nil {
		log.Fatal(err)
	}

	cfg := config.Load()
	zl, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		log.Fatalf("failed to initialise logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, mode, zl); err != nil {
		zl.Fatal("exited with error", zap.Error(err))
	}
	zl.Info("shutdown complete")
}

// run wires the dependencies and blocks until ctx is cancelled or a front end fails
// Preconditions: Receives a cancellable context, the loaded config, the run mode and a logger
// Postconditions: Every opened connection is closed before returning
func run(ctx context.Context, cfg config.Config, mode runMode, zl *zap.Logger) error {
	if mode.Bot && cfg.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required to run the bot")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	st, err := store.NewStore(connectCtx, cfg.MongoDB, cfg.MongoURI, zl)
	if err != nil {
		return fmt.Errorf("failed to initialise store: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Disconnect(disconnectCtx); err != nil {
			zl.Warn("mongo disconnect failed", zap.Error(err))
		}
	}()
	if err := st.EnsureIndexes(connectCtx); err != nil {
		zl.Warn("failed to ensure indexes", zap.Error(err))
	}

	upstream := external.ClientConfig{
		BaseURL: cfg.PandaScoreBaseURL,
		Token:   cfg.PandaScoreToken,
		RPS:     cfg.UpstreamRPS,
		Burst:   cfg.UpstreamBurst,
		Timeout: cfg.HTTPClientTimeout,
	}
	matches := external.NewClient(upstream, zl, m)
	news := external.NewNewsClient(external.ClientConfig{
		BaseURL: cfg.NewsBaseURL,
		Token:   cfg.NewsAPIKey,
		RPS:     cfg.UpstreamRPS,
		Burst:   cfg.UpstreamBurst,
		Timeout: cfg.HTTPClientTimeout,
	}, zl, m)

	apiPtr, err := api.NewAPI(st, matches, news, zl)
	if err != nil {
		return fmt.Errorf("failed to initialise API: %w", err)
	}
	apiPtr.Metrics = m

	if cfg.RedisAddr != "" && cfg.MatchCacheTTL <= 0 {
		zl.Info("match cache disabled", zap.Duration("ttl", cfg.MatchCacheTTL))
	} else if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		redisCache := cache.NewRedisCache(rdb, cfg.MatchCacheTTL)
		if err := redisCache.Ping(connectCtx); err != nil {
			zl.Warn("redis unreachable, serving matches without cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			apiPtr.Cache = redisCache
		}
	}

	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		writer := events.NewWriter(brokers, cfg.TopicPredictionEvent)
		defer writer.Close()
		apiPtr.Events = events.NewKafkaPublisher(writer, cfg.TopicPredictionEvent)
		zl.Info("publishing prediction events", zap.Strings("brokers", brokers), zap.String("topic", cfg.TopicPredictionEvent))
	}

	g, gctx := errgroup.WithContext(ctx)

	if mode.Web {
		verifier, err := newVerifier(ctx, cfg, zl)
		if err != nil {
			return fmt.Errorf("failed to initialise identity provider: %w", err)
		}
		webCfg := web.Config{
			Addr:     cfg.HTTPAddr,
			API:      apiPtr,
			Matches:  matches,
			News:     news,
			Verifier: verifier,
			AuthMode: cfg.AuthMode,
			Logger:   zl,
		}
		g.Go(func() error {
			return web.Start(gctx, webCfg)
		})
	}

	if mode.Bot {
		discordBot, err := bot.NewBot(cfg.DiscordToken, apiPtr, zl)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return discordBot.Run(gctx)
		})
	}

	return g.Wait()
}

// newVerifier creates the Firebase Auth client used to verify ID tokens
// Preconditions: Receives the config holding the Firebase credentials
// Postconditions: Returns nil when no credentials or project are configured, the verifier otherwise
func newVerifier(ctx context.Context, cfg config.Config, zl *zap.Logger) (web.TokenVerifier, error) {
	if cfg.FirebaseCredentialsJSON == "" && cfg.FirebaseProjectID == "" {
		if cfg.AuthMode != config.AuthHeader {
			zl.Warn("no identity provider configured, authenticated routes will reject every request")
		}
		return nil, nil
	}

	var opts []option.ClientOption
	if creds := strings.TrimSpace(cfg.FirebaseCredentialsJSON); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating firebase auth client: %w", err)
	}
	return client, nil
}
