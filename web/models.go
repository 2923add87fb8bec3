package web

import (
	"context"
	"sync"

	"firebase.google.com/go/v4/auth"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"e-network/api/api"
	"e-network/api/external"
)

// Relayer forwards a GET request to an upstream provider. Implemented by external.Client and external.NewsClient
type Relayer interface {
	Relay(ctx context.Context, path string, rawQuery string) (*external.RelayResponse, error)
}

// TokenVerifier verifies identity provider ID tokens. Implemented by the Firebase *auth.Client
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Config holds the configuration for the web server
type Config struct {
	Addr string
	API  *api.API

	Matches Relayer
	News    Relayer

	// Verifier is nil when no identity provider is configured
	Verifier TokenVerifier
	// AuthMode "header" trusts the X-User-ID header, for local development only
	AuthMode string

	// Gatherer serves /metrics, the default registry when nil
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Server is the HTTP server that serves the proxy, the JSON api and the webhooks
type Server struct {
	api      *api.API
	matches  Relayer
	news     Relayer
	verifier TokenVerifier
	authMode string
	gatherer prometheus.Gatherer
	logger   *zap.Logger

	// background tracks webhook work still running
	background sync.WaitGroup
}

// NewServer creates a server from the config
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		api:      cfg.API,
		matches:  cfg.Matches,
		news:     cfg.News,
		verifier: cfg.Verifier,
		authMode: cfg.AuthMode,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Wait blocks until background work started by webhooks has finished
func (s *Server) Wait() {
	s.background.Wait()
}
