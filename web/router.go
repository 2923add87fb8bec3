/* router.go
 * Contains the route table and the middleware shared by every route
 */

package web

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler builds the http.Handler serving every route
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	// Pass-through proxy. upcoming is registered before {id} so it is not taken for a match id
	proxy := r.PathPrefix("/api").Methods(http.MethodGet).Subrouter()
	proxy.HandleFunc("/matches/upcoming", s.proxyHandler(s.matches, fixedPath("/matches/upcoming")))
	proxy.HandleFunc("/matches", s.proxyHandler(s.matches, fixedPath("/matches")))
	proxy.HandleFunc("/matches/{id}", s.proxyHandler(s.matches, matchPath))
	proxy.HandleFunc("/leagues", s.proxyHandler(s.matches, fixedPath("/leagues")))
	proxy.HandleFunc("/teams", s.proxyHandler(s.matches, fixedPath("/teams")))
	proxy.HandleFunc("/articles", s.proxyHandler(s.news, fixedPath("/articles")))

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/feed", s.withOptionalUser(s.FeedHandler)).Methods(http.MethodGet)
	v1.HandleFunc("/session", s.withUser(s.SessionHandler)).Methods(http.MethodPost)
	v1.HandleFunc("/preferences", s.withUser(s.GetPreferencesHandler)).Methods(http.MethodGet)
	v1.HandleFunc("/preferences", s.withUser(s.PutPreferencesHandler)).Methods(http.MethodPut)
	v1.HandleFunc("/predictions", s.withUser(s.GetPredictionsHandler)).Methods(http.MethodGet)
	v1.HandleFunc("/predictions", s.withUser(s.PostPredictionHandler)).Methods(http.MethodPost)
	v1.HandleFunc("/predictions/stats", s.withUser(s.StatsHandler)).Methods(http.MethodGet)
	v1.HandleFunc("/predictions/history", s.withUser(s.HistoryHandler)).Methods(http.MethodGet)
	v1.HandleFunc("/catalog", s.CatalogHandler).Methods(http.MethodGet)
	v1.HandleFunc("/articles", s.ArticlesHandler).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.HealthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/webhooks/pandascore", s.PandaScoreWebhookHandler).Methods(http.MethodPost)

	// CORS wraps the router so preflight requests are answered before route matching
	return corsHandler()(s.logRequests(r))
}

// corsHandler reflects any request origin. Credentials stay off, browsers authenticate with bearer tokens
func corsHandler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, _ string) bool { return true },
		AllowedMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:  []string{"Authorization", "Content-Type", "X-User-ID", "X-User-Name"},
		MaxAge:          300,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
