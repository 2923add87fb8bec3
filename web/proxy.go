/* proxy.go
 * Contains the pass-through routes used by the front end. Requests are forwarded with the provider credentials
 * attached and the upstream status and body are relayed unchanged
 */

package web

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"e-network/api/shared"
)

func fixedPath(path string) func(*http.Request) string {
	return func(*http.Request) string { return path }
}

func matchPath(r *http.Request) string {
	return "/matches/" + url.PathEscape(mux.Vars(r)["id"])
}

// proxyHandler relays the request to the provider at the path returned by target
func (s *Server) proxyHandler(relayer Relayer, target func(*http.Request) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if relayer == nil {
			writeError(w, shared.ErrUpstreamUnavailable)
			return
		}
		resp, err := relayer.Relay(r.Context(), target(r), r.URL.RawQuery)
		if err != nil {
			s.logger.Warn("proxy request failed", zap.String("path", r.URL.Path), zap.Error(err))
			writeError(w, err)
			return
		}

		contentType := resp.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(resp.StatusCode)
		w.Write(resp.Body)
	}
}
