/* auth.go
 * Contains the middleware that resolves the signed in user of a request. ID tokens are verified with the identity
 * provider; in header mode the X-User-ID header is trusted instead
 */

package web

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"e-network/api/shared"
	"e-network/config"
)

type userKey struct{}

// userFromContext returns the user stored by withUser or withOptionalUser, nil if there is none
func userFromContext(ctx context.Context) *shared.User {
	u, _ := ctx.Value(userKey{}).(*shared.User)
	return u
}

// authenticate resolves the user of a request
// Preconditions: Receives the request
// Postconditions: Returns the user, nil if the request carries no credentials, or shared.ErrNotAuthenticated if the
// credentials are invalid
func (s *Server) authenticate(r *http.Request) (*shared.User, error) {
	if token, ok := bearerToken(r); ok && s.verifier != nil {
		verified, err := s.verifier.VerifyIDToken(r.Context(), token)
		if err != nil {
			s.logger.Info("rejected id token", zap.Error(err))
			return nil, shared.ErrNotAuthenticated
		}
		user := &shared.User{UserID: verified.UID}
		if email, ok := verified.Claims["email"].(string); ok {
			user.Email = email
		}
		if name, ok := verified.Claims["name"].(string); ok {
			user.Username = name
		}
		return user, nil
	}

	if s.authMode == config.AuthHeader {
		if id := strings.TrimSpace(r.Header.Get("X-User-ID")); id != "" {
			return &shared.User{UserID: id, Username: r.Header.Get("X-User-Name")}, nil
		}
	}
	return nil, nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// withUser rejects requests without a signed in user with 401
func (s *Server) withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err == nil && user == nil {
			err = shared.ErrNotAuthenticated
		}
		if err != nil {
			writeError(w, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	}
}

// withOptionalUser serves anonymous requests too, but still rejects invalid credentials
func (s *Server) withOptionalUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.authenticate(r)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := r.Context()
		if user != nil {
			ctx = context.WithValue(ctx, userKey{}, user)
		}
		next(w, r.WithContext(ctx))
	}
}
