package middleware

import (
	"context"
	"net/http"

	"produce-lookup-api/internal/model"
	"produce-lookup-api/internal/service"
	"produce-lookup-api/pkg/apierror"

	"github.com/go-chi/chi/v5"
)

// SessionKey is the key for storing the admin session in request context.
const SessionKey contextKey = "admin_session"

// SessionTokenHeader carries the admin session token.
const SessionTokenHeader = "X-Session-Token"

// RouteToken returns a middleware that verifies the admin path's token
// segment. Any mismatch redirects to the public home immediately: no
// admin handler runs, and the response does not reveal whether a
// passcode would have been accepted. This is an obscurity control, not
// a security boundary.
func RouteToken(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := chi.URLParam(r, "routeToken")
			if token != expected {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionAuth returns a middleware that requires a live admin session.
// The session service re-checks expiry lazily on every request, so a
// token held past the timeout stops working at the next gate evaluation.
func SessionAuth(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(SessionTokenHeader)
			if token == "" {
				writeError(w, apierror.Unauthorized("Admin session required. Use the "+SessionTokenHeader+" header."))
				return
			}

			session, err := sessions.Validate(r.Context(), token)
			if err != nil {
				writeError(w, apierror.Unauthorized("Invalid or expired session"))
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}

// GetSessionFromContext retrieves the admin session from request context.
func GetSessionFromContext(ctx context.Context) *model.AdminSession {
	if s, ok := ctx.Value(SessionKey).(*model.AdminSession); ok {
		return s
	}
	return nil
}
