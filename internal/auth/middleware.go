package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lims-dash/lims-dash/internal/platform/upstream"
	"github.com/lims-dash/lims-dash/internal/shared"
)

type userContextKey struct{}

// ContextWithUser stores the authenticated user in context.
func ContextWithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated user from context.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userContextKey{}).(User)
	return user, ok
}

// Middleware resolves the session identity ahead of protected routes.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireUser ensures a logged-in user, revalidating upstream when the
// cached copy is absent. Any failure yields a terminal anonymous state and
// a redirect to the login page; the identity is never left half-loaded.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.Token() == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		var user User
		if raw := sess.UserJSON(); raw != "" {
			if err := json.Unmarshal([]byte(raw), &user); err != nil {
				sess.SetUserJSON("")
			}
		}
		if user.ID == "" {
			fetched, err := m.Service.Me(r.Context(), sess.Token())
			if err != nil {
				if !errors.Is(err, upstream.ErrUnauthorized) && m.Logger != nil {
					m.Logger.Warn("revalidate session", slog.Any("error", err))
				}
				Expire(sess)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			user = fetched
			if raw, err := json.Marshal(user); err == nil {
				sess.SetUserJSON(string(raw))
			}
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// RequireAdmin gates admin-only routes. RequireUser must run first.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !user.IsAdmin() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Expire clears the stored token and cached user, forcing re-authentication.
// Used on logout and whenever any upstream call returns 401.
func Expire(sess *shared.Session) {
	if sess == nil {
		return
	}
	sess.ClearIdentity()
	sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Your session has expired. Please sign in again."})
}

// HandleUpstreamAuthFailure redirects to login when err wraps
// upstream.ErrUnauthorized, reporting whether it did.
func HandleUpstreamAuthFailure(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, upstream.ErrUnauthorized) {
		return false
	}
	Expire(shared.SessionFromContext(r.Context()))
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}
