package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ecotrack/backend/internal/models"
	"github.com/ecotrack/backend/internal/services"
)

type contextKey struct{ name string }

var sessionKey = &contextKey{"session"}

// SessionVerifier checks a bearer token. Implemented by services.TokenManager.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*models.Session, error)
}

// AdminChecker reports whether a user may use the admin routes.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom returns the session placed by RequireAuth.
func SessionFrom(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*models.Session)
	return s, ok && s != nil
}

// RequireAuth rejects requests without a valid, unrevoked bearer token.
func RequireAuth(tokens SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				services.SendErrorResponse(w, "Not authorized, no token", http.StatusUnauthorized, nil)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				services.SendErrorResponse(w, "Invalid authorization header format", http.StatusUnauthorized, nil)
				return
			}

			session, err := tokens.Verify(r.Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				if services.KindOf(err) == services.KindInternal {
					services.SendErrorResponse(w, "Server Error", http.StatusInternalServerError, nil)
					return
				}
				services.SendErrorResponse(w, errorMessage(err), http.StatusUnauthorized, nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(admins AdminChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFrom(r.Context())
			if !ok {
				services.SendErrorResponse(w, "Not authorized", http.StatusUnauthorized, nil)
				return
			}

			isAdmin, err := admins.IsAdmin(r.Context(), session.UserID)
			switch {
			case services.KindOf(err) == services.KindNotFound:
				services.SendErrorResponse(w, "Not authorized", http.StatusUnauthorized, nil)
				return
			case err != nil:
				services.SendErrorResponse(w, "Server Error", http.StatusInternalServerError, nil)
				return
			case !isAdmin:
				services.SendErrorResponse(w, "Not authorized as an admin", http.StatusForbidden, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func errorMessage(err error) string {
	var e *services.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Not authorized, token failed"
}
