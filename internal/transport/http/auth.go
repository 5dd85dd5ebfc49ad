package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/cimillas/bookstore-backoffice/internal/domain"
)

// Authenticator is the minimal interface needed to resolve a bearer token to
// an operator account.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (domain.User, error)
}

type contextKey struct{ name string }

var userContextKey = contextKey{name: "user"}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated operator in the request context.
func RequireAuth(auth Authenticator, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, codeTokenInvalid, "missing bearer token")
			return
		}

		user, err := auth.Authenticate(r.Context(), token)
		if err != nil {
			respondError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

func withUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func userFrom(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(domain.User)
	return user, ok
}

// mustUser returns the operator placed in the context by RequireAuth. A
// missing user means a route was wired without the middleware; that is a
// programming error, answered with a 401 rather than a panic.
func mustUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeTokenInvalid, "not authenticated")
	}
	return user, ok
}
