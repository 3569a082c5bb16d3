package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/golang-jwt/jwt/v5/request"

	"github.com/dmitrijs2005/recipekeeper/internal/auth"
)

type ctxUsernameKey struct{}

// getJwtAuthMiddleware resolves an optional bearer token into the session
// username. Requests without a token pass through anonymously; a token that
// does not validate is rejected.
func getJwtAuthMiddleware(jwtKey []byte) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, err := request.BearerExtractor{}.ExtractToken(r)
			if err != nil {
				if errors.Is(err, request.ErrNoTokenInRequest) {
					next.ServeHTTP(w, r)
					return
				}
				handleJsonSrvcError(httplog.LogEntry(r.Context()), w, err)
				return
			}

			username, err := auth.UsernameFromToken(token, jwtKey)
			if err != nil {
				handleJsonSrvcError(httplog.LogEntry(r.Context()), w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUsernameKey{}, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// sessionUsername returns the logged-in username or "" for anonymous
// requests.
func sessionUsername(ctx context.Context) string {
	u, _ := ctx.Value(ctxUsernameKey{}).(string)
	return u
}
