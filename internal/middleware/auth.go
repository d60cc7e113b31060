package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/zixuanzhao/chat-relay/internal/auth"
	"github.com/zixuanzhao/chat-relay/pkg/utils"
)

type contextKey string

const usernameKey contextKey = "username"

// RequireAuth validates the bearer token on HTTP endpoints and stores the
// authenticated username in the request context. The websocket channel does
// its own per-frame validation instead of using this middleware.
func RequireAuth(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				utils.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			username, err := verifier.Verify(token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					utils.RespondError(w, http.StatusUnauthorized, "could not validate credentials")
					return
				}
				utils.RespondError(w, http.StatusInternalServerError, "authentication unavailable")
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFrom extracts the authenticated username set by RequireAuth.
func UsernameFrom(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok
}
