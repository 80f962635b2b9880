// Package identity authenticates API requests with bearer tokens and carries
// the user id in the request context.
package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/peraccount/internal/apperr"
	"github.com/MrJamesThe3rd/peraccount/internal/http/render"
)

type ctxKey struct{}

// TokenParser returns the user id a token was issued for.
type TokenParser interface {
	Parse(token string) (string, error)
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserID returns the authenticated user, or "" outside Authenticate.
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(ctxKey{}).(string)
	return uid
}

// Authenticate rejects requests without a valid "Authorization: Bearer" header.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				render.Error(w, r, apperr.Auth(apperr.AuthInvalidCredentials, errors.New("missing bearer token")))
				return
			}

			uid, err := tokens.Parse(token)
			if err != nil {
				render.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
		})
	}
}
