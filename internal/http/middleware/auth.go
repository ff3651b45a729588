package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rogerio-castellano/stock-ledger/internal/auth"
	appErrors "github.com/rogerio-castellano/stock-ledger/internal/errors"
	"github.com/rogerio-castellano/stock-ledger/internal/http/response"
	"github.com/rs/zerolog"
)

type contextKey string

const claimsKey = contextKey("claims")

type TokenParser interface {
	Parse(tokenStr string) (*auth.Claims, error)
}

// Auth rejects requests without a valid, unrevoked bearer token and stores
// the token claims in the request context.
func Auth(parser TokenParser, revocations auth.Revocations) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				response.Error(w, appErrors.UnauthorizedError("missing or invalid token"))
				return
			}

			claims, err := parser.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				response.Error(w, appErrors.UnauthorizedError("invalid token"))
				return
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					zerolog.Ctx(r.Context()).Error().Err(err).Msg("revocation lookup failed")
					response.Error(w, appErrors.InternalError("could not verify token"))
					return
				}
				if revoked {
					response.Error(w, appErrors.UnauthorizedError("token has been revoked"))
					return
				}
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			response.Error(w, appErrors.UnauthorizedError("missing or invalid token"))
			return
		}
		if !claims.IsAdmin() {
			response.Error(w, appErrors.ForbiddenError("admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}

// ContextWithClaims is used by tests that call handlers directly.
func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
