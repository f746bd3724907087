package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type identityKey struct{}

// IdentityFrom returns the caller placed on the context by AuthRequired.
func IdentityFrom(ctx context.Context) (jwt.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(jwt.Identity)
	return id, ok
}

// WithIdentity is used by AuthRequired and by handler tests.
func WithIdentity(ctx context.Context, id jwt.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// AuthRequired must run after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.Unauthorized(w, "Missing token")
			return
		}

		tokenType, ok := claims["type"].(string)
		if tokenType != "access" || !ok {
			response.Unauthorized(w, "Invalid token")
			return
		}

		id, err := jwt.IdentityFromClaims(claims)
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}
