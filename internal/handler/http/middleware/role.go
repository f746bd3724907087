package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/response"
)

// RequireManager requires manager or admin role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			response.Unauthorized(w, "Missing identity")
			return
		}

		if !id.Role.CanReview() {
			response.Forbidden(w, "Manager access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
