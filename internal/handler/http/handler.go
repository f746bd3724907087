package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/jwt"
)

// decode writes a 400 and returns false when the body is not valid JSON.
func decode(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

func identity(w http.ResponseWriter, r *http.Request) (jwt.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "Failed to extract claims from context")
		return jwt.Identity{}, false
	}
	return id, true
}

// subject is the employee a submission is filed for. Employees always file for
// themselves; reviewers may file on behalf of someone else.
func subject(id jwt.Identity, requested string) string {
	if requested == "" || !id.Role.CanReview() {
		return id.UserID
	}
	return requested
}

// canRead reports whether the caller may see data owned by employeeID.
func canRead(id jwt.Identity, employeeID string) bool {
	return id.Role.CanReview() || id.UserID == employeeID
}
