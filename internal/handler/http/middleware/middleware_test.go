package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(svc *jwt.JWTService, seen *jwt.Identity) *chi.Mux {
	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(svc.JWTAuth()))
	r.Use(AuthRequired)
	r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
		*seen, _ = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(RequireManager).Get("/review", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	svc := jwt.NewJWTService("test-secret", time.Hour)
	var seen jwt.Identity
	router := newProtectedRouter(svc, &seen)

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other := jwt.NewJWTService("other-secret", time.Hour)
		token, _, err := other.GenerateAccessToken("emp-1", jwt.RoleEmployee)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token exposes identity", func(t *testing.T) {
		token, _, err := svc.GenerateAccessToken("emp-1", jwt.RoleEmployee)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, jwt.Identity{UserID: "emp-1", Role: jwt.RoleEmployee}, seen)
	})
}

func TestRequireManager(t *testing.T) {
	svc := jwt.NewJWTService("test-secret", time.Hour)
	var seen jwt.Identity
	router := newProtectedRouter(svc, &seen)

	for role, want := range map[jwt.Role]int{
		jwt.RoleEmployee: http.StatusForbidden,
		jwt.RoleManager:  http.StatusNoContent,
		jwt.RoleAdmin:    http.StatusNoContent,
	} {
		token, _, err := svc.GenerateAccessToken("u-1", role)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/review", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, string(role))
	}
}

func TestAuditContext(t *testing.T) {
	var got audit.RequestContext
	h := AuditContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = audit.RequestContextFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("User-Agent", "kiosk/2.1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "10.1.2.3", got.IPAddress)
	assert.Equal(t, "kiosk/2.1", got.UserAgent)
}
