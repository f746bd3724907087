package middleware

import (
	"net"
	"net/http"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
)

// AuditContext records where a request came from so audit entries written
// while serving it carry the caller's IP address and user agent. Put it after
// chi's RealIP.
func AuditContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := audit.WithRequestContext(r.Context(), audit.RequestContext{
			IPAddress: clientIP(r.RemoteAddr),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RealIP leaves RemoteAddr without a port, the listener does not.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
