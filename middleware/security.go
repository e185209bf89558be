// middleware/security.go
package middleware

import (
	"log"
	"net"
	"net/http"
	"strings"
	"time"
)

// SecurityMiddleware sets baseline response headers and logs each
// request with its source IP and latency.
func SecurityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[HTTP] %s %s ip=%s dur=%s", r.Method, r.URL.Path, getClientIP(r), time.Since(start))
	})
}

// getClientIP honours X-Forwarded-For when present (load balancer),
// otherwise falls back to the socket address.
func getClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
