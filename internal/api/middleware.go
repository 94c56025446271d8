package api

import (
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"github.com/ignite/login-mail/internal/pkg/logger"
)

// clientIP resolves the request's source IP. RemoteAddr by default; the
// first X-Forwarded-For hop only when the server is configured to sit
// behind a trusted reverse proxy. Trusting the header without a proxy lets
// clients choose their own admission key.
func (s *Server) clientIP(r *http.Request) string {
	if s.trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			// Format: "client, proxy1, proxy2"
			return strings.TrimSpace(strings.Split(xff, ",")[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// admissionGate rejects banned IPs outright, then counts the attempt.
// Counting happens before the send, so load is bounded regardless of
// downstream outcome.
func (s *Server) admissionGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := s.clientIP(r)

		banned, err := s.admission.IsBanned(r.Context(), ip)
		if err != nil {
			logger.Error("ban check failed", "ip", ip, "err", err.Error())
			respondError(w, http.StatusServiceUnavailable, "service unavailable")
			return
		}
		if banned {
			respondError(w, http.StatusForbidden, "access denied")
			return
		}

		ok, err := s.admission.Admit(r.Context(), ip)
		if err != nil {
			logger.Error("admission failed", "ip", ip, "err", err.Error())
			respondError(w, http.StatusServiceUnavailable, "service unavailable")
			return
		}
		if !ok {
			logger.Warn("request denied by admission window", "ip", ip)
			respondError(w, http.StatusTooManyRequests, "too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireAdmin guards ban administration with a shared token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken == "" {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		got := r.Header.Get("Authorization")
		want := "Bearer " + s.adminToken
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
