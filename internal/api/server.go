// Package api exposes the login flow over HTTP. It is the composition point
// where the admission gate sits in front of token issuance, and the boundary
// where internal error kinds collapse into deliberately vague user messages.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/login-mail/internal/domain"
)

// LoginService is the slice of the login service the handlers need.
type LoginService interface {
	Send(ctx context.Context, email string) error
	Verify(ctx context.Context, token string) (*domain.User, error)
}

// AdmissionController gates send requests by source IP.
type AdmissionController interface {
	Admit(ctx context.Context, ip string) (bool, error)
	IsBanned(ctx context.Context, ip string) (bool, error)
	Release(ctx context.Context, ip string) error
	Bans(ctx context.Context) ([]domain.IPBan, error)
}

// Server is the HTTP front of the login-mail service.
type Server struct {
	login      LoginService
	admission  AdmissionController
	adminToken string
	trustProxy bool
	handler    http.Handler
	server     *http.Server
}

// NewServer wires the router around the given services.
func NewServer(login LoginService, admission AdmissionController, adminToken string, trustProxy bool) *Server {
	s := &Server{
		login:      login,
		admission:  admission,
		adminToken: adminToken,
		trustProxy: trustProxy,
	}
	s.handler = s.routes()
	return s
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
