package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	// The admission gate only guards issuance: verification is already
	// throttled by the tokens themselves being single-use and expiring.
	r.Group(func(r chi.Router) {
		r.Use(s.admissionGate)
		r.Post("/auth/email", s.handleSendMail)
	})
	r.Get("/auth/verify", s.handleVerify)

	// Ban administration. Bans never expire on their own, so an operator
	// needs a way to list and lift them.
	r.Route("/admin/bans", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/", s.handleListBans)
		r.Delete("/{ip}", s.handleReleaseBan)
	})

	return r
}
