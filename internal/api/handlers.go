package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/login-mail/internal/domain"
	"github.com/ignite/login-mail/internal/pkg/logger"
	"github.com/ignite/login-mail/internal/service/admission"
	"github.com/ignite/login-mail/internal/service/login"
	"github.com/ignite/login-mail/internal/token"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sendMailRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleSendMail(w http.ResponseWriter, r *http.Request) {
	var req sendMailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := domain.NormalizeEmail(req.Email)
	if !domain.ValidEmail(email) {
		respondError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	err := s.login.Send(r.Context(), email)
	switch {
	case err == nil:
		respondJSON(w, http.StatusAccepted, map[string]string{
			"status": "sent",
		})
	case errors.Is(err, login.ErrRateLimit):
		respondError(w, http.StatusTooManyRequests, "a login mail was sent recently; try again once it expires")
	case errors.Is(err, login.ErrTransport):
		respondError(w, http.StatusBadGateway, "the mail could not be sent; try again later")
	default:
		logger.Error("send failed", "email", email, "err", err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	user, err := s.login.Verify(r.Context(), r.URL.Query().Get("token"))
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"verified": true,
			"user":     user,
		})
	case errors.Is(err, login.ErrAlreadyValidated):
		respondError(w, http.StatusBadRequest, "this link was already used")
	case errors.Is(err, login.ErrInactiveIdentity):
		respondError(w, http.StatusForbidden, "this account is not active")
	case errors.Is(err, token.ErrFormat), errors.Is(err, login.ErrToken):
		// One message for both: distinguishing malformed from expired would
		// hand an attacker an oracle. The specific kind still gets logged.
		logger.Warn("verification rejected", "kind", err.Error())
		respondError(w, http.StatusBadRequest, "invalid or expired link")
	default:
		logger.Error("verification failed", "err", err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleListBans(w http.ResponseWriter, r *http.Request) {
	bans, err := s.admission.Bans(r.Context())
	if err != nil {
		logger.Error("list bans failed", "err", err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if bans == nil {
		bans = []domain.IPBan{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"bans":  bans,
		"total": len(bans),
	})
}

func (s *Server) handleReleaseBan(w http.ResponseWriter, r *http.Request) {
	ip := chi.URLParam(r, "ip")
	err := s.admission.Release(r.Context(), ip)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]string{"status": "released"})
	case errors.Is(err, admission.ErrBanNotFound):
		respondError(w, http.StatusNotFound, "no ban for this ip")
	default:
		logger.Error("release ban failed", "ip", ip, "err", err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
