package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/flatfly/flatfly-api/internal/auth"
	"github.com/flatfly/flatfly-api/internal/mail"
	"github.com/flatfly/flatfly-api/internal/store"
	"github.com/go-chi/chi/v5"
)

const resetSent = "If an account with this email exists, a reset link was sent."

// frontendURL is the origin reset links point back to. Request headers never
// choose it; without a configured URL the server's own host is used.
func (h *Handler) frontendURL(r *http.Request) string {
	if h.FrontendURL != "" {
		return strings.TrimRight(h.FrontendURL, "/")
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// resetEmail reads the address from a form post or a JSON body.
func resetEmail(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Email string `json:"email"`
		}
		if err := decodeJSON(r, &body); err != nil {
			return "", err
		}
		return body.Email, nil
	}
	return r.FormValue("email"), nil
}

// RequestPasswordReset serves POST /api/auth/password-reset/. The answer is
// the same whether or not the account exists.
func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	email, err := resetEmail(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(email) == "" {
		respondError(w, r, invalid("Email is required"))
		return
	}

	user, err := h.Store.UserByEmail(r.Context(), email)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		respondError(w, r, err)
		return
	default:
		token, err := h.Reset.Issue(user)
		if err != nil {
			respondError(w, r, err)
			return
		}
		link := fmt.Sprintf("%s/reset-password/%s/%s/", h.frontendURL(r), auth.EncodeUID(user.ID), token)
		err = h.Mail.Send(r.Context(), mail.Message{
			To:      []string{user.Email},
			Subject: "Password reset",
			Body:    "Click the link to reset your password:\n\n" + link,
		})
		if err != nil {
			log.Printf("Failed to send password reset mail to user %d: %v\n", user.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"detail": resetSent})
}

// ConfirmPasswordReset serves POST /api/auth/password-reset-confirm/{uid}/{token}/.
func (h *Handler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.DecodeUID(chi.URLParam(r, "uid"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.Store.UserByID(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, r, auth.ErrInvalidLink)
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.Reset.Check(user, chi.URLParam(r, "token")); err != nil {
		respondError(w, r, err)
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	if body.Password == "" {
		respondError(w, r, invalid("Password required"))
		return
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.Store.SetPassword(r.Context(), user.ID, hash); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password_updated"})
}
