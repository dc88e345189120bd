package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/flatfly/flatfly-api/internal/auth"
	"github.com/flatfly/flatfly-api/internal/store"
	"github.com/flatfly/flatfly-api/models"
)

type registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type credentials struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func userPayload(u *models.User) map[string]any {
	name := u.FirstName
	provider := models.ProviderEmail
	if u.Profile != nil {
		if u.Profile.Name != "" {
			name = u.Profile.Name
		}
		provider = u.Profile.AuthProvider
	}
	return map[string]any{
		"id":            u.ID,
		"email":         u.Email,
		"name":          name,
		"auth_provider": provider,
	}
}

// Register serves POST /api/auth/register/.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registration
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = store.NormalizeEmail(req.Email)
	err := check(&req, func(_, tag string) string {
		if tag == "email" {
			return "Invalid email"
		}
		return "Missing required fields"
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.Store.CreateEmailUser(r.Context(), req.Name, req.Email, hash)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.Sessions.Login(w, r, user.ID); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "registered",
		"user":   userPayload(user),
	})
}

// Login serves POST /api/auth/login/.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	err := check(&req, func(string, string) string {
		return "Email and password are required"
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.Store.UserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, r, errUserNotFound)
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	if user.Profile != nil && user.Profile.AuthProvider == models.ProviderGoogle {
		respondError(w, r, errGoogleLogin)
		return
	}
	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.Sessions.Login(w, r, user.ID); err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "logged_in",
		"user":   userPayload(user),
	})
}

// Logout serves POST /api/logout/.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(w, r); err != nil {
		log.Println("Failed to clear session:", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Logged out"})
}

// Me serves GET /api/me/.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := auth.Require(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.Store.UserByID(r.Context(), id.UserID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, r, auth.ErrUnauthenticated)
		return
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}
