package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/flatfly/flatfly-api/internal/mail"
)

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// Contact serves POST /api/contact/ by mailing the message to the team.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	err := check(&req, func(_, tag string) string {
		if tag == "email" {
			return "Invalid email"
		}
		return "All fields are required"
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	body := fmt.Sprintf("New contact message from FlatFly:\n\nName: %s\nEmail: %s\n\nMessage:\n%s\n",
		req.Name, req.Email, req.Message)
	err = h.Mail.Send(r.Context(), mail.Message{
		To:      []string{h.ContactEmail},
		ReplyTo: req.Email,
		Subject: "FlatFly - New Contact Message",
		Body:    body,
	})
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errMailFailed, err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Message sent successfully"})
}
