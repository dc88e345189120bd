package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/flatfly/flatfly-api/internal/auth"
	"github.com/flatfly/flatfly-api/internal/imaging"
	"github.com/flatfly/flatfly-api/internal/store"
	"github.com/go-chi/chi/v5"
)

// ValidationError is a bad request whose message is safe to show the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

var (
	errMailFailed   = errors.New("Failed to send message")
	errUserNotFound = errors.New("User not found")
	errGoogleLogin  = errors.New("This account was created via Google. Please login with Google.")
)

// clientErrors reach the caller as 400 with their own text.
var clientErrors = []error{
	store.ErrEmailTaken,
	store.ErrGoogleAccount,
	auth.ErrInvalidPassword,
	auth.ErrInvalidLink,
	auth.ErrInvalidToken,
	imaging.ErrNotImage,
	errUserNotFound,
	errGoogleLogin,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("Failed to encode response:", err)
	}
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// respondError maps err onto the API's JSON error shapes. Unexpected errors
// are logged and answered with a bare 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *ValidationError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
	case errors.As(err, &verr):
		errorJSON(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, store.ErrNotFound):
		errorJSON(w, http.StatusNotFound, "Not found")
	case errors.As(err, &tooLarge):
		errorJSON(w, http.StatusRequestEntityTooLarge, "Upload too large")
	case errors.Is(err, errMailFailed):
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		errorJSON(w, http.StatusBadGateway, errMailFailed.Error())
	default:
		for _, known := range clientErrors {
			if errors.Is(err, known) {
				errorJSON(w, http.StatusBadRequest, known.Error())
				return
			}
		}
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		errorJSON(w, http.StatusInternalServerError, "internal server error")
	}
}

// NotFound answers unknown API paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	errorJSON(w, http.StatusNotFound, "Not found")
}

// MethodNotAllowed answers a known path requested with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"detail": "Method not allowed"})
}

// idParam reads a numeric URL parameter. Anything else cannot name a row.
func idParam(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, store.ErrNotFound
	}
	return uint(id), nil
}
