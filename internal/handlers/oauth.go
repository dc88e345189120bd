package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/flatfly/flatfly-api/internal/store"
	"github.com/flatfly/flatfly-api/models"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

const afterLoginPath = "/apartments"

// GothicFlow runs the OAuth flow of one goth provider.
type GothicFlow struct {
	Provider string
}

func (g GothicFlow) Begin(w http.ResponseWriter, r *http.Request) {
	gothic.BeginAuthHandler(w, gothic.GetContextWithProvider(r, g.Provider))
}

func (g GothicFlow) Complete(w http.ResponseWriter, r *http.Request) (goth.User, error) {
	return gothic.CompleteUserAuth(w, gothic.GetContextWithProvider(r, g.Provider))
}

// GoogleLogin serves GET /api/google_login/.
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	h.Google.Begin(w, r)
}

// GoogleCallback serves GET /api/google_callback/.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		errorJSON(w, http.StatusBadRequest, "Google OAuth error: "+e)
		return
	}
	if q.Get("code") == "" {
		errorJSON(w, http.StatusBadRequest, "No code received")
		return
	}

	gothUser, err := h.Google.Complete(w, r)
	if err != nil {
		log.Println("Google code exchange failed:", err)
		errorJSON(w, http.StatusBadRequest, "Google authentication failed")
		return
	}
	if gothUser.IDToken == "" {
		errorJSON(w, http.StatusBadRequest, "No id_token returned")
		return
	}
	claims, err := h.GoogleToken.Verify(r.Context(), gothUser.IDToken)
	if err != nil {
		log.Println("Google id_token rejected:", err)
		errorJSON(w, http.StatusBadRequest, "Invalid id_token")
		return
	}
	if claims.Email == "" || !claims.Verified() {
		errorJSON(w, http.StatusBadRequest, "Google did not return email")
		return
	}

	h.completeOAuth(w, r, store.OAuthIdentity{
		Provider:  models.ProviderGoogle,
		Subject:   claims.Subject,
		Email:     claims.Email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
	})
}

// appleUser is the JSON Apple posts on first sign-in only.
type appleUser struct {
	Name struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"name"`
}

// AppleCallback serves GET and POST /api/apple_callback/.
func (h *Handler) AppleCallback(w http.ResponseWriter, r *http.Request) {
	if h.AppleToken == nil {
		errorJSON(w, http.StatusBadRequest, "Apple sign-in is not configured")
		return
	}
	raw := r.FormValue("id_token")
	if raw == "" {
		errorJSON(w, http.StatusBadRequest, "No id_token from Apple")
		return
	}
	claims, err := h.AppleToken.Verify(r.Context(), raw)
	if err != nil {
		log.Println("Apple id_token rejected:", err)
		errorJSON(w, http.StatusBadRequest, "Invalid id_token")
		return
	}
	if claims.Email == "" {
		errorJSON(w, http.StatusBadRequest, "Apple did not return email")
		return
	}

	var profile appleUser
	if u := r.FormValue("user"); u != "" {
		if err := json.Unmarshal([]byte(u), &profile); err != nil {
			log.Println("Ignoring malformed Apple user payload:", err)
		}
	}

	h.completeOAuth(w, r, store.OAuthIdentity{
		Provider:  models.ProviderApple,
		Subject:   claims.Subject,
		Email:     claims.Email,
		FirstName: profile.Name.FirstName,
		LastName:  profile.Name.LastName,
	})
}

func (h *Handler) completeOAuth(w http.ResponseWriter, r *http.Request, id store.OAuthIdentity) {
	user, err := h.Store.LinkOAuthUser(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.Sessions.Login(w, r, user.ID); err != nil {
		respondError(w, r, err)
		return
	}
	http.Redirect(w, r, afterLoginPath, http.StatusFound)
}
