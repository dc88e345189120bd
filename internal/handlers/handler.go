package handlers

import (
	"context"
	"net/http"

	"github.com/flatfly/flatfly-api/internal/auth"
	"github.com/flatfly/flatfly-api/internal/imaging"
	"github.com/flatfly/flatfly-api/internal/mail"
	"github.com/flatfly/flatfly-api/internal/storage"
	"github.com/flatfly/flatfly-api/internal/store"
	"github.com/markbates/goth"
)

// IDTokenVerifier checks an OpenID Connect id_token.
type IDTokenVerifier interface {
	Verify(ctx context.Context, raw string) (*auth.IDClaims, error)
}

var _ IDTokenVerifier = (*auth.Verifier)(nil)

// OAuthFlow runs the authorization code flow against one provider.
type OAuthFlow interface {
	Begin(w http.ResponseWriter, r *http.Request)
	Complete(w http.ResponseWriter, r *http.Request) (goth.User, error)
}

// Options are the collaborators shared by every handler.
type Options struct {
	Store    *store.Store
	Sessions *auth.Sessions
	Reset    *auth.ResetTokens
	Objects  storage.ObjectStore
	Images   imaging.Processor
	Mail     mail.Sender

	Google      OAuthFlow
	GoogleToken IDTokenVerifier
	AppleToken  IDTokenVerifier

	ContactEmail   string
	// FrontendURL is the origin password reset links point to. Empty means
	// the request's own host.
	FrontendURL    string
	MaxUploadBytes int64
}

type Handler struct {
	Options
}

func New(opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{Options: opts}
}
