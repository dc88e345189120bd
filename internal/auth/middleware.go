package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	SessionName = "flatfly_session"
	userIDKey   = "user_id"
)

var ErrUnauthenticated = errors.New("Not authenticated")

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID uint
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller attached by Sessions.Middleware, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != 0
}

// Require returns the caller or ErrUnauthenticated.
func Require(ctx context.Context) (Identity, error) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// Sessions keeps the logged-in user id in a signed cookie session.
type Sessions struct {
	store sessions.Store
}

func NewSessions(store sessions.Store) *Sessions {
	return &Sessions{store: store}
}

// NewCookieStore builds the cookie store shared by the API and gothic.
func NewCookieStore(secret string, secure bool) *sessions.CookieStore {
	maxAge := 86400 * 30
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(maxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = secure
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// Middleware attaches the session's identity to the request context when
// present. Requests without a valid session pass through anonymously.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.store.Get(r, SessionName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if userID, ok := session.Values[userIDKey].(uint); ok && userID != 0 {
			r = r.WithContext(WithIdentity(r.Context(), Identity{UserID: userID}))
		}
		next.ServeHTTP(w, r)
	})
}

// Login binds the response's session to userID.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, userID uint) error {
	// a stale or tampered cookie still yields a usable fresh session
	session, _ := s.store.Get(r, SessionName)
	session.Values[userIDKey] = userID
	return session.Save(r, w)
}

// Logout expires the session cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, SessionName)
	delete(session.Values, userIDKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
