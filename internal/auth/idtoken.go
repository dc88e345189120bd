package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

const (
	GoogleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	AppleJWKSURL  = "https://appleid.apple.com/auth/keys"
)

var ErrInvalidIDToken = errors.New("invalid id_token")

// IDClaims are the OpenID Connect claims read from a verified id_token.
type IDClaims struct {
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	jwt.RegisteredClaims
}

// Verified reports whether the provider vouches for the email. Google sends a
// boolean, Apple a string; a missing claim counts as verified.
func (c *IDClaims) Verified() bool {
	switch v := c.EmailVerified.(type) {
	case bool:
		return v
	case string:
		return v != "false"
	}
	return true
}

// Verifier checks id_token signatures against a provider's published JWKS,
// along with issuer, audience and expiry.
type Verifier struct {
	audience string
	issuers  []string
	jwksURL  string
	// refresh lifetime of the remote key set
	ctx context.Context

	load    singleflight.Group
	mu      sync.RWMutex
	keyfunc jwt.Keyfunc
}

func NewVerifier(ctx context.Context, jwksURL, audience string, issuers ...string) *Verifier {
	return &Verifier{ctx: ctx, jwksURL: jwksURL, audience: audience, issuers: issuers}
}

func NewGoogleVerifier(ctx context.Context, clientID string) *Verifier {
	return NewVerifier(ctx, GoogleJWKSURL, clientID, "https://accounts.google.com", "accounts.google.com")
}

func NewAppleVerifier(ctx context.Context, clientID string) *Verifier {
	return NewVerifier(ctx, AppleJWKSURL, clientID, "https://appleid.apple.com")
}

// keys loads the remote key set on first use and retries on later calls if
// that first fetch failed. Concurrent callers share one fetch; each stops
// waiting when its own ctx is done.
func (v *Verifier) keys(ctx context.Context) (jwt.Keyfunc, error) {
	v.mu.RLock()
	kf := v.keyfunc
	v.mu.RUnlock()
	if kf != nil {
		return kf, nil
	}

	ch := v.load.DoChan(v.jwksURL, func() (any, error) {
		k, err := keyfunc.NewDefaultCtx(v.ctx, []string{v.jwksURL})
		if err != nil {
			return nil, fmt.Errorf("load jwks %s: %w", v.jwksURL, err)
		}
		loaded := jwt.Keyfunc(k.Keyfunc)
		v.mu.Lock()
		v.keyfunc = loaded
		v.mu.Unlock()
		return loaded, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(jwt.Keyfunc), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (v *Verifier) Verify(ctx context.Context, raw string) (*IDClaims, error) {
	if raw == "" {
		return nil, ErrInvalidIDToken
	}
	kf, err := v.keys(ctx)
	if err != nil {
		return nil, err
	}

	var claims IDClaims
	_, err = jwt.ParseWithClaims(raw, &claims, kf,
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}
	if !slices.Contains(v.issuers, claims.Issuer) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidIDToken, claims.Issuer)
	}
	return &claims, nil
}
