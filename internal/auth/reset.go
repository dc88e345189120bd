package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/flatfly/flatfly-api/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidLink  = errors.New("Invalid link")
	ErrInvalidToken = errors.New("Invalid or expired token")
)

type resetClaims struct {
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// ResetTokens issues password reset tokens. A token is bound to one user,
// expires after TTL and stops validating once the password changes.
type ResetTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewResetTokens(secret string, ttl time.Duration) *ResetTokens {
	return &ResetTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// EncodeUID renders a user id for use in a reset link.
func EncodeUID(id uint) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(uint64(id), 10)))
}

func DecodeUID(uid string) (uint, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, ErrInvalidLink
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidLink
	}
	return uint(id), nil
}

func (t *ResetTokens) Issue(user *models.User) (string, error) {
	now := t.now()
	claims := resetClaims{
		Fingerprint: fingerprint(user),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// Check validates token against the user's current state.
func (t *ResetTokens) Check(user *models.User, token string) error {
	var claims resetClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return ErrInvalidToken
	}
	if claims.Subject != strconv.FormatUint(uint64(user.ID), 10) {
		return ErrInvalidToken
	}
	if claims.Fingerprint != fingerprint(user) {
		return ErrInvalidToken
	}
	return nil
}

func fingerprint(user *models.User) string {
	sum := sha256.Sum256([]byte(strconv.FormatUint(uint64(user.ID), 10) + "|" + user.Password))
	return hex.EncodeToString(sum[:16])
}
