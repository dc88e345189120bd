package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flatfly/flatfly-api/models"
	"gorm.io/gorm"
)

// OAuthIdentity is a verified identity asserted by an external provider.
type OAuthIdentity struct {
	Provider  models.AuthProvider
	Subject   string
	Email     string
	FirstName string
	LastName  string
}

// NormalizeEmail lower-cases and trims an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// errRegisterConflict means a concurrent registration took the email or
// username between the checks and the insert.
var errRegisterConflict = errors.New("registration conflict")

const registerAttempts = 3

// CreateEmailUser registers a password account and its profile in one
// transaction. A conflicting concurrent insert is retried so the checks can
// tell a taken email from a taken username.
func (s *Store) CreateEmailUser(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	email = NormalizeEmail(email)
	for attempt := 1; ; attempt++ {
		user, err := s.createEmailUser(ctx, name, email, passwordHash)
		if errors.Is(err, errRegisterConflict) && attempt < registerAttempts {
			continue
		}
		return user, err
	}
}

func (s *Store) createEmailUser(ctx context.Context, name, email, passwordHash string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Preload("Profile").Where("email = ?", email).First(&existing).Error
		if err == nil {
			if existing.Profile != nil && existing.Profile.AuthProvider == models.ProviderGoogle {
				return ErrGoogleAccount
			}
			return ErrEmailTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		username, err := uniqueUsername(tx, strings.SplitN(email, "@", 2)[0])
		if err != nil {
			return err
		}

		user = models.User{
			Username: username,
			Email:    email,
			Password: passwordHash,
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %v", errRegisterConflict, err)
			}
			return err
		}

		profile := newProfile(user.ID, models.ProviderEmail, name)
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// LinkOAuthUser finds the account owning the identity's email or provisions a
// new user and profile for it.
func (s *Store) LinkOAuthUser(ctx context.Context, id OAuthIdentity) (*models.User, error) {
	email := NormalizeEmail(id.Email)
	if email == "" {
		return nil, errors.New("identity has no email")
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Profile").Where("email = ?", email).First(&user).Error
		switch {
		case err == nil:
			return relinkProvider(tx, &user, id.Provider)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		base := id.Subject
		if id.Provider == models.ProviderApple {
			base = "apple_" + id.Subject
		}
		username, err := uniqueUsername(tx, base)
		if err != nil {
			return err
		}

		user = models.User{
			Username:  username,
			Email:     email,
			FirstName: id.FirstName,
			LastName:  id.LastName,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		name := strings.TrimSpace(id.FirstName + " " + id.LastName)
		profile := newProfile(user.ID, id.Provider, name)
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// relinkProvider records the provider an existing account signed in with.
// Google always takes over; Apple only upgrades plain email accounts.
func relinkProvider(tx *gorm.DB, user *models.User, provider models.AuthProvider) error {
	if user.Profile == nil {
		profile := newProfile(user.ID, provider, strings.TrimSpace(user.FirstName+" "+user.LastName))
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return nil
	}

	current := user.Profile.AuthProvider
	if provider == current {
		return nil
	}
	if provider == models.ProviderApple && current != models.ProviderEmail {
		return nil
	}
	user.Profile.AuthProvider = provider
	return tx.Model(user.Profile).Update("auth_provider", provider).Error
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Preload("Profile").
		Where("email = ?", NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) SetPassword(ctx context.Context, userID uint, passwordHash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("password", passwordHash)
	if res.Error != nil {
		return fmt.Errorf("set password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func newProfile(userID uint, provider models.AuthProvider, name string) *models.Profile {
	return &models.Profile{
		UserID:             userID,
		AuthProvider:       provider,
		Name:               name,
		Cleanliness:        5,
		IntrovertExtrovert: 5,
		LookingForHousing:  true,
	}
}

func uniqueUsername(tx *gorm.DB, base string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "user"
	}
	if r := []rune(base); len(r) > 140 {
		base = string(r[:140])
	}

	candidate := base
	for i := 1; ; i++ {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}
