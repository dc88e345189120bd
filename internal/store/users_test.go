package store_test

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/flatfly/flatfly-api/internal/store"
	"github.com/flatfly/flatfly-api/internal/testutil"
	"github.com/flatfly/flatfly-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateEmailUserCreatesProfile(t *testing.T) {
	s := store.New(testutil.NewDB(t))
	ctx := context.Background()

	user, err := s.CreateEmailUser(ctx, "Jana", "  Jana@Example.com ", "hash")
	require.NoError(t, err)
	assert.Equal(t, "jana@example.com", user.Email)
	assert.Equal(t, "jana", user.Username)
	require.NotNil(t, user.Profile)
	assert.Equal(t, "Jana", user.Profile.Name)
	assert.Equal(t, models.ProviderEmail, user.Profile.AuthProvider)
	assert.True(t, user.Profile.LookingForHousing)
	assert.Equal(t, 5, user.Profile.Cleanliness)

	loaded, err := s.UserByEmail(ctx, "JANA@example.com")
	require.NoError(t, err)
	require.NotNil(t, loaded.Profile)
	assert.Equal(t, user.Profile.ID, loaded.Profile.ID)
}

func TestCreateEmailUserDuplicateEmail(t *testing.T) {
	s := store.New(testutil.NewDB(t))
	ctx := context.Background()

	_, err := s.CreateEmailUser(ctx, "A", "a@example.com", "hash")
	require.NoError(t, err)

	_, err = s.CreateEmailUser(ctx, "A again", "a@example.com", "hash")
	assert.ErrorIs(t, err, store.ErrEmailTaken)

	_, err = s.LinkOAuthUser(ctx, store.OAuthIdentity{
		Provider: models.ProviderGoogle, Subject: "g-1", Email: "g@example.com",
	})
	require.NoError(t, err)

	_, err = s.CreateEmailUser(ctx, "G", "g@example.com", "hash")
	assert.ErrorIs(t, err, store.ErrGoogleAccount)
}

func TestCreateEmailUserUniqueUsername(t *testing.T) {
	s := store.New(testutil.NewDB(t))
	ctx := context.Background()

	first, err := s.CreateEmailUser(ctx, "A", "petr@example.com", "hash")
	require.NoError(t, err)
	second, err := s.CreateEmailUser(ctx, "B", "petr@example.org", "hash")
	require.NoError(t, err)

	assert.Equal(t, "petr", first.Username)
	assert.Equal(t, "petr1", second.Username)
}

func TestLinkOAuthUserProvisionsAndLinks(t *testing.T) {
	s := store.New(testutil.NewDB(t))
	ctx := context.Background()

	created, err := s.LinkOAuthUser(ctx, store.OAuthIdentity{
		Provider: models.ProviderGoogle, Subject: "1234", Email: "new@example.com",
		FirstName: "Karel", LastName: "Novak",
	})
	require.NoError(t, err)
	assert.Equal(t, "1234", created.Username)
	assert.Equal(t, "Karel Novak", created.Profile.Name)
	assert.Equal(t, models.ProviderGoogle, created.Profile.AuthProvider)

	again, err := s.LinkOAuthUser(ctx, store.OAuthIdentity{
		Provider: models.ProviderGoogle, Subject: "1234", Email: "NEW@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	existing, err := s.CreateEmailUser(ctx, "Eva", "eva@example.com", "hash")
	require.NoError(t, err)
	linked, err := s.LinkOAuthUser(ctx, store.OAuthIdentity{
		Provider: models.ProviderGoogle, Subject: "999", Email: "eva@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, linked.ID)

	reloaded, err := s.UserByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGoogle, reloaded.Profile.AuthProvider)
}

func TestLinkOAuthUserAppleOnlyUpgradesEmailAccounts(t *testing.T) {
	s := store.New(testutil.NewDB(t))
	ctx := context.Background()

	_, err := s.CreateEmailUser(ctx, "Mail", "mail@example.com", "hash")
	require.NoError(t, err)
	_, err = s.LinkOAuthUser(ctx, store.OAuthIdentity{
		Provider: models.ProviderGoogle, Subject: "g", Email: "google@example.com",
	})
	require.NoError(t, err)

	upgraded, err := s.LinkOAuthUser(ctx, store.OAuthIdentity{
		Provider: models.ProviderApple, Subject: "a1", Email: "mail@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProviderApple, upgraded.Profile.AuthProvider)

	kept, err := s.LinkOAuthUser(ctx, store.OAuthIdentity{
		Provider: models.ProviderApple, Subject: "a2", Email: "google@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProviderGoogle, kept.Profile.AuthProvider)

	fresh, err := s.LinkOAuthUser(ctx, store.OAuthIdentity{
		Provider: models.ProviderApple, Subject: "a3", Email: "relay@privaterelay.appleid.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "apple_a3", fresh.Username)
}

func TestLinkOAuthUserRequiresEmail(t *testing.T) {
	s := store.New(testutil.NewDB(t))
	_, err := s.LinkOAuthUser(context.Background(), store.OAuthIdentity{Provider: models.ProviderGoogle, Subject: "x"})
	assert.Error(t, err)
}

func TestSetPassword(t *testing.T) {
	s := store.New(testutil.NewDB(t))
	ctx := context.Background()

	user, err := s.CreateEmailUser(ctx, "A", "a@example.com", "old")
	require.NoError(t, err)
	require.NoError(t, s.SetPassword(ctx, user.ID, "new"))

	reloaded, err := s.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", reloaded.Password)

	assert.ErrorIs(t, s.SetPassword(ctx, 9999, "x"), store.ErrNotFound)
	_, err = s.UserByID(ctx, 9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateEmailUserRetriesUsernameRace(t *testing.T) {
	db := testutil.NewDB(t)
	s := store.New(db)

	// another registration claims the username between the check and the insert
	raced := false
	err := db.Callback().Create().Before("gorm:create").Register("test:username_race", func(tx *gorm.DB) {
		u, ok := tx.Statement.Dest.(*models.User)
		if !ok || raced {
			return
		}
		raced = true
		now := time.Now()
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO users (username, email, created_at, updated_at) VALUES (?, ?, ?, ?)",
			u.Username, "racer@example.com", now, now).Error)
	})
	require.NoError(t, err)

	user, err := s.CreateEmailUser(context.Background(), "Petr", "petr@example.com", "hash")
	require.NoError(t, err)
	assert.True(t, raced)
	assert.Equal(t, "petr", user.Username)
	assert.Equal(t, "petr@example.com", user.Email)
}

func TestCreateEmailUserTruncatesUsernameByRune(t *testing.T) {
	s := store.New(testutil.NewDB(t))

	local := strings.Repeat("ž", 200)
	user, err := s.CreateEmailUser(context.Background(), "Long", local+"@example.com", "hash")
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(user.Username))
	assert.Equal(t, 140, utf8.RuneCountInString(user.Username))
}
