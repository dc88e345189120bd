package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/flatfly/flatfly-api/internal/store"
	"github.com/flatfly/flatfly-api/internal/testutil"
	"github.com/flatfly/flatfly-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProfile(t *testing.T, db *gorm.DB, s *store.Store, n int, mutate func(*models.Profile)) *models.Profile {
	t.Helper()
	u, err := s.CreateEmailUser(context.Background(), fmt.Sprintf("User %d", n), fmt.Sprintf("u%d@example.com", n), "hash")
	require.NoError(t, err)

	p := u.Profile
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, db.Save(p).Error)

	p.CreatedAt = baseTime.Add(time.Duration(n) * time.Minute)
	require.NoError(t, db.Model(p).UpdateColumn("created_at", p.CreatedAt).Error)
	return p
}

func profileIDs(profiles []models.Profile) []uint {
	out := make([]uint, len(profiles))
	for i, p := range profiles {
		out[i] = p.ID
	}
	return out
}

func TestSearchProfilesLanguagesMatchAny(t *testing.T) {
	db := testutil.NewDB(t)
	s := store.New(db)

	cz := seedProfile(t, db, s, 1, func(p *models.Profile) { p.Languages = "cz,de" })
	en := seedProfile(t, db, s, 2, func(p *models.Profile) { p.Languages = "en" })
	seedProfile(t, db, s, 3, func(p *models.Profile) { p.Languages = "ru" })
	seedProfile(t, db, s, 4, func(p *models.Profile) { p.Languages = "english" })

	got, page, err := s.SearchProfiles(context.Background(), store.NeighbourFilter{
		Languages: []string{"cz", "en"},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, []uint{en.ID, cz.ID}, profileIDs(got))
	assert.Equal(t, int64(2), page.Total)
}

func TestSearchProfilesFilters(t *testing.T) {
	db := testutil.NewDB(t)
	s := store.New(db)

	want := seedProfile(t, db, s, 1, func(p *models.Profile) {
		p.Name = "Tereza"
		p.City = "Brno"
		p.Gender = "female"
		p.Age = ptr(25)
		p.Smoking = "no"
		p.SleepSchedule = "early"
		p.WorkFromHome = "yes"
		p.Verified = true
		p.LookingForHousing = false
	})
	seedProfile(t, db, s, 2, func(p *models.Profile) {
		p.City = "Brno"
		p.Gender = "female"
		p.Age = ptr(40)
	})
	seedProfile(t, db, s, 3, func(p *models.Profile) {
		p.City = "Praha"
		p.Gender = "male"
		p.Age = ptr(25)
	})

	f := store.NeighbourFilter{
		Search:            "brn",
		Gender:            "female",
		AgeFrom:           ptr(20),
		AgeTo:             ptr(30),
		Smoking:           "no",
		SleepSchedule:     "early",
		WorkFromHome:      "yes",
		Verified:          ptr(true),
		LookingForHousing: ptr(false),
	}
	got, _, err := s.SearchProfiles(context.Background(), f, "")
	require.NoError(t, err)
	assert.Equal(t, []uint{want.ID}, profileIDs(got))

	got, _, err = s.SearchProfiles(context.Background(), store.NeighbourFilter{Gender: "any", City: "BRNO"}, "")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearchProfilesPageSize(t *testing.T) {
	db := testutil.NewDB(t)
	s := store.New(db)
	for i := 0; i < 13; i++ {
		seedProfile(t, db, s, i, nil)
	}

	got, page, err := s.SearchProfiles(context.Background(), store.NeighbourFilter{}, "")
	require.NoError(t, err)
	assert.Len(t, got, 12)
	assert.Equal(t, 2, page.Pages)

	got, page, err = s.SearchProfiles(context.Background(), store.NeighbourFilter{}, "9")
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, page.Number)
}

func TestUpdateProfilePartial(t *testing.T) {
	db := testutil.NewDB(t)
	s := store.New(db)
	p := seedProfile(t, db, s, 1, func(p *models.Profile) {
		p.City = "Olomouc"
		p.Languages = "cz,en"
	})
	ctx := context.Background()

	require.NoError(t, s.UpdateProfile(ctx, p, map[string]any{"about": "hello", "looking_for_housing": false}))

	got, err := s.ProfileForUser(ctx, p.UserID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.About)
	assert.False(t, got.LookingForHousing)
	assert.Equal(t, "Olomouc", got.City)
	assert.Equal(t, []string{"cz", "en"}, store.SplitLanguages(got.Languages))
}

func TestProfileForUserCreatesMissing(t *testing.T) {
	db := testutil.NewDB(t)
	s := store.New(db)
	u, err := s.CreateEmailUser(context.Background(), "A", "a@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, db.Delete(&models.Profile{}, u.Profile.ID).Error)

	p, err := s.ProfileForUser(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, 5, p.Cleanliness)
	assert.True(t, p.LookingForHousing)
}

func TestLanguagesRoundTrip(t *testing.T) {
	langs := []string{"en", "cz", "ru", "de"}
	assert.Equal(t, langs, store.SplitLanguages(store.JoinLanguages(langs)))
	assert.Equal(t, []string{}, store.SplitLanguages(store.JoinLanguages(nil)))
	assert.Equal(t, "en,cz", store.JoinLanguages([]string{" en ", "", "cz"}))
}

func TestSearchProfilesEscapesWildcards(t *testing.T) {
	db := testutil.NewDB(t)
	s := store.New(db)

	under := seedProfile(t, db, s, 1, func(p *models.Profile) { p.City = "Ústí_nad_Labem" })
	seedProfile(t, db, s, 2, func(p *models.Profile) { p.City = "Brno" })

	got, _, err := s.SearchProfiles(context.Background(), store.NeighbourFilter{City: "_"}, "")
	require.NoError(t, err)
	assert.Equal(t, []uint{under.ID}, profileIDs(got))

	got, _, err = s.SearchProfiles(context.Background(), store.NeighbourFilter{Search: "b_n"}, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}
