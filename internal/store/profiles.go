package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/flatfly/flatfly-api/internal/paging"
	"github.com/flatfly/flatfly-api/models"
	"gorm.io/gorm"
)

// NeighbourFilter narrows the profile directory. Zero values are inactive.
type NeighbourFilter struct {
	Search        string
	City          string
	Gender        string
	AgeFrom       *int
	AgeTo         *int
	Smoking       string
	Alcohol       string
	SleepSchedule string
	WorkFromHome  string
	// Languages matches profiles listing any of the given codes.
	Languages         []string
	Verified          *bool
	LookingForHousing *bool
}

// ProfileForUser returns the user's profile, creating a default one if the
// row is missing.
func (s *Store) ProfileForUser(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).
		Where(models.Profile{UserID: userID}).
		Attrs(*newProfile(userID, models.ProviderEmail, "")).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("profile for user %d: %w", userID, err)
	}
	return &profile, nil
}

func (s *Store) ProfileByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &profile, nil
}

// UpdateProfile writes only the given columns, zero values included.
func (s *Store) UpdateProfile(ctx context.Context, profile *models.Profile, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(profile).Updates(columns).Error; err != nil {
		return fmt.Errorf("update profile %d: %w", profile.ID, err)
	}
	return nil
}

func (s *Store) SetAvatar(ctx context.Context, profile *models.Profile, key string) error {
	if err := s.db.WithContext(ctx).Model(profile).Update("avatar_key", key).Error; err != nil {
		return fmt.Errorf("set avatar: %w", err)
	}
	profile.AvatarKey = key
	return nil
}

// SearchProfiles returns one page of the neighbour directory, newest first.
func (s *Store) SearchProfiles(ctx context.Context, f NeighbourFilter, rawPage string) ([]models.Profile, paging.Page, error) {
	q := s.db.WithContext(ctx).Model(&models.Profile{})

	if f.Search != "" {
		like := containsPattern(f.Search)
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(city) LIKE ? ESCAPE '\\' OR LOWER(about) LIKE ? ESCAPE '\\' OR LOWER(profession) LIKE ? ESCAPE '\\')",
			like, like, like, like)
	}
	if f.City != "" {
		q = q.Where("LOWER(city) LIKE ? ESCAPE '\\'", containsPattern(f.City))
	}
	if f.Gender != "" && f.Gender != "any" {
		q = q.Where("gender = ?", f.Gender)
	}
	if f.AgeFrom != nil {
		q = q.Where("age >= ?", *f.AgeFrom)
	}
	if f.AgeTo != nil {
		q = q.Where("age <= ?", *f.AgeTo)
	}
	if f.Smoking != "" {
		q = q.Where("smoking = ?", f.Smoking)
	}
	if f.Alcohol != "" {
		q = q.Where("alcohol = ?", f.Alcohol)
	}
	if f.SleepSchedule != "" {
		q = q.Where("sleep_schedule = ?", f.SleepSchedule)
	}
	if f.WorkFromHome != "" {
		q = q.Where("work_from_home = ?", f.WorkFromHome)
	}
	if len(f.Languages) > 0 {
		conds := make([]string, 0, len(f.Languages))
		args := make([]any, 0, len(f.Languages))
		for _, lang := range f.Languages {
			conds = append(conds, "(',' || LOWER(languages) || ',') LIKE ? ESCAPE '\\'")
			args = append(args, "%,"+escapeLike(lang)+",%")
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	if f.Verified != nil {
		q = q.Where("verified = ?", *f.Verified)
	}
	if f.LookingForHousing != nil {
		q = q.Where("looking_for_housing = ?", *f.LookingForHousing)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, paging.Page{}, fmt.Errorf("count profiles: %w", err)
	}
	page := paging.Resolve(rawPage, paging.NeighboursPerPage, total)

	var profiles []models.Profile
	err := q.Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&profiles).Error
	if err != nil {
		return nil, paging.Page{}, fmt.Errorf("search profiles: %w", err)
	}
	return profiles, page, nil
}

// SplitLanguages decodes the stored comma-joined language list.
func SplitLanguages(stored string) []string {
	if stored == "" {
		return []string{}
	}
	return strings.Split(stored, ",")
}

// JoinLanguages encodes a language list for storage, preserving order.
func JoinLanguages(langs []string) string {
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, ",")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike lowercases s and escapes LIKE wildcards for use with ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s)))
}

func containsPattern(s string) string {
	return "%" + escapeLike(s) + "%"
}
