package store

import (
	"context"
	"fmt"
	"time"

	"github.com/flatfly/flatfly-api/internal/paging"
	"github.com/flatfly/flatfly-api/models"
	"gorm.io/gorm"
)

// ListingFilter narrows a listing search. Zero values are inactive; the
// boolean amenity flags only ever require true.
type ListingFilter struct {
	Search         string
	Type           models.ListingType
	Region         string
	PriceFrom      *float64
	PriceTo        *float64
	Rooms          *int
	HasRoommates   bool
	RentalPeriod   string
	Internet       bool
	Utilities      bool
	PetsAllowed    bool
	SmokingAllowed bool
	MoveInBy       *time.Time
	// Amenities must all be present on a listing. Evaluated after loading.
	Amenities []string
}

func (s *Store) CreateListing(ctx context.Context, l *models.Listing) error {
	if l.Amenities == nil {
		l.Amenities = []string{}
	}
	if err := s.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

// ListingByID loads a listing with its images in upload order.
func (s *Store) ListingByID(ctx context.Context, id uint) (*models.Listing, error) {
	var l models.Listing
	if err := s.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, notFound(err)
	}
	if err := s.attachImages(ctx, []*models.Listing{&l}); err != nil {
		return nil, err
	}
	return &l, nil
}

// OwnedListing loads a listing only if ownerID owns it.
func (s *Store) OwnedListing(ctx context.Context, id, ownerID uint) (*models.Listing, error) {
	var l models.Listing
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&l).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

// UpdateListing writes only the given columns, zero values included.
func (s *Store) UpdateListing(ctx context.Context, l *models.Listing, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(l).Updates(columns).Error; err != nil {
		return fmt.Errorf("update listing %d: %w", l.ID, err)
	}
	return nil
}

// DeleteListing removes an owned listing together with its images and every
// favorite pointing at it. It returns the object keys of the removed images.
func (s *Store) DeleteListing(ctx context.Context, id, ownerID uint) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l models.Listing
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&l).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Model(&models.ListingImage{}).Where("listing_id = ?", id).Pluck("object_key", &keys).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&models.ListingImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&l).Error
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *Store) AddListingImage(ctx context.Context, img *models.ListingImage) error {
	if err := s.db.WithContext(ctx).Create(img).Error; err != nil {
		return fmt.Errorf("add listing image: %w", err)
	}
	return nil
}

// SearchListings returns one page of listings matching every active filter,
// newest first. Images are attached to the returned page only.
func (s *Store) SearchListings(ctx context.Context, f ListingFilter, rawPage string) ([]models.Listing, paging.Page, error) {
	q := s.db.WithContext(ctx).Model(&models.Listing{})

	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Search != "" {
		like := containsPattern(f.Search)
		q = q.Where("(LOWER(title) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", like, like)
	}
	if f.Region != "" {
		q = q.Where("LOWER(region) LIKE ? ESCAPE '\\'", containsPattern(f.Region))
	}
	if f.PriceFrom != nil {
		q = q.Where("price >= ?", *f.PriceFrom)
	}
	if f.PriceTo != nil {
		q = q.Where("price <= ?", *f.PriceTo)
	}
	if f.Rooms != nil {
		q = q.Where("rooms = ?", *f.Rooms)
	}
	if f.HasRoommates {
		q = q.Where("has_roommates = ?", true)
	}
	if f.RentalPeriod != "" {
		q = q.Where("rental_period = ?", f.RentalPeriod)
	}
	if f.Internet {
		q = q.Where("internet = ?", true)
	}
	if f.Utilities {
		q = q.Where("utilities_included = ?", true)
	}
	if f.PetsAllowed {
		q = q.Where("pets_allowed = ?", true)
	}
	if f.SmokingAllowed {
		q = q.Where("smoking_allowed = ?", true)
	}
	if f.MoveInBy != nil {
		q = q.Where("move_in_date IS NOT NULL AND move_in_date <= ?", *f.MoveInBy)
	}

	q = q.Session(&gorm.Session{})
	newestFirst := func() *gorm.DB {
		return q.Order("created_at DESC").Order("id DESC")
	}

	var (
		listings []models.Listing
		page     paging.Page
	)
	if len(f.Amenities) > 0 {
		var all []models.Listing
		if err := newestFirst().Find(&all).Error; err != nil {
			return nil, paging.Page{}, fmt.Errorf("search listings: %w", err)
		}
		matched := all[:0]
		for _, l := range all {
			if l.HasAmenities(f.Amenities) {
				matched = append(matched, l)
			}
		}
		page = paging.Resolve(rawPage, paging.ListingsPerPage, int64(len(matched)))
		start, end := page.Bounds()
		listings = matched[start:end]
	} else {
		var total int64
		if err := q.Count(&total).Error; err != nil {
			return nil, paging.Page{}, fmt.Errorf("count listings: %w", err)
		}
		page = paging.Resolve(rawPage, paging.ListingsPerPage, total)
		if err := newestFirst().Offset(page.Offset()).Limit(page.Size).Find(&listings).Error; err != nil {
			return nil, paging.Page{}, fmt.Errorf("search listings: %w", err)
		}
	}

	ptrs := make([]*models.Listing, len(listings))
	for i := range listings {
		ptrs[i] = &listings[i]
	}
	if err := s.attachImages(ctx, ptrs); err != nil {
		return nil, paging.Page{}, err
	}
	return listings, page, nil
}

// attachImages fills Images on each listing, oldest upload first.
func (s *Store) attachImages(ctx context.Context, listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	ids := make([]uint, len(listings))
	byID := make(map[uint]*models.Listing, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
		byID[l.ID] = l
		l.Images = []models.ListingImage{}
	}

	var images []models.ListingImage
	err := s.db.WithContext(ctx).
		Where("listing_id IN ?", ids).
		Order("uploaded_at ASC").Order("id ASC").
		Find(&images).Error
	if err != nil {
		return fmt.Errorf("load listing images: %w", err)
	}
	for _, img := range images {
		if l, ok := byID[img.ListingID]; ok {
			l.Images = append(l.Images, img)
		}
	}
	return nil
}
