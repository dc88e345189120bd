package store

import (
	"context"
	"fmt"

	"github.com/flatfly/flatfly-api/internal/paging"
	"github.com/flatfly/flatfly-api/models"
	"gorm.io/gorm/clause"
)

// AddFavorite marks a listing as saved. Saving twice is a no-op.
func (s *Store) AddFavorite(ctx context.Context, profileID, listingID uint) error {
	if err := s.listingExists(ctx, listingID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Favorite{ProfileID: profileID, ListingID: listingID}).Error
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite unmarks a listing. Removing an unsaved listing is a no-op.
func (s *Store) RemoveFavorite(ctx context.Context, profileID, listingID uint) error {
	if err := s.listingExists(ctx, listingID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Where("profile_id = ? AND listing_id = ?", profileID, listingID).
		Delete(&models.Favorite{}).Error
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (s *Store) IsFavorite(ctx context.Context, profileID, listingID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("profile_id = ? AND listing_id = ?", profileID, listingID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("is favorite: %w", err)
	}
	return count > 0, nil
}

// ListFavorites returns one page of a profile's saved listings, newest
// listing first.
func (s *Store) ListFavorites(ctx context.Context, profileID uint, rawPage string) ([]models.Listing, paging.Page, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("profile_id = ?", profileID).
		Count(&total).Error
	if err != nil {
		return nil, paging.Page{}, fmt.Errorf("count favorites: %w", err)
	}
	page := paging.Resolve(rawPage, paging.FavoritesPerPage, total)

	var listings []models.Listing
	err = s.db.WithContext(ctx).
		Joins("JOIN profile_favorite_listings ON profile_favorite_listings.listing_id = listings.id").
		Where("profile_favorite_listings.profile_id = ?", profileID).
		Order("listings.created_at DESC").
		Order("listings.id DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&listings).Error
	if err != nil {
		return nil, paging.Page{}, fmt.Errorf("list favorites: %w", err)
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

func (s *Store) listingExists(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("listing exists: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
