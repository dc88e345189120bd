package handlers

import (
	"net/http"
	"strconv"

	"github.com/flatfly/flatfly-api/internal/auth"
	"github.com/flatfly/flatfly-api/models"
)

type favoriteItem struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Price       string             `json:"price"`
	Type        models.ListingType `json:"type"`
	Region      models.Region      `json:"region"`
	Size        *int               `json:"size"`
	ImageURL    *string            `json:"image_url"`
	Amenities   []string           `json:"amenities"`
}

// callerProfile resolves the authenticated caller's profile.
func (h *Handler) callerProfile(r *http.Request) (*models.Profile, error) {
	id, err := auth.Require(r.Context())
	if err != nil {
		return nil, err
	}
	return h.Store.ProfileForUser(r.Context(), id.UserID)
}

func bodyListingID(r *http.Request) (uint, error) {
	f, err := readFields(r)
	if err != nil {
		return 0, err
	}
	var id *int
	if !f.integer("listing_id", &id) {
		if f.err != nil {
			return 0, f.err
		}
		return 0, invalid("listing_id is required")
	}
	if id == nil || *id <= 0 {
		return 0, invalid("listing_id is required")
	}
	return uint(*id), nil
}

// AddFavorite serves POST /api/favorites/add/.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	profile, err := h.callerProfile(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	listingID, err := bodyListingID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.Store.AddFavorite(r.Context(), profile.ID, listingID); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Added to favorites",
		"is_favorite": true,
	})
}

// RemoveFavorite serves POST /api/favorites/remove/.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	profile, err := h.callerProfile(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	listingID, err := bodyListingID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.Store.RemoveFavorite(r.Context(), profile.ID, listingID); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Removed from favorites",
		"is_favorite": false,
	})
}

// IsFavorite serves GET /api/favorites/is-favorite/.
func (h *Handler) IsFavorite(w http.ResponseWriter, r *http.Request) {
	profile, err := h.callerProfile(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	raw := r.URL.Query().Get("listing_id")
	if raw == "" {
		respondError(w, r, invalid("listing_id is required"))
		return
	}
	listingID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondError(w, r, invalid("listing_id must be a number"))
		return
	}

	fav, err := h.Store.IsFavorite(r.Context(), profile.ID, uint(listingID))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"listing_id":  listingID,
		"is_favorite": fav,
	})
}

// ListFavorites serves GET /api/favorites/.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	profile, err := h.callerProfile(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	listings, page, err := h.Store.ListFavorites(r.Context(), profile.ID, r.URL.Query().Get("page"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]favoriteItem, len(listings))
	for i := range listings {
		l := &listings[i]
		items[i] = favoriteItem{
			ID:          l.ID,
			Title:       l.Title,
			Description: l.Description,
			Price:       formatPrice(l.Price),
			Type:        l.Type,
			Region:      l.Region,
			Size:        l.Size,
			ImageURL:    h.primaryImage(l),
			Amenities:   []string(l.Amenities),
		}
		if items[i].Amenities == nil {
			items[i].Amenities = []string{}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"count":       page.Total,
		"page":        page.Number,
		"total_pages": page.Pages,
		"listings":    items,
	})
}
