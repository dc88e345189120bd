package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/flatfly/flatfly-api/internal/auth"
	"github.com/flatfly/flatfly-api/internal/store"
	"github.com/flatfly/flatfly-api/models"
	"gorm.io/datatypes"
)

type listingItem struct {
	ID             uint                `json:"id"`
	Type           models.ListingType  `json:"type"`
	Title          string              `json:"title"`
	Price          string              `json:"price"`
	Region         models.Region       `json:"region"`
	Address        string              `json:"address"`
	Size           *int                `json:"size"`
	Rooms          *int                `json:"rooms"`
	Beds           *int                `json:"beds"`
	HasRoommates   bool                `json:"hasRoommates"`
	RentalPeriod   models.RentalPeriod `json:"rentalPeriod"`
	Internet       bool                `json:"internet"`
	Utilities      bool                `json:"utilities"`
	PetsAllowed    bool                `json:"petsAllowed"`
	SmokingAllowed bool                `json:"smokingAllowed"`
	Amenities      []string            `json:"amenities"`
	MoveInDate     *string             `json:"moveInDate"`
	Image          *string             `json:"image"`
}

type listingDetail struct {
	listingItem
	RegionLabel string    `json:"regionLabel"`
	Description string    `json:"description"`
	OwnerID     uint      `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	Badges      []string  `json:"badges"`
	Images      []string  `json:"images"`
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

// primaryImage is the URL of the oldest upload, or nil.
func (h *Handler) primaryImage(l *models.Listing) *string {
	if len(l.Images) == 0 {
		return nil
	}
	u := h.Objects.URL(l.Images[0].ObjectKey)
	return &u
}

func (h *Handler) listingItem(l *models.Listing) listingItem {
	item := listingItem{
		ID:             l.ID,
		Type:           l.Type,
		Title:          l.Title,
		Price:          formatPrice(l.Price),
		Region:         l.Region,
		Address:        l.Address,
		Size:           l.Size,
		Rooms:          l.Rooms,
		Beds:           l.Beds,
		HasRoommates:   l.HasRoommates,
		RentalPeriod:   l.RentalPeriod,
		Internet:       l.Internet,
		Utilities:      l.UtilitiesIncluded,
		PetsAllowed:    l.PetsAllowed,
		SmokingAllowed: l.SmokingAllowed,
		Amenities:      []string(l.Amenities),
		Image:          h.primaryImage(l),
	}
	if item.Amenities == nil {
		item.Amenities = []string{}
	}
	if l.MoveInDate != nil {
		d := l.MoveInDate.Format(dateLayout)
		item.MoveInDate = &d
	}
	return item
}

func listingFilter(q url.Values) store.ListingFilter {
	kind := q.Get("propertyType")
	if kind == "" {
		kind = q.Get("type")
	}
	return store.ListingFilter{
		Search:         q.Get("search"),
		Type:           models.ListingType(kind),
		Region:         q.Get("region"),
		PriceFrom:      parseFloat(q.Get("priceFrom")),
		PriceTo:        parseFloat(q.Get("priceTo")),
		Rooms:          parseInt(q.Get("rooms")),
		HasRoommates:   q.Get("hasRoommates") == "yes",
		RentalPeriod:   q.Get("rentalPeriod"),
		Internet:       q.Get("internet") == "yes",
		Utilities:      q.Get("utilities") == "yes",
		PetsAllowed:    q.Get("petsAllowed") == "yes",
		SmokingAllowed: q.Get("smokingAllowed") == "yes",
		MoveInBy:       parseDate(q.Get("moveInDate")),
		Amenities:      q["amenities[]"],
	}
}

// SearchListings serves GET /api/listings/.
func (h *Handler) SearchListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listings, page, err := h.Store.SearchListings(r.Context(), listingFilter(q), q.Get("page"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	results := make([]listingItem, len(listings))
	for i := range listings {
		results[i] = h.listingItem(&listings[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results":      results,
		"total_pages":  page.Pages,
		"current_page": page.Number,
		"count":        page.Total,
	})
}

const maxPrice = 99999999.99

// listingInput is the validated core of a listing. Price is nil when a new
// listing was sent without one.
type listingInput struct {
	Type         models.ListingType  `json:"type" validate:"required,enum"`
	Title        string              `json:"title" validate:"required"`
	Description  string              `json:"description" validate:"required"`
	Region       models.Region       `json:"region" validate:"required,enum"`
	Price        *float64            `json:"price" validate:"required,min=0,max=99999999.99"`
	RentalPeriod models.RentalPeriod `json:"rentalPeriod" validate:"enum"`
}

func listingMessage(field, tag string) string {
	switch {
	case tag == "required":
		return "Missing required field: " + field
	case field == "type":
		return "Invalid listing type"
	case field == "region":
		return "Invalid region"
	case field == "rentalPeriod":
		return "Invalid rental period"
	}
	return fmt.Sprintf("price must be between 0 and %.2f", maxPrice)
}

// checkListing validates l as it would be stored.
func checkListing(l *models.Listing, priced bool) error {
	in := listingInput{
		Type:         l.Type,
		Title:        strings.TrimSpace(l.Title),
		Description:  strings.TrimSpace(l.Description),
		Region:       l.Region,
		RentalPeriod: l.RentalPeriod,
	}
	if priced {
		in.Price = &l.Price
	}
	return check(&in, listingMessage)
}

// readListing applies the listing members present in f to l and returns
// the changed columns.
func readListing(f *fields, l *models.Listing) map[string]any {
	cols := map[string]any{}
	var s string
	if f.str("type", &s) {
		l.Type = models.ListingType(strings.ToUpper(s))
		cols["type"] = l.Type
	}
	if f.str("title", &l.Title) {
		cols["title"] = l.Title
	}
	if f.str("description", &l.Description) {
		cols["description"] = l.Description
	}
	if f.str("region", &s) {
		l.Region = models.Region(strings.ToUpper(s))
		cols["region"] = l.Region
	}
	if f.str("address", &l.Address) {
		cols["address"] = l.Address
	}
	if price, ok := f.number("price"); ok {
		if price == nil {
			f.fail("price must be a number")
		} else {
			l.Price = *price
			cols["price"] = l.Price
		}
	}
	if f.integer("rooms", &l.Rooms) {
		cols["rooms"] = l.Rooms
	}
	if f.integer("beds", &l.Beds) {
		cols["beds"] = l.Beds
	}
	if f.integer("size", &l.Size) {
		cols["size"] = l.Size
	}
	if f.boolean("hasRoommates", &l.HasRoommates) {
		cols["has_roommates"] = l.HasRoommates
	}
	if f.str("rentalPeriod", &s) {
		l.RentalPeriod = models.RentalPeriod(strings.ToUpper(s))
		if s == "" {
			l.RentalPeriod = models.RentalLong
		}
		cols["rental_period"] = l.RentalPeriod
	}
	if f.boolean("internet", &l.Internet) {
		cols["internet"] = l.Internet
	}
	if f.boolean("utilities", &l.UtilitiesIncluded) {
		cols["utilities_included"] = l.UtilitiesIncluded
	}
	if f.boolean("petsAllowed", &l.PetsAllowed) {
		cols["pets_allowed"] = l.PetsAllowed
	}
	if f.boolean("smokingAllowed", &l.SmokingAllowed) {
		cols["smoking_allowed"] = l.SmokingAllowed
	}
	var amenities []string
	if f.list("amenities", &amenities) {
		l.Amenities = datatypes.JSONSlice[string](amenities)
		cols["amenities"] = l.Amenities
	}
	if f.date("moveInDate", &l.MoveInDate) {
		cols["move_in_date"] = l.MoveInDate
	}
	return cols
}

// CreateListing serves POST /api/listings/.
func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	id, err := auth.Require(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	f, err := readFields(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	listing := &models.Listing{OwnerID: id.UserID, RentalPeriod: models.RentalLong}
	cols := readListing(f, listing)
	if f.err != nil {
		respondError(w, r, f.err)
		return
	}
	_, priced := cols["price"]
	if err := checkListing(listing, priced); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.Store.CreateListing(r.Context(), listing); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": listing.ID, "status": "created"})
}

// GetListing serves GET /api/listings/{id}/.
func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := idParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	listing, err := h.Store.ListingByID(r.Context(), listingID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	images := make([]string, len(listing.Images))
	for i, img := range listing.Images {
		images[i] = h.Objects.URL(img.ObjectKey)
	}
	writeJSON(w, http.StatusOK, listingDetail{
		listingItem: h.listingItem(listing),
		RegionLabel: listing.Region.Label(),
		Description: listing.Description,
		OwnerID:     listing.OwnerID,
		CreatedAt:   listing.CreatedAt,
		Badges:      []string{},
		Images:      images,
	})
}

// UpdateListing serves PUT /api/listings/{id}/ for the listing's owner.
func (h *Handler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	id, err := auth.Require(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	listingID, err := idParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	listing, err := h.Store.OwnedListing(r.Context(), listingID, id.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	f, err := readFields(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	cols := readListing(f, listing)
	if f.err != nil {
		respondError(w, r, f.err)
		return
	}
	if err := checkListing(listing, true); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.Store.UpdateListing(r.Context(), listing, cols); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": listing.ID, "status": "updated"})
}

// DeleteListing serves DELETE /api/listings/{id}/ for the listing's owner.
func (h *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id, err := auth.Require(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	listingID, err := idParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	keys, err := h.Store.DeleteListing(r.Context(), listingID, id.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.removeObjects(r.Context(), keys)
	writeJSON(w, http.StatusOK, map[string]any{"id": listingID, "status": "deleted"})
}

// removeObjects deletes stored files whose rows are already gone. Failures
// only leave orphaned objects behind, so they are logged.
func (h *Handler) removeObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := h.Objects.Delete(ctx, key); err != nil {
			log.Println("Failed to delete object:", err)
		}
	}
}
