package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/flatfly/flatfly-api/internal/auth"
	"github.com/flatfly/flatfly-api/internal/imaging"
	"github.com/flatfly/flatfly-api/models"
	"github.com/google/uuid"
)

// readUpload reads one multipart file field within the upload limit.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", tooLarge
		}
		return nil, "", invalid("No " + field)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", invalid("No " + field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return data, header.Filename, nil
}

// UploadListingImage serves POST /api/listings/{id}/images/.
func (h *Handler) UploadListingImage(w http.ResponseWriter, r *http.Request) {
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

	data, filename, err := h.readUpload(w, r, "image")
	if err != nil {
		respondError(w, r, err)
		return
	}
	img, err := h.Images.Normalize(data, imaging.ListingMaxSide)
	if err != nil {
		respondError(w, r, err)
		return
	}

	imageUUID := uuid.New()
	key := fmt.Sprintf("listings/%d/%s.%s", listing.ID, imageUUID.String(), img.Ext)
	if err := h.Objects.Put(r.Context(), key, img.Data, img.MimeType); err != nil {
		respondError(w, r, fmt.Errorf("upload listing image: %w", err))
		return
	}

	record := &models.ListingImage{
		UUID:      imageUUID.String(),
		ListingID: listing.ID,
		ObjectKey: key,
		Filename:  filename,
		MimeType:  img.MimeType,
	}
	if err := h.Store.AddListingImage(r.Context(), record); err != nil {
		h.removeObjects(r.Context(), []string{key})
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":  record.ID,
		"url": h.Objects.URL(key),
	})
}

// UploadAvatar serves POST /api/profile/avatar/.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := auth.Require(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	profile, err := h.Store.ProfileForUser(r.Context(), id.UserID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	data, _, err := h.readUpload(w, r, "avatar")
	if err != nil {
		respondError(w, r, err)
		return
	}
	img, err := h.Images.Normalize(data, imaging.AvatarMaxSide)
	if err != nil {
		respondError(w, r, err)
		return
	}

	key := fmt.Sprintf("avatars/%d/%s.%s", id.UserID, uuid.NewString(), img.Ext)
	if err := h.Objects.Put(r.Context(), key, img.Data, img.MimeType); err != nil {
		respondError(w, r, fmt.Errorf("upload avatar: %w", err))
		return
	}

	previous := profile.AvatarKey
	if err := h.Store.SetAvatar(r.Context(), profile, key); err != nil {
		h.removeObjects(r.Context(), []string{key})
		respondError(w, r, err)
		return
	}
	if previous != "" {
		h.removeObjects(r.Context(), []string{previous})
	}
	log.Printf("Avatar uploaded for user %d: %s\n", id.UserID, key)

	writeJSON(w, http.StatusOK, map[string]any{
		"detail": "Avatar uploaded",
		"avatar": h.Objects.URL(key),
	})
}
