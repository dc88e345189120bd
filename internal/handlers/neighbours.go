package handlers

import (
	"net/http"
	"net/url"

	"github.com/flatfly/flatfly-api/internal/store"
	"github.com/flatfly/flatfly-api/models"
)

type neighbourItem struct {
	ID                uint     `json:"id"`
	Avatar            *string  `json:"avatar"`
	Name              string   `json:"name"`
	Age               *int     `json:"age"`
	Gender            string   `json:"gender"`
	City              string   `json:"city"`
	Languages         []string `json:"languages"`
	Profession        string   `json:"profession"`
	About             string   `json:"about"`
	Smoking           string   `json:"smoking"`
	Alcohol           string   `json:"alcohol"`
	Pets              string   `json:"pets"`
	SleepSchedule     string   `json:"sleep_schedule"`
	Gamer             string   `json:"gamer"`
	WorkFromHome      string   `json:"work_from_home"`
	Verified          bool     `json:"verified"`
	LookingForHousing bool     `json:"looking_for_housing"`
}

func (h *Handler) neighbourItem(p *models.Profile) neighbourItem {
	item := neighbourItem{
		ID:                p.ID,
		Name:              p.Name,
		Age:               p.Age,
		Gender:            p.Gender,
		City:              p.City,
		Languages:         store.SplitLanguages(p.Languages),
		Profession:        p.Profession,
		About:             p.About,
		Smoking:           p.Smoking,
		Alcohol:           p.Alcohol,
		Pets:              p.Pets,
		SleepSchedule:     p.SleepSchedule,
		Gamer:             p.Gamer,
		WorkFromHome:      p.WorkFromHome,
		Verified:          p.Verified,
		LookingForHousing: p.LookingForHousing,
	}
	if p.AvatarKey != "" {
		u := h.Objects.URL(p.AvatarKey)
		item.Avatar = &u
	}
	return item
}

func neighbourFilter(q url.Values) store.NeighbourFilter {
	gender := q.Get("gender")
	if gender == "any" {
		gender = ""
	}
	return store.NeighbourFilter{
		Search:            q.Get("search"),
		City:              q.Get("city"),
		Gender:            gender,
		AgeFrom:           parseInt(q.Get("ageFrom")),
		AgeTo:             parseInt(q.Get("ageTo")),
		Smoking:           q.Get("smoking"),
		Alcohol:           q.Get("alcohol"),
		SleepSchedule:     q.Get("sleepSchedule"),
		WorkFromHome:      q.Get("workFromHome"),
		Languages:         q["languages[]"],
		Verified:          parseBool(q.Get("verified")),
		LookingForHousing: parseBool(q.Get("looking_for_housing")),
	}
}

// SearchNeighbours serves GET /api/neighbours/list.
func (h *Handler) SearchNeighbours(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	profiles, page, err := h.Store.SearchProfiles(r.Context(), neighbourFilter(q), q.Get("page"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	results := make([]neighbourItem, len(profiles))
	for i := range profiles {
		results[i] = h.neighbourItem(&profiles[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":        page.Total,
		"pages":        page.Pages,
		"current_page": page.Number,
		"results":      results,
	})
}

// GetNeighbour serves GET /api/neighbours/{id}/.
func (h *Handler) GetNeighbour(w http.ResponseWriter, r *http.Request) {
	profileID, err := idParam(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	profile, err := h.Store.ProfileByID(r.Context(), profileID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.neighbourItem(profile))
}
