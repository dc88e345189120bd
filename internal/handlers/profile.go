package handlers

import (
	"net/http"

	"github.com/flatfly/flatfly-api/internal/auth"
	"github.com/flatfly/flatfly-api/internal/store"
	"github.com/flatfly/flatfly-api/models"
)

type profileView struct {
	Photo              string   `json:"photo"`
	Name               string   `json:"name"`
	Age                *int     `json:"age"`
	Gender             string   `json:"gender"`
	City               string   `json:"city"`
	Languages          []string `json:"languages"`
	Profession         string   `json:"profession"`
	About              string   `json:"about"`
	Smoking            string   `json:"smoking"`
	Alcohol            string   `json:"alcohol"`
	SleepSchedule      string   `json:"sleepSchedule"`
	NoiseTolerance     string   `json:"noiseTolerance"`
	Gamer              string   `json:"gamer"`
	WorkFromHome       string   `json:"workFromHome"`
	Pets               string   `json:"pets"`
	Cleanliness        int      `json:"cleanliness"`
	IntrovertExtrovert int      `json:"introvertExtrovert"`
	GuestsParties      string   `json:"guestsParties"`
	PreferredGender    string   `json:"preferredGender"`
	PreferredAgeRange  string   `json:"preferredAgeRange"`
	Verified           bool     `json:"verified"`
	LookingForHousing  bool     `json:"lookingForHousing"`
}

func (h *Handler) profileView(p *models.Profile) profileView {
	return profileView{
		Photo:              h.Objects.URL(p.AvatarKey),
		Name:               p.Name,
		Age:                p.Age,
		Gender:             p.Gender,
		City:               p.City,
		Languages:          store.SplitLanguages(p.Languages),
		Profession:         p.Profession,
		About:              p.About,
		Smoking:            p.Smoking,
		Alcohol:            p.Alcohol,
		SleepSchedule:      p.SleepSchedule,
		NoiseTolerance:     p.NoiseTolerance,
		Gamer:              p.Gamer,
		WorkFromHome:       p.WorkFromHome,
		Pets:               p.Pets,
		Cleanliness:        p.Cleanliness,
		IntrovertExtrovert: p.IntrovertExtrovert,
		GuestsParties:      p.GuestsParties,
		PreferredGender:    p.PreferredGender,
		PreferredAgeRange:  p.PreferredAgeRange,
		Verified:           p.Verified,
		LookingForHousing:  p.LookingForHousing,
	}
}

// profileText maps request keys of free-text profile fields to columns.
var profileText = []struct {
	key, column string
}{
	{"name", "name"},
	{"city", "city"},
	{"profession", "profession"},
	{"about", "about"},
	{"smoking", "smoking"},
	{"alcohol", "alcohol"},
	{"sleepSchedule", "sleep_schedule"},
	{"noiseTolerance", "noise_tolerance"},
	{"gamer", "gamer"},
	{"workFromHome", "work_from_home"},
	{"pets", "pets"},
	{"guestsParties", "guests_parties"},
	{"preferredGender", "preferred_gender"},
	{"preferredAgeRange", "preferred_age_range"},
}

// profileChanges holds the validated members of a profile update.
type profileChanges struct {
	Age                *int     `json:"age" validate:"omitempty,min=0,max=150"`
	Gender             string   `json:"gender" validate:"omitempty,oneof=male female other"`
	Languages          []string `json:"languages" validate:"dive,excludesall=0x2C"`
	Cleanliness        *int     `json:"cleanliness" validate:"omitempty,min=0,max=10"`
	IntrovertExtrovert *int     `json:"introvertExtrovert" validate:"omitempty,min=0,max=10"`
}

func profileMessage(field, _ string) string {
	switch field {
	case "age":
		return "age must be between 0 and 150"
	case "gender":
		return "Invalid gender"
	case "languages":
		return "Language names cannot contain commas"
	}
	return field + " must be between 0 and 10"
}

// readScore reads a 0..10 score. Scores cannot be cleared.
func readScore(f *fields, key, column string, dst **int, cols map[string]any) {
	if !f.integer(key, dst) {
		return
	}
	if *dst == nil {
		f.fail(key + " must be between 0 and 10")
		return
	}
	cols[column] = **dst
}

// readProfile collects the profile columns present in f. verified is
// never taken from the caller.
func readProfile(f *fields) (map[string]any, error) {
	cols := map[string]any{}
	for _, t := range profileText {
		var s string
		if f.str(t.key, &s) {
			cols[t.column] = s
		}
	}

	var in profileChanges
	if f.integer("age", &in.Age) {
		cols["age"] = in.Age
	}
	if f.str("gender", &in.Gender) {
		cols["gender"] = in.Gender
	}
	if f.list("languages", &in.Languages) {
		cols["languages"] = store.JoinLanguages(in.Languages)
	}
	readScore(f, "cleanliness", "cleanliness", &in.Cleanliness, cols)
	readScore(f, "introvertExtrovert", "introvert_extrovert", &in.IntrovertExtrovert, cols)

	var looking bool
	if f.boolean("lookingForHousing", &looking) {
		cols["looking_for_housing"] = looking
	}
	if f.err != nil {
		return nil, f.err
	}
	if err := check(&in, profileMessage); err != nil {
		return nil, err
	}
	return cols, nil
}

// Profile serves GET and POST /api/profile/.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
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

	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, h.profileView(profile))
		return
	}

	f, err := readFields(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	cols, err := readProfile(f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.Store.UpdateProfile(r.Context(), profile, cols); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Profile updated"})
}
