package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuthProvider string

const (
	ProviderEmail  AuthProvider = "email"
	ProviderGoogle AuthProvider = "google"
	ProviderApple  AuthProvider = "apple"
)

type User struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string `gorm:"size:150;not null;uniqueIndex"`
	Email     string `gorm:"size:255;not null;uniqueIndex"`
	Password  string `gorm:"size:255"`
	FirstName string `gorm:"size:150"`
	LastName  string `gorm:"size:150"`
	Profile   *Profile
	Listings  []Listing `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

type Profile struct {
	ID           uint `gorm:"primarykey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       uint         `gorm:"not null;uniqueIndex"`
	User         *User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AuthProvider AuthProvider `gorm:"size:20;not null;default:email"`

	AvatarKey  string `gorm:"size:255"`
	Name       string `gorm:"size:150"`
	Age        *int
	Gender     string `gorm:"size:10"`
	City       string `gorm:"size:100"`
	Languages  string `gorm:"size:200"`
	Profession string `gorm:"size:100"`
	About      string

	Smoking        string `gorm:"size:20"`
	Alcohol        string `gorm:"size:20"`
	SleepSchedule  string `gorm:"size:20"`
	NoiseTolerance string
	Gamer          string `gorm:"size:10"`
	WorkFromHome   string `gorm:"size:10"`
	Pets           string

	Cleanliness        int    `gorm:"not null;default:5"`
	IntrovertExtrovert int    `gorm:"not null;default:5"`
	GuestsParties      string `gorm:"size:20"`

	PreferredGender   string `gorm:"size:10"`
	PreferredAgeRange string `gorm:"size:50"`

	Verified          bool `gorm:"not null;default:false"`
	LookingForHousing bool `gorm:"not null;default:true"`

	FavoriteListings []Listing `gorm:"many2many:profile_favorite_listings;constraint:OnDelete:CASCADE;"`
}

type ListingType string

const (
	TypeApartment ListingType = "APARTMENT"
	TypeRoom      ListingType = "ROOM"
	TypeNeighbour ListingType = "NEIGHBOUR"
	TypeShareroom ListingType = "SHAREROOM"
)

func (t ListingType) Valid() bool {
	switch t {
	case TypeApartment, TypeRoom, TypeNeighbour, TypeShareroom:
		return true
	}
	return false
}

type RentalPeriod string

const (
	RentalShort RentalPeriod = "SHORT"
	RentalLong  RentalPeriod = "LONG"
	RentalBoth  RentalPeriod = "BOTH"
)

func (p RentalPeriod) Valid() bool {
	switch p {
	case RentalShort, RentalLong, RentalBoth:
		return true
	}
	return false
}

type Listing struct {
	ID          uint        `gorm:"primarykey"`
	CreatedAt   time.Time   `gorm:"index"`
	OwnerID     uint        `gorm:"not null;index"`
	Owner       *User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Type        ListingType `gorm:"size:20;not null;index"`
	Title       string      `gorm:"size:255;not null"`
	Description string      `gorm:"not null"`

	Region  Region `gorm:"size:32;not null"`
	Address string `gorm:"size:255"`

	Price float64 `gorm:"type:numeric(10,2);not null"`
	Rooms *int
	Beds  *int
	Size  *int

	HasRoommates bool         `gorm:"not null;default:false"`
	RentalPeriod RentalPeriod `gorm:"size:10;not null;default:LONG"`

	Internet          bool `gorm:"not null;default:false"`
	UtilitiesIncluded bool `gorm:"not null;default:false"`
	PetsAllowed       bool `gorm:"not null;default:false"`
	SmokingAllowed    bool `gorm:"not null;default:false"`

	MoveInDate *time.Time
	Amenities  datatypes.JSONSlice[string]

	Images []ListingImage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// HasAmenities reports whether every wanted tag appears in the listing's amenities.
func (l *Listing) HasAmenities(wanted []string) bool {
	have := make(map[string]struct{}, len(l.Amenities))
	for _, a := range l.Amenities {
		have[a] = struct{}{}
	}
	for _, w := range wanted {
		if _, ok := have[w]; !ok {
			return false
		}
	}
	return true
}

type ListingImage struct {
	ID         uint   `gorm:"primarykey"`
	UUID       string `gorm:"size:36;uniqueIndex"`
	ListingID  uint   `gorm:"not null;index"`
	ObjectKey  string `gorm:"size:512;not null"`
	Filename   string
	MimeType   string
	UploadedAt time.Time `gorm:"autoCreateTime"`
}

type Article struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Title     string `gorm:"size:255;not null"`
	Subtitle  string
	Date      string `gorm:"size:50"`
	ContentEN string `gorm:"column:content_en"`
	ContentRU string `gorm:"column:content_ru"`
	ContentCZ string `gorm:"column:content_cz"`
	ImageKey  string `gorm:"size:255"`
}

// All lists every model in migration order.
func All() []any {
	return []any{&User{}, &Profile{}, &Listing{}, &ListingImage{}, &Article{}}
}

// Favorite is the join row between a profile and a saved listing.
type Favorite struct {
	ProfileID uint `gorm:"primaryKey"`
	ListingID uint `gorm:"primaryKey;index"`
	CreatedAt time.Time
}

func (Favorite) TableName() string {
	return "profile_favorite_listings"
}
