// Package store holds every query the API runs against the relational database.
package store

import (
	"errors"
	"fmt"

	"github.com/flatfly/flatfly-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrEmailTaken    = errors.New("User with this email already exists. Please log in.")
	ErrGoogleAccount = errors.New("This account was created using Google. Please log in with Google.")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for callers that need a raw query.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Open connects to Postgres. Driver errors are translated so unique
// violations surface as gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table, including the favorites join table.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Profile{}, "FavoriteListings", &models.Favorite{}); err != nil {
		return fmt.Errorf("setup favorites join table: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
