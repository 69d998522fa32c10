package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/kdd-community/website-backend/internal/models"
)

// ErrNotFound is returned when a target record is absent
var ErrNotFound = errors.New("record not found")

// EventRepository defines the interface for event data operations
type EventRepository interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
	// Exists reports whether an event document is present without decoding it.
	Exists(ctx context.Context, id string) (bool, error)
	// Raw returns the stored document as a generic field map, the shape the
	// diff engine consumes.
	Raw(ctx context.Context, id string) (map[string]interface{}, error)
	// Set upserts the full event document by id.
	Set(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
	FindAll(ctx context.Context) ([]*models.Event, error)
	FindUpcoming(ctx context.Context, from time.Time, limit int) ([]*models.Event, error)
	FindPast(ctx context.Context, before time.Time, limit int) ([]*models.Event, error)
	// UpdatePhotos runs fn against the current photo sequence inside a
	// single read-modify-write transaction and writes the result back.
	// A conflict or write failure leaves the stored sequence untouched.
	UpdatePhotos(ctx context.Context, id string, fn func(photos []models.Photo) ([]models.Photo, error)) error
	// RemovePhoto removes the exact matching photo entry by value.
	RemovePhoto(ctx context.Context, id string, photo models.Photo) error
}

// LogRepository defines the interface for the append-only audit log
type LogRepository interface {
	Append(ctx context.Context, entry *models.LogEntry) error
	FindRecent(ctx context.Context, limit int) ([]*models.LogEntry, error)
}

// UserRepository defines the interface for identity records
type UserRepository interface {
	FindByUID(ctx context.Context, uid string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error
}
