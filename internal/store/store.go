// Package store persists users and carbon entries. Implementations must apply
// the point increment of CreateEntry atomically with the entry insert.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ecotrack/backend/internal/models"
)

var (
	// ErrNotFound is returned when no record matches.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a unique field (email, mobile) is already taken.
	ErrConflict = errors.New("store: conflict")
)

// Users is the identity side of the store.
type Users interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByMobile(ctx context.Context, mobile string) (*models.User, error)
	EmailOrMobileTaken(ctx context.Context, email, mobile string) (bool, error)
	SetOTP(ctx context.Context, userID, codeHash string, expiresAt time.Time) error
	// ClearOTP removes the pending code only if it still equals codeHash.
	// It reports whether the code was cleared.
	ClearOTP(ctx context.Context, userID, codeHash string) (bool, error)
	UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error)
	TopContributors(ctx context.Context, limit int) ([]models.Contributor, error)
	ListUsers(ctx context.Context, f models.UserFilter, page models.Page) ([]models.User, int, error)
	CountUsers(ctx context.Context) (int, error)
}

// Entries is the ledger side of the store.
type Entries interface {
	// CreateEntry inserts e and adds e.Points to the owner's total in one
	// atomic step, returning the new total.
	CreateEntry(ctx context.Context, e *models.CarbonEntry) (float64, error)
	// ListEntries returns the user's entries newest first. A zero since
	// returns everything.
	ListEntries(ctx context.Context, userID string, since time.Time) ([]models.CarbonEntry, error)
	CountEntries(ctx context.Context) (int, error)
	SumActivityValue(ctx context.Context, activityID string) (float64, error)
}

// Store is everything the services need.
type Store interface {
	Users
	Entries
}
