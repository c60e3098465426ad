package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/session/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement it and are chosen once at startup.
type Store interface {
	Accounts() Accounts
	RenewalTokens() RenewalTokens

	// ApplyMigrations brings the schema up to date.
	ApplyMigrations(ctx context.Context) error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	Close() error
}

type Accounts interface {
	// Find returns the account for username or ErrNotFound.
	Find(ctx context.Context, username string) (domain.Account, error)

	// Create inserts a new account. It returns ErrAlreadyExists when the
	// username is taken; uniqueness is enforced by the database, so
	// concurrent creates for one username yield exactly one success.
	Create(ctx context.Context, a domain.Account) error

	// Count returns the number of registered accounts.
	Count(ctx context.Context) (int, error)
}

type RenewalTokens interface {
	// Put stores a renewal record. ErrAlreadyExists on fingerprint collision.
	Put(ctx context.Context, r domain.RenewalRecord) error

	// Get returns the record for tokenHash or ErrNotFound.
	Get(ctx context.Context, tokenHash string) (domain.RenewalRecord, error)

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, tokenHash string) error

	// DeleteExpired removes every record expiring at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
