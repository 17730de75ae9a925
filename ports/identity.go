package ports

import (
	"context"

	"github.com/campuslink/warden/core"
)

// IdentityStore is the lookup-by-identifier user store. The auth core reads
// identities and creates them at signup; it never mutates existing records.
type IdentityStore interface {
	// Create inserts a new user. Returns core.ErrDuplicateIdentifier when
	// the identifier is already registered.
	Create(ctx context.Context, user *core.User) error

	// FindByIdentifier returns the user with the given login identifier,
	// or core.ErrNotFound.
	FindByIdentifier(ctx context.Context, identifier string) (*core.User, error)

	// FindByID returns the user with the given id, or core.ErrNotFound.
	FindByID(ctx context.Context, id string) (*core.User, error)
}
