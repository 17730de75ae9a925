package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/campuslink/warden/core"
	"github.com/campuslink/warden/ports"
)

// userRow is the bun mapping of a user record.
type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID           string    `bun:",pk,type:uuid"`
	Identifier   string    `bun:",notnull,unique"`
	DisplayName  string    `bun:",notnull"`
	PasswordHash string    `bun:",notnull"`
	Role         core.Role `bun:",notnull"`
	Contact      string
}

// BunStore is a Postgres-backed implementation of the IdentityStore
// interface via bun.
type BunStore struct {
	db *bun.DB
}

// NewBunStore creates a new bun identity store.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

var _ ports.IdentityStore = (*BunStore)(nil)

// Create inserts a new user row. A unique violation on the identifier maps
// to core.ErrDuplicateIdentifier.
func (s *BunStore) Create(ctx context.Context, user *core.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	row := &userRow{
		ID:           user.ID,
		Identifier:   user.Identifier,
		DisplayName:  user.DisplayName,
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		Contact:      user.Contact,
	}

	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateIdentifier
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// FindByIdentifier returns the user with the given login identifier.
func (s *BunStore) FindByIdentifier(ctx context.Context, identifier string) (*core.User, error) {
	row := new(userRow)
	err := s.db.NewSelect().Model(row).Where("identifier = ?", identifier).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return row.toUser(), nil
}

// FindByID returns the user with the given id.
func (s *BunStore) FindByID(ctx context.Context, id string) (*core.User, error) {
	row := new(userRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return row.toUser(), nil
}

func (r *userRow) toUser() *core.User {
	return &core.User{
		ID:           r.ID,
		Identifier:   r.Identifier,
		DisplayName:  r.DisplayName,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		Contact:      r.Contact,
	}
}

// isUniqueViolation reports whether the error is a Postgres unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
