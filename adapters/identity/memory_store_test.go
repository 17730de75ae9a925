package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/warden/core"
)

func TestCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u := &core.User{
		Identifier:   "stud1",
		DisplayName:  "First Student",
		PasswordHash: "$2a$12$fakefakefakefakefakefake",
		Role:         core.RoleStudent,
		Contact:      "+15550001111",
	}
	require.NoError(t, s.Create(ctx, u))
	require.NotEmpty(t, u.ID, "Create must assign an id")

	byIdent, err := s.FindByIdentifier(ctx, "stud1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byIdent.ID)

	byID, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "stud1", byID.Identifier)
}

func TestDuplicateIdentifier(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Create(ctx, &core.User{Identifier: "stud1", Role: core.RoleStudent}))
	err := s.Create(ctx, &core.User{Identifier: "stud1", Role: core.RoleTeacher})
	assert.ErrorIs(t, err, core.ErrDuplicateIdentifier)
}

func TestLookupMisses(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.FindByIdentifier(ctx, "ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = s.FindByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
