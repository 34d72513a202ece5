package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pet-market/internal/repository"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	created := seedUser(t, db, "alice", "Alice@Example.com")
	require.NotZero(t, created.ID)

	byEmail, err := repo.GetByEmail(ctx, "ALICE@example.COM")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "alice@example.com", byEmail.Email, "emails are stored lowercased")

	byUsername, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, "hash", byID.PasswordHash)
}

func TestUserRepository_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_Uniqueness(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "alice", "alice@example.com")

	_, err := repo.Create(ctx, seededUser("alice", "other@example.com"))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = repo.Create(ctx, seededUser("alice2", "ALICE@example.com"))
	assert.ErrorIs(t, err, repository.ErrDuplicate, "email uniqueness is case-insensitive")
}
