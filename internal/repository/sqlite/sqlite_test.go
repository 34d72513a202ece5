package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"pet-market/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, NewUserRepository(db).Init(ctx))
	require.NoError(t, NewAnimalRepository(db).Init(ctx))
	return db
}

func seedUser(t *testing.T, db *sql.DB, username, email string) *domain.User {
	t.Helper()

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
	}
	_, err := NewUserRepository(db).Create(context.Background(), user)
	require.NoError(t, err)
	return user
}

func seededUser(username, email string) *domain.User {
	return &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
	}
}

func seedAnimal(t *testing.T, db *sql.DB, authorID int64, mutate func(*domain.Animal)) *domain.Animal {
	t.Helper()

	animal := &domain.Animal{
		Name:        "Rex",
		Species:     domain.SpeciesDog,
		Breed:       "Labrador",
		Age:         3,
		Gender:      domain.GenderMale,
		Description: "Friendly dog looking for a home",
		Price:       150,
		Color:       "black",
		Location:    "Lyon",
		AuthorID:    authorID,
	}
	if mutate != nil {
		mutate(animal)
	}
	_, err := NewAnimalRepository(db).Create(context.Background(), animal)
	require.NoError(t, err)
	return animal
}
